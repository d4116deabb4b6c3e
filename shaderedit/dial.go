package shaderedit

import (
	"context"

	"github.com/golang/glog"
)

// connects to the project service and opens a session for `assetId`.
// The session closes when the connection is lost; the connection closes when
// the session closes.
func DialSession(
	ctx context.Context,
	projectUrl string,
	auth *ProjectAuth,
	assetId string,
	chunks ChunkRegistry,
	ui *SessionUi,
	settings *SessionSettings,
) *Session {
	var transport *ProjectTransport
	client := NewWsProjectClient(func(frame *Frame) error {
		return transport.Send(frame)
	})
	session := NewSession(ctx, client, assetId, settings.NewStageChecker(chunks), ui)
	transport = NewProjectTransport(
		ctx,
		projectUrl,
		auth,
		&TransportHandlers{
			OnWelcome: session.Welcome,
			OnFrame:   client.ReceiveFrame,
			OnDisconnected: func(err error) {
				glog.V(1).Infof("[s]%s disconnected = %s\n", assetId, err)
				client.Disconnected()
				session.Disconnected(err)
			},
		},
		settings.Transport,
	)
	go transport.Run()
	go func() {
		<-session.Done()
		transport.Close()
	}()
	return session
}
