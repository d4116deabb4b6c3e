package shaderedit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

const DefaultTransportSendBufferSize = 32

type ProjectTransportSettings struct {
	WsHandshakeTimeout time.Duration `yaml:"ws_handshake_timeout"`
	AuthTimeout        time.Duration `yaml:"auth_timeout"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	SendBufferSize     int           `yaml:"send_buffer_size"`
}

func DefaultProjectTransportSettings() *ProjectTransportSettings {
	pingTimeout := 1 * time.Second
	return &ProjectTransportSettings{
		WsHandshakeTimeout: 2 * time.Second,
		AuthTimeout:        2 * time.Second,
		PingTimeout:        pingTimeout,
		WriteTimeout:       5 * time.Second,
		ReadTimeout:        15 * time.Second,
		SendBufferSize:     DefaultTransportSendBufferSize,
	}
}

type ProjectAuth struct {
	Jwt        string
	InstanceId Id
	AppVersion string
}

// callbacks are made from the transport's single read goroutine, in order
type TransportHandlers struct {
	OnWelcome      func(clientId string)
	OnFrame        func(frame *Frame)
	// called once when the transport stops, after welcome or not
	OnDisconnected func(err error)
}

// a single websocket connection to the project service.
// it does not reconnect: a lost connection ends the session.
type ProjectTransport struct {
	ctx    context.Context
	cancel context.CancelFunc

	projectUrl string
	auth       *ProjectAuth
	handlers   *TransportHandlers

	settings *ProjectTransportSettings

	send chan []byte
}

func NewProjectTransportWithDefaults(
	ctx context.Context,
	projectUrl string,
	auth *ProjectAuth,
	handlers *TransportHandlers,
) *ProjectTransport {
	return NewProjectTransport(ctx, projectUrl, auth, handlers, DefaultProjectTransportSettings())
}

func NewProjectTransport(
	ctx context.Context,
	projectUrl string,
	auth *ProjectAuth,
	handlers *TransportHandlers,
	settings *ProjectTransportSettings,
) *ProjectTransport {
	cancelCtx, cancel := context.WithCancel(ctx)
	transport := &ProjectTransport{
		ctx:        cancelCtx,
		cancel:     cancel,
		projectUrl: projectUrl,
		auth:       auth,
		handlers:   handlers,
		settings:   settings,
		send:       make(chan []byte, settings.SendBufferSize),
	}
	return transport
}

func (self *ProjectTransport) Send(frame *Frame) error {
	frameBytes, err := EncodeFrame(frame)
	if err != nil {
		return err
	}
	select {
	case <-self.ctx.Done():
		return ErrSessionClosed
	case self.send <- frameBytes:
		return nil
	case <-time.After(self.settings.WriteTimeout):
		return fmt.Errorf("Send timeout.")
	}
}

func (self *ProjectTransport) Close() {
	self.cancel()
}

func (self *ProjectTransport) Done() <-chan struct{} {
	return self.ctx.Done()
}

// connects and reads until the connection is lost or the transport is closed.
// `Send` may be called before `Run`; frames queue until connected.
func (self *ProjectTransport) Run() {
	defer self.cancel()

	var disconnectErr error
	defer func() {
		if self.handlers.OnDisconnected != nil {
			HandleError(func() {
				self.handlers.OnDisconnected(disconnectErr)
			})
		}
	}()

	var ws *websocket.Conn
	var clientId string
	var err error
	if glog.V(2) {
		ws, err = TraceWithReturnError(fmt.Sprintf("[t]connect %s", self.projectUrl), func() (*websocket.Conn, error) {
			c, connectClientId, connectErr := self.connect()
			clientId = connectClientId
			return c, connectErr
		})
	} else {
		ws, clientId, err = self.connect()
	}
	if err != nil {
		glog.Infof("[t]auth error %s = %s\n", self.projectUrl, err)
		disconnectErr = err
		return
	}
	defer ws.Close()

	glog.V(1).Infof("[t]welcome %s\n", clientId)
	if self.handlers.OnWelcome != nil {
		self.handlers.OnWelcome(clientId)
	}

	handleCtx, handleCancel := context.WithCancel(self.ctx)
	defer handleCancel()

	go func() {
		defer handleCancel()

		for {
			select {
			case <-handleCtx.Done():
				return
			case message := <-self.send:
				ws.SetWriteDeadline(time.Now().Add(self.settings.WriteTimeout))
				if err := ws.WriteMessage(websocket.BinaryMessage, message); err != nil {
					// note that for websocket a dealine timeout cannot be recovered
					glog.Infof("[ts]%s-> error = %s\n", clientId, err)
					return
				}
				glog.V(2).Infof("[ts]%s->\n", clientId)
			case <-time.After(self.settings.PingTimeout):
				ws.SetWriteDeadline(time.Now().Add(self.settings.WriteTimeout))
				if err := ws.WriteMessage(websocket.BinaryMessage, make([]byte, 0)); err != nil {
					return
				}
			}
		}
	}()

	// closing the connection unblocks the read
	go func() {
		<-handleCtx.Done()
		ws.Close()
	}()

	for {
		ws.SetReadDeadline(time.Now().Add(self.settings.ReadTimeout))
		messageType, message, err := ws.ReadMessage()
		if err != nil {
			select {
			case <-self.ctx.Done():
				// closed locally
			default:
				glog.Infof("[tr]%s<- error = %s\n", clientId, err)
				disconnectErr = err
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			if 0 == len(message) {
				// ping
				glog.V(2).Infof("[tr]ping %s<-\n", clientId)
				continue
			}
			frame, err := DecodeFrame(message)
			if err != nil {
				glog.V(1).Infof("[tr]drop %s<- bad frame = %s\n", clientId, err)
				continue
			}
			glog.V(2).Infof("[tr]%s %s<-\n", frame.Type, clientId)
			if self.handlers.OnFrame != nil {
				self.handlers.OnFrame(frame)
			}
		default:
			glog.V(2).Infof("[tr]other=%d %s<-\n", messageType, clientId)
		}
	}
}

// dials, authenticates, and waits for the welcome frame
func (self *ProjectTransport) connect() (*websocket.Conn, string, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: self.settings.WsHandshakeTimeout,
	}
	header := http.Header{}
	header.Set("Authorization", fmt.Sprintf("Bearer %s", self.auth.Jwt))
	ws, _, err := dialer.DialContext(self.ctx, self.projectUrl, header)
	if err != nil {
		return nil, "", err
	}

	success := false
	defer func() {
		if !success {
			ws.Close()
		}
	}()

	authBytes, err := EncodeFrame(NewFrame(FrameTypeAuth, map[string]any{
		"jwt":        self.auth.Jwt,
		"instanceId": self.auth.InstanceId.String(),
		"appVersion": self.auth.AppVersion,
	}))
	if err != nil {
		return nil, "", err
	}

	ws.SetWriteDeadline(time.Now().Add(self.settings.AuthTimeout))
	if err := ws.WriteMessage(websocket.BinaryMessage, authBytes); err != nil {
		return nil, "", err
	}
	ws.SetReadDeadline(time.Now().Add(self.settings.AuthTimeout))
	messageType, message, err := ws.ReadMessage()
	if err != nil {
		return nil, "", err
	}
	if messageType != websocket.BinaryMessage {
		return nil, "", errors.New("Auth response error.")
	}
	frame, err := DecodeFrame(message)
	if err != nil {
		return nil, "", err
	}
	if frame.Type != FrameTypeWelcome {
		return nil, "", fmt.Errorf("Auth response error: %s", frame.Type)
	}

	success = true
	return ws, frame.String("clientId"), nil
}
