package shaderedit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestProjectTransportDialError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(http.NotFoundHandler())
	projectUrl := "ws" + strings.TrimPrefix(server.URL, "http")
	server.Close()

	disconnected := make(chan error, 1)
	welcomed := false
	transport := NewProjectTransportWithDefaults(
		ctx,
		projectUrl,
		&ProjectAuth{Jwt: "test-jwt", InstanceId: NewId()},
		&TransportHandlers{
			OnWelcome: func(clientId string) {
				welcomed = true
			},
			OnDisconnected: func(err error) {
				disconnected <- err
			},
		},
	)
	go transport.Run()

	select {
	case err := <-disconnected:
		assert.NotEqual(t, err, nil)
	case <-time.After(5 * time.Second):
		t.FailNow()
	}
	<-transport.Done()
	assert.Equal(t, welcomed, false)

	// sends after the transport stops fail fast
	err := transport.Send(NewFrame(FrameTypeSub, nil))
	assert.Equal(t, err, ErrSessionClosed)
}

func TestProjectTransportClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service := newTestProjectService(t, "test-jwt")
	server := httptest.NewServer(service)
	defer server.Close()
	projectUrl := "ws" + strings.TrimPrefix(server.URL, "http")

	welcome := make(chan string, 1)
	disconnected := make(chan error, 1)
	transport := NewProjectTransportWithDefaults(
		ctx,
		projectUrl,
		&ProjectAuth{Jwt: "test-jwt", InstanceId: NewId()},
		&TransportHandlers{
			OnWelcome: func(clientId string) {
				welcome <- clientId
			},
			OnDisconnected: func(err error) {
				disconnected <- err
			},
		},
	)
	go transport.Run()

	select {
	case clientId := <-welcome:
		assert.Equal(t, clientId, "client1")
	case <-time.After(5 * time.Second):
		t.FailNow()
	}

	transport.Close()
	select {
	case err := <-disconnected:
		// closed locally
		assert.Equal(t, err, nil)
	case <-time.After(5 * time.Second):
		t.FailNow()
	}
}
