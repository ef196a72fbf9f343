package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLayer struct {
	listeners chan net.Listener
}

func (l recordingLayer) Listen(protocol, addr string) (net.Listener, error) {
	ln, err := NewPlainListener().Listen(protocol, addr)
	if err == nil {
		l.listeners <- ln
	}
	return ln, err
}

func TestHTTPServer_StartStop(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	srv := NewHTTPServer(handler, "127.0.0.1:0")
	assert.Equal(t, "127.0.0.1:0", srv.Address())

	layer := recordingLayer{listeners: make(chan net.Listener, 1)}
	done := make(chan error, 1)
	go func() { done <- srv.Start(layer) }()

	var ln net.Listener
	select {
	case ln = <-layer.listeners:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start listening")
	}

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPServer_StartListenError(t *testing.T) {
	srv := NewHTTPServer(http.NotFoundHandler(), "invalid-address")

	err := srv.Start(NewPlainListener())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
