package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jreit-finder/pkg/config"
	"github.com/wonny/jreit-finder/pkg/logger"
)

func TestServer_RunStopsOnCancel(t *testing.T) {
	server := New(&config.Config{Port: "0"}, logger.Nop(), http.NotFoundHandler())
	assert.Equal(t, ":0", server.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServer_RunReportsListenError(t *testing.T) {
	server := New(&config.Config{Port: "not-a-port"}, logger.Nop(), http.NotFoundHandler())

	err := server.Run(context.Background())
	assert.Error(t, err)
}
