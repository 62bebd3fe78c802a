package api

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/magicformula/pkg/config"
	"github.com/wonny/magicformula/pkg/logger"
)

func TestWriteTimeout(t *testing.T) {
	tests := []struct {
		name string
		sc   config.ScreenerConfig
		want time.Duration
	}{
		{"defaults", config.ScreenerConfig{MaxSymbols: 3, FetchDelay: 5 * time.Second}, 90 * time.Second},
		{"no pacing", config.ScreenerConfig{MaxSymbols: 50}, 90 * time.Second},
		{"single symbol", config.ScreenerConfig{MaxSymbols: 1, FetchDelay: time.Hour}, 90 * time.Second},
		{"long paced screen", config.ScreenerConfig{MaxSymbols: 20, FetchDelay: 12 * time.Second}, 19*12*time.Second + 60*time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WriteTimeout(tt.sc))
		})
	}
}

func TestNew_UsesDerivedWriteTimeout(t *testing.T) {
	cfg := &config.Config{
		Port:     "0",
		Screener: config.ScreenerConfig{MaxSymbols: 10, FetchDelay: 15 * time.Second},
	}

	server := New(cfg, logger.Nop(), http.NotFoundHandler())

	assert.Equal(t, ":0", server.http.Addr)
	assert.Equal(t, 9*15*time.Second+60*time.Second, server.http.WriteTimeout)
	assert.Greater(t, server.http.WriteTimeout, time.Duration(cfg.Screener.MaxSymbols-1)*cfg.Screener.FetchDelay)
}

func TestServe_StopsWithContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	server := New(&config.Config{Screener: config.ScreenerConfig{MaxSymbols: 3}}, logger.Nop(), handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
