package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stanbot/config"
	"stanbot/internal/metrics"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRunServerNeedsAddr(t *testing.T) {
	t.Setenv(config.PathEnv, "")
	t.Setenv("ADDR", "")
	os.Unsetenv("ADDR")

	err := RunServer(context.Background())
	assert.ErrorContains(t, err, "failed to load configuration")
}

func TestRunServerRejectsDifficulty(t *testing.T) {
	t.Setenv(config.PathEnv, "")
	t.Setenv("ADDR", freeAddr(t))
	t.Setenv("POW_DIFFICULTY", "65")

	err := RunServer(context.Background())
	assert.ErrorContains(t, err, ErrPowInit)
}

func TestServeMetrics(t *testing.T) {
	addr := freeAddr(t)
	m := metrics.NewNop()
	m.Clicks.Inc()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serveMetrics(ctx, addr, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get("http://" + addr + "/metrics")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "stanbot_clicks_total 1")

	cancel()
	assert.NoError(t, <-done)
}
