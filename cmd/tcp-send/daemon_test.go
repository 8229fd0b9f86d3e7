package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "daemon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseConfigFile(t *testing.T) {
	path := writeConfig(t, `
run_address: 127.0.0.1:9999
send_interval: 5
targets:
  - address: 127.0.0.1:8080
    payload: ping
  - address: "[::1]:8081"
`)
	config, err := parseConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", config.RunAddress)
	require.EqualValues(t, 5, config.SendInterval)
	require.Equal(t, []Target{
		{Address: "127.0.0.1:8080", Payload: "ping"},
		{Address: "[::1]:8081"},
	}, config.Targets)
}

func TestParseConfigFileDefaults(t *testing.T) {
	config, err := parseConfigFile(writeConfig(t, "targets:\n  - address: example.com:80\n"))
	require.NoError(t, err)
	require.Equal(t, defaultRunAddress, config.RunAddress)
	require.EqualValues(t, defaultSendInterval, config.SendInterval)
}

func TestParseConfigFileInvalid(t *testing.T) {
	_, err := parseConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	for _, content := range []string{
		"targets: [",
		"run_address: :9100\n",
		"targets:\n  - address: example.com\n",
		"targets:\n  - address: example.com:http\n",
	} {
		_, err := parseConfigFile(writeConfig(t, content))
		require.Error(t, err, "config %q", content)
	}
}

func TestDaemonRunOnce(t *testing.T) {
	srv := startSink(t)
	dead := deadAddr(t)
	config := &DaemonConfig{
		RunAddress:   "127.0.0.1:0",
		SendInterval: 1,
		Targets: []Target{
			{Address: srv.Addr(), Payload: "tick"},
			{Address: dead, Payload: "lost"},
		},
	}
	d := NewDaemon(config, testSender(), zap.NewNop())
	d.RunOnce(context.Background())

	require.Eventually(t, func() bool { return srv.Count() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.Equal(t, "tick", string(srv.Received()[0]))

	require.Equal(t, float64(len("tick")), testutil.ToFloat64(d.prometheus.sentBytesMetric.WithLabelValues(srv.Addr())))
	require.Equal(t, 2, testutil.CollectAndCount(d.prometheus.sendDurationMetric))
	require.Equal(t, 1, testutil.CollectAndCount(d.prometheus.errorCountMetric))
	require.Equal(t, 1, testutil.CollectAndCount(d.prometheus.sentBytesMetric))

	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "tcpsend_duration_ms")
	require.Contains(t, body, "tcpsend_bytes_total")
	require.True(t, strings.Contains(body, `error_type="connect"`), body)
	require.Contains(t, body, `destination="`+dead+`"`)
}

func TestDaemonRunStops(t *testing.T) {
	config := &DaemonConfig{
		RunAddress:   "127.0.0.1:0",
		SendInterval: 1,
		Targets:      []Target{{Address: deadAddr(t)}},
	}
	d := NewDaemon(config, testSender(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}
