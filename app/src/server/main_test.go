package main

import (
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestRun_MissingDatabaseExitsBeforeListening(t *testing.T) {
	dir := t.TempDir()
	port := freePort(t)

	t.Setenv("DNSFILTER_SERVER_ENV", filepath.Join(dir, "missing.toml"))
	t.Setenv("DNSFILTER_DB_PATH", filepath.Join(dir, "missing.db"))
	t.Setenv("DNSFILTER_LOG_DIR", filepath.Join(dir, "logs"))
	t.Setenv("PORT", strconv.Itoa(port))

	assert.Equal(t, 1, run())

	// the port was never bound
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	require.NoError(t, err)
	ln.Close()

	assert.NoFileExists(t, filepath.Join(dir, "missing.db"))

	logged, err := os.ReadFile(filepath.Join(dir, "logs", "server.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logged), `"message":"open database failed"`)
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("DNSFILTER_SERVER_ENV", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("PORT", "70000")

	assert.Equal(t, 1, run())
}

func TestServe_WaitsForInFlightRequests(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/slow", func(c echo.Context) error {
		close(started)
		<-release
		return c.String(http.StatusOK, "done")
	})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	e.Listener = ln

	stop := make(chan os.Signal, 1)
	served := make(chan error, 1)
	go func() { served <- serve(e, ln.Addr().String(), stop, zap.NewNop()) }()

	body := make(chan string, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			body <- err.Error()
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body <- string(b)
	}()

	<-started
	stop <- syscall.SIGTERM

	select {
	case <-served:
		t.Fatal("serve returned while a request was still running")
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("serve did not return after the drain")
	}
	assert.Equal(t, "done", <-body)
}
