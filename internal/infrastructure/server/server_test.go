package server

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/logging"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewServer(cfg, logging.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Manager().Close()
	})
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func createWorkspace(t *testing.T, base string) string {
	t.Helper()
	resp, err := http.Post(base+"/workspaces", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.ID)
	return out.ID
}

func TestServerRoutes(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status"`)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	id := createWorkspace(t, ts.URL)
	resp, body = get(t, ts.URL+"/workspaces/"+id)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/src/App.tsx")

	resp, body = get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "webide_workspaces_created_total")
	assert.Contains(t, string(body), "webide_http_requests_total")
}

func TestServerGzip(t *testing.T) {
	s, ts := newTestServer(t, nil)
	id := createWorkspace(t, ts.URL)

	w, err := s.Manager().Get(id)
	require.NoError(t, err)
	_, err = w.Apply(session.Command{Type: session.CommandEdit, Content: strings.Repeat("const x = 1;\n", 500)})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/workspaces/"+id, nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")

	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "const x = 1;")
}

func TestServerGzipDisabled(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) { c.Server.GzipEnabled = false })

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Content-Encoding"))
}

func TestServerStreamBypassesGzip(t *testing.T) {
	_, ts := newTestServer(t, nil)
	id := createWorkspace(t, ts.URL)

	header := http.Header{}
	header.Set("Accept-Encoding", "gzip")
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/workspaces/" + id + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var hello struct {
		Type      string `json:"type"`
		Workspace string `json:"workspace"`
	}
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "system", hello.Type)
	assert.Equal(t, id, hello.Workspace)
}

func TestServerRateLimit(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.RequestsPerSecond = 1
		c.RateLimit.Burst = 1
	})

	resp, _ := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, string(body), "rate_limited")
}

func TestServerGlobalRateLimit(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.GlobalRequestsPerSecond = 1
		c.RateLimit.GlobalBurst = 1
	})

	resp, _ := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, string(body), "rate_limited")
}

func TestServerCORSOrigins(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) {
		c.Server.CORSOrigins = []string{"http://localhost:5173"}
	})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Workspace.Template = "a.yaml"
	cfg.Workspace.ImportDir = "/tmp"
	_, err := NewServer(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestSources(t *testing.T) {
	sources, def, err := Sources(config.WorkspaceConfig{})
	require.NoError(t, err)
	assert.Empty(t, sources)
	assert.Equal(t, session.DefaultSourceName, def)

	sources, def, err = Sources(config.WorkspaceConfig{Template: "project.toml"})
	require.NoError(t, err)
	assert.Equal(t, ProjectSourceName, def)
	assert.Equal(t, "file:project.toml", sources[ProjectSourceName].Name())

	sources, def, err = Sources(config.WorkspaceConfig{ImportDir: "/srv/app"})
	require.NoError(t, err)
	assert.Equal(t, ProjectSourceName, def)
	assert.Equal(t, "dir:/srv/app", sources[ProjectSourceName].Name())

	_, _, err = Sources(config.WorkspaceConfig{Template: "project.ini"})
	assert.Error(t, err)
}

func TestServerImportDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "util.py"), []byte("print(1)\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("import lib\n"), 0o644))

	_, ts := newTestServer(t, func(c *config.Config) { c.Workspace.ImportDir = dir })
	id := createWorkspace(t, ts.URL)

	resp, body := get(t, ts.URL+"/workspaces/"+id+"/find?pattern=**/*.py")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "/lib/util.py")
	assert.Contains(t, string(body), "/main.py")
}

func TestRunAndShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	s, err := NewServer(cfg, logging.NewNop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-done)
	assert.Equal(t, 0, s.Manager().Len())
}
