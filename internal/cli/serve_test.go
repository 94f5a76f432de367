package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackpin/pkg/config"
	"github.com/matzehuels/stackpin/pkg/httputil"
	"github.com/matzehuels/stackpin/pkg/observability"
	"github.com/matzehuels/stackpin/pkg/pipeline"
	"github.com/matzehuels/stackpin/pkg/publish"
)

func testServer(t *testing.T, factory pipeline.ResolverFactory, cfg config.Config, sinks publish.Sink) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	logger := log.New(io.Discard)
	reg := prometheus.NewRegistry()
	s := &server{
		cfg:    cfg,
		runner: pipeline.NewRunner(factory, httputil.NewClient(), logger),
		sinks:  sinks,
		logger: logger,
	}
	srv := httptest.NewServer(s.routes(reg))
	t.Cleanup(srv.Close)
	return srv, reg
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServeVersions(t *testing.T) {
	srv, _ := testServer(t, okFactory(), config.Default(), nil)

	resp, body := get(t, srv.URL+"/v1/versions")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{
		"changed": false,
		"ansible_facts": {
			"aipscan_version": "4.5.6",
			"aipscan_uv_version": "0.5.11",
			"aipscan_python_version": "3.11.9"
		}
	}`, body)
}

func TestServeVersionsFailure(t *testing.T) {
	msg := "Unexpected response retrieving latest uv release: HTTP 500"
	srv, _ := testServer(t, failingFactory(msg), config.Default(), nil)

	resp, body := get(t, srv.URL+"/v1/versions")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, true, got["failed"])
	assert.Equal(t, msg, got["msg"])
}

func TestServeVersionsQueryOverridesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.PackageVersion = "1.0.0"
	cfg.ToolVersion = "0.1.0"
	factory := okFactory()
	srv, _ := testServer(t, factory, cfg, nil)

	resp, _ := get(t, srv.URL+"/v1/versions?package_version=&tool_version=0.5.4&timeout=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	opts := factory.last()
	assert.Equal(t, "", opts.PackageVersion)
	assert.Equal(t, "0.5.4", opts.ToolVersion)
	assert.Equal(t, 2*time.Second, factory.lastTimeout())
	assert.Equal(t, "1.0.0", cfg.PackageVersion, "server config is not mutated")
}

func TestServeVersionsYAML(t *testing.T) {
	srv, _ := testServer(t, okFactory(), config.Default(), nil)

	resp, body := get(t, srv.URL+"/v1/versions?format=yaml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "changed: false")
}

func TestServeVersionsRejectsFormat(t *testing.T) {
	factory := okFactory()
	srv, _ := testServer(t, factory, config.Default(), nil)

	for _, f := range []string{"svg", "env", "text"} {
		resp, body := get(t, srv.URL+"/v1/versions?format="+f)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, f)
		assert.Contains(t, body, `"failed":true`, f)
	}
	_, body := get(t, srv.URL+"/v1/versions?format=env")
	assert.Contains(t, body, `not served over HTTP`)
	assert.Zero(t, factory.calls(), "rejected requests never resolve")
}

func TestServeVersionsInvalidTarget(t *testing.T) {
	srv, _ := testServer(t, okFactory(), config.Default(), nil)

	resp, body := get(t, srv.URL+"/v1/versions?tool_repo=not-a-repo")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, `tool_repo: invalid repo "not-a-repo": use owner/repo`, got["msg"])

	resp, body = get(t, srv.URL+"/v1/versions?tool_name=python")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "collides with the interpreter fact")
	assert.NotContains(t, body, "INVALID_INPUT", "codes stay out of operator messages")
}

func TestServeVersionsPublishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.json")
	srv, _ := testServer(t, okFactory(), config.Default(), publish.NewFileSink(path, ""))

	resp, _ := get(t, srv.URL+"/v1/versions")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.NotEmpty(t, rec["run_id"])
	assert.Equal(t, "0.5.11", rec["facts"].(map[string]any)["aipscan_uv_version"])
}

func TestServeHealthz(t *testing.T) {
	srv, _ := testServer(t, okFactory(), config.Default(), nil)

	resp, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body)
}

func TestServeMetrics(t *testing.T) {
	srv, reg := testServer(t, okFactory(), config.Default(), nil)
	metrics := observability.NewMetrics(reg)
	metrics.OnResolveComplete(context.Background(), "package", "4.5.6", false, time.Millisecond, nil)

	resp, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "stackpin_resolutions_total")
}

type brokenFactory struct{}

func (brokenFactory) Build(*httputil.Client, time.Duration, pipeline.Options) (pipeline.Resolvers, error) {
	return pipeline.Resolvers{}, errBroken
}

var errBroken = errors.New("no resolvers")

func TestServeVersionsInternalError(t *testing.T) {
	srv, _ := testServer(t, brokenFactory{}, config.Default(), nil)

	resp, body := get(t, srv.URL+"/v1/versions")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "no resolvers")
}
