package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stackpin/pkg/httputil"
)

func TestClient_LatestRelease(t *testing.T) {
	r := chi.NewRouter()
	r.Head("/astral-sh/uv/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://github.com/astral-sh/uv/releases/tag/0.5.11")
		w.WriteHeader(http.StatusFound)
	})
	r.Head("/astral-sh/uv/releases/tag/0.5.11", func(w http.ResponseWriter, r *http.Request) {
		t.Error("redirect target must not be requested")
	})
	server := httptest.NewServer(r)
	defer server.Close()

	c := testClient(server)
	got, err := c.LatestRelease(context.Background(), "astral-sh", "uv", time.Second)
	if err != nil {
		t.Fatalf("LatestRelease failed: %v", err)
	}
	if got.StatusCode != http.StatusFound {
		t.Errorf("expected 302, got %d", got.StatusCode)
	}
	if got.Location != "https://github.com/astral-sh/uv/releases/tag/0.5.11" {
		t.Errorf("unexpected location %q", got.Location)
	}
}

func TestClient_LatestRelease_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
		status  int
	}{
		{
			name: "missing location",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusMovedPermanently)
			},
			wantErr: ErrMissingLocation,
		},
		{
			name:    "no redirect",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			wantErr: ErrNoRedirect,
		},
		{
			name:    "not found",
			handler: http.NotFound,
			status:  http.StatusNotFound,
		},
		{
			name: "not modified is not a redirect",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Location", "/x/y/releases/tag/1.0")
				w.WriteHeader(http.StatusNotModified)
			},
			status: http.StatusNotModified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := testClient(server).LatestRelease(context.Background(), "x", "y", time.Second)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.status != 0 {
				var se *httputil.StatusError
				if !errors.As(err, &se) || se.StatusCode != tt.status {
					t.Errorf("expected StatusError %d, got %v", tt.status, err)
				}
			}
		})
	}
}

func TestClient_RawFile(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/artefactual-labs/AIPscan/refs/tags/{tag}/.python-version", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "tag") != "1.2.3" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("3.11.9\n"))
	})
	server := httptest.NewServer(r)
	defer server.Close()

	tmpl := server.URL + "/artefactual-labs/AIPscan/refs/tags/{tag}/.python-version"
	body, err := testClient(server).RawFile(context.Background(), ExpandTemplate(tmpl, "1.2.3"), time.Second)
	if err != nil {
		t.Fatalf("RawFile failed: %v", err)
	}
	if body != "3.11.9\n" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestLatestReleaseURL(t *testing.T) {
	c := NewClient(httputil.NewClient())
	want := "https://github.com/astral-sh/uv/releases/latest"
	if got := c.LatestReleaseURL("astral-sh", "uv"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func testClient(server *httptest.Server) *Client {
	hc := httputil.NewClient(httputil.WithHTTPClient(server.Client()), httputil.WithBackoff(0))
	return NewClient(hc, WithWebURL(server.URL))
}
