package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeReloader struct {
	calls int
	err   error
}

func (r *fakeReloader) Reload() error {
	r.calls++
	return r.err
}

func newTestServer(reloader Reloader) *Server {
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("# metrics\n"))
	})
	return New(Config{}, metricsHandler, reloader)
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(&fakeReloader{})
	handler := srv.routes()

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{http.MethodGet, "/metrics", http.StatusOK, "# metrics"},
		{http.MethodGet, "/-/healthy", http.StatusOK, "OK"},
		{http.MethodGet, "/-/ready", http.StatusOK, "OK"},
		{http.MethodGet, "/", http.StatusOK, "CloudWatch Exporter"},
		{http.MethodGet, "/nonexistent", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != tt.wantStatus {
			t.Errorf("%s %s: status %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
		}
		if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
			t.Errorf("%s %s: body %q does not contain %q", tt.method, tt.path, rec.Body.String(), tt.wantBody)
		}
	}
}

func TestReloadEndpoint(t *testing.T) {
	reloader := &fakeReloader{}
	handler := newTestServer(reloader).routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/-/reload", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("POST /-/reload: status %d, want 200", rec.Code)
	}
	if reloader.calls != 1 {
		t.Errorf("reload calls = %d, want 1", reloader.calls)
	}
}

func TestReloadEndpointRejectsGet(t *testing.T) {
	reloader := &fakeReloader{}
	handler := newTestServer(reloader).routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/-/reload", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /-/reload: status %d, want 405", rec.Code)
	}
	if reloader.calls != 0 {
		t.Errorf("reload calls = %d, want 0", reloader.calls)
	}
}

func TestReloadEndpointFailure(t *testing.T) {
	reloader := &fakeReloader{err: errors.New("bad config")}
	handler := newTestServer(reloader).routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/-/reload", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("failed reload: status %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "bad config") {
		t.Errorf("body %q should carry the reload error", rec.Body.String())
	}
}

func TestConfigDefaults(t *testing.T) {
	srv := New(Config{}, http.NotFoundHandler(), &fakeReloader{})
	if srv.config.ListenAddress != ":9106" {
		t.Errorf("listen address = %q, want :9106", srv.config.ListenAddress)
	}
	if srv.config.WriteTimeout == 0 || srv.config.ReadTimeout == 0 {
		t.Errorf("timeouts not defaulted: %+v", srv.config)
	}

	custom := New(Config{ListenAddress: "127.0.0.1:0"}, http.NotFoundHandler(), &fakeReloader{})
	if custom.config.ListenAddress != "127.0.0.1:0" {
		t.Errorf("listen address = %q", custom.config.ListenAddress)
	}
}
