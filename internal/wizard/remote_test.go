package wizard

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newRemote starts a fake remote API. handle gets the path, raw query and
// body, and returns the status and JSON envelope to send.
func newRemote(t *testing.T, handle func(path, query, body string) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		status, body := handle(r.URL.Path, r.URL.RawQuery, string(raw))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}
