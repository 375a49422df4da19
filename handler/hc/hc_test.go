package hc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHandler(t *testing.T) {
	tests := []struct {
		name   string
		ping   error
		status int
		db     string
	}{
		{"healthy", nil, http.StatusOK, "ok"},
		{"db down", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Handler("1.2.3", pingFunc(func(ctx context.Context) error { return tt.ping }))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hc", nil))

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}

			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}

			if body["version"] != "1.2.3" || body["uptime"] == "" || body["db"] != tt.db {
				t.Errorf("unexpected body %v", body)
			}
		})
	}
}
