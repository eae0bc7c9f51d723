package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]HealthCheck
		want   int
		status string
	}{
		{name: "no checks", want: http.StatusOK, status: "ok"},
		{
			name: "all up",
			checks: map[string]HealthCheck{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return nil },
			},
			want:   http.StatusOK,
			status: "ok",
		},
		{
			name: "redis down",
			checks: map[string]HealthCheck{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
			},
			want:   http.StatusServiceUnavailable,
			status: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewHealthHandler(tt.checks).Get(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
			var resp HealthResponse
			decodeBody(t, rr, &resp)
			if resp.Status != tt.status {
				t.Fatalf("unexpected status: %s", resp.Status)
			}
			if tt.status == "degraded" && resp.Checks["redis"] != "down" {
				t.Fatalf("expected redis down, got %+v", resp.Checks)
			}
		})
	}
}
