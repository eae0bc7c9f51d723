package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/app/apiapp"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/config"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	authsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/auth"
)

// newServer boots the real api wiring with redis only; postgres and s3 stay
// unconfigured so the app runs degraded.
func newServer(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.HTTP.Addr = ":0"
	cfg.Postgres.DSN = ""
	cfg.Redis.Addr = mr.Addr()
	cfg.S3.Endpoint = ""

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	t.Cleanup(func() {
		_ = app.Shutdown(context.Background())
	})

	ts := httptest.NewServer(app.Handler())
	t.Cleanup(ts.Close)
	return ts, cfg
}

func token(t *testing.T, cfg config.Config, role enums.Role) string {
	t.Helper()

	jwt := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAccessTTL)
	raw, _, err := jwt.GenerateAccessToken(authsvc.Identity{UserID: "user-1", Role: role, Name: "Amal"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return raw
}

func do(t *testing.T, method, url, bearer string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode %s %s: %v", method, url, err)
	}
	return resp, payload
}

func TestHealthzReportsDegradedDependencies(t *testing.T) {
	ts, _ := newServer(t)

	resp, payload := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	if payload["status"] != "degraded" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	checks, _ := payload["checks"].(map[string]any)
	if checks["redis"] != "ok" || checks["postgres"] != "down" || checks["s3"] != "down" {
		t.Fatalf("unexpected checks: %+v", checks)
	}
}

func TestPublicConfigExposesAppealLimits(t *testing.T) {
	ts, cfg := newServer(t)

	resp, payload := do(t, http.MethodGet, ts.URL+"/v1/config", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	appeals, _ := payload["appeals"].(map[string]any)
	if appeals["messages_per_minute"] != float64(cfg.Appeals.MessagesPerMinute) {
		t.Fatalf("unexpected appeals config: %+v", payload)
	}
}

func TestAuthAndRoleGates(t *testing.T) {
	ts, cfg := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		bearer string
		status int
		code   string
	}{
		{name: "create requires auth", method: http.MethodPost, path: "/v1/petitions", status: http.StatusUnauthorized},
		{name: "bad token rejected on optional route", method: http.MethodGet, path: "/v1/petitions/p1", bearer: "garbage", status: http.StatusUnauthorized},
		{name: "user cannot open moderation queue", method: http.MethodGet, path: "/v1/mod/queue", bearer: token(t, cfg, enums.RoleUser), status: http.StatusForbidden},
		{name: "moderator passes gate into degraded store", method: http.MethodGet, path: "/v1/mod/queue", bearer: token(t, cfg, enums.RoleModerator), status: http.StatusServiceUnavailable, code: "DEPENDENCY_FAILURE"},
		{name: "public count hits degraded store", method: http.MethodGet, path: "/v1/petitions/p1/signatures/count", status: http.StatusServiceUnavailable, code: "DEPENDENCY_FAILURE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, payload := do(t, tt.method, ts.URL+tt.path, tt.bearer)
			if resp.StatusCode != tt.status {
				t.Fatalf("unexpected status: got %d want %d (%+v)", resp.StatusCode, tt.status, payload)
			}
			if tt.code != "" && payload["code"] != tt.code {
				t.Fatalf("unexpected code: %+v", payload)
			}
		})
	}
}
