package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	authsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/auth"
)

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, userID string, role enums.Role) *http.Request {
	ctx := authsvc.WithIdentity(req.Context(), authsvc.Identity{
		UserID: userID,
		Role:   role,
		Name:   "Name " + userID,
		Email:  userID + "@example.com",
	})
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}
