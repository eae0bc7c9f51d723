package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/config"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/dto"
)

func TestConfigHandlerResponseShape(t *testing.T) {
	h := NewConfigHandler(config.Default().Appeals)

	req := httptest.NewRequest(http.MethodGet, "/v1/config", nil)
	rr := httptest.NewRecorder()
	h.Handle(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	requireObjectKey(t, raw, "appeals")
	requireObjectKey(t, raw, "images")

	var resp dto.ConfigResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode typed response: %v", err)
	}
	if resp.Appeals.MessagesPerMinute != 5 || resp.Appeals.MessagesPer10Minutes != 20 {
		t.Fatalf("unexpected appeal limits: %+v", resp.Appeals)
	}
	if resp.Images.MaxBytes <= 0 || len(resp.Images.AllowedTypes) != 3 {
		t.Fatalf("unexpected image limits: %+v", resp.Images)
	}
}

func requireObjectKey(t *testing.T, payload map[string]interface{}, key string) {
	t.Helper()
	if _, ok := payload[key]; !ok {
		t.Fatalf("missing key %q in payload", key)
	}
}
