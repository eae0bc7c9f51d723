package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	authsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/auth"
	httperrors "github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/errors"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

// requireActor writes a 401 and reports false when the request carries no identity.
func requireActor(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok || identity.UserID == "" {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return model.Actor{}, false
	}
	return identity.Actor(), true
}

// optionalActor returns the zero actor for anonymous callers.
func optionalActor(r *http.Request) model.Actor {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		return model.Actor{}
	}
	return identity.Actor()
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
