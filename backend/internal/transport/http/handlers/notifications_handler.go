package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/dto"
	httperrors "github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/errors"
)

const defaultNotificationsLimit = 50

type InboxService interface {
	List(ctx context.Context, actor model.Actor, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, actor model.Actor, notificationID string) error
	SyncContact(ctx context.Context, actor model.Actor, telegramChatID *int64) error
}

type NotificationHandler struct {
	inbox InboxService
}

func NewNotificationHandler(inbox InboxService) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.inbox == nil {
		writeInternal(w, "NOTIFICATION_SERVICE_UNAVAILABLE", "notification service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), defaultNotificationsLimit)
	items, err := h.inbox.List(r.Context(), actor, limit)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewNotificationsListResponse(items))
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.inbox == nil {
		writeInternal(w, "NOTIFICATION_SERVICE_UNAVAILABLE", "notification service is unavailable")
		return
	}

	if err := h.inbox.MarkRead(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *NotificationHandler) SyncContact(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.inbox == nil {
		writeInternal(w, "NOTIFICATION_SERVICE_UNAVAILABLE", "notification service is unavailable")
		return
	}

	var req dto.ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.inbox.SyncContact(r.Context(), actor, req.TelegramChatID); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}
