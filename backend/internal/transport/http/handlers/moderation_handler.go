package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	pgrepo "github.com/Brahim-Amzil/3arida-sub004/backend/internal/repo/postgres"
	modsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/moderation"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/dto"
	httperrors "github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/errors"
)

const (
	defaultQueueLimit = 20
	defaultAuditLimit = 100
)

type ModerationService interface {
	ApplyModerationAction(ctx context.Context, in modsvc.ModerationInput) (modsvc.Result, error)
	Queue(ctx context.Context, actor model.Actor, limit int) (modsvc.Queue, error)
	ListAuditLog(ctx context.Context, actor model.Actor, filter pgrepo.AuditFilter) ([]model.AuditEntry, error)
	ListRejectReasons() []modsvc.RejectReasonItem
}

type ModerationHandler struct {
	service ModerationService
}

func NewModerationHandler(service ModerationService) *ModerationHandler {
	return &ModerationHandler{service: service}
}

func (h *ModerationHandler) Action(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.ModerationActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.ApplyModerationAction(r.Context(), modsvc.ModerationInput{
		PetitionID: chi.URLParam(r, "id"),
		Action:     enums.ModerationAction(req.Action),
		Actor:      actor,
		Notes:      req.Notes,
		ReasonCode: req.ReasonCode,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ModerationActionResponse{
		Petition:         dto.NewPetitionResponse(res.Petition),
		AuditRecorded:    res.AuditOK,
		NotificationSent: res.NotificationOK,
	})
}

func (h *ModerationHandler) Queue(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), defaultQueueLimit)
	queue, err := h.service.Queue(r.Context(), actor, limit)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	items := make([]dto.ModerationQueueItemResponse, 0, len(queue.Items))
	for _, item := range queue.Items {
		items = append(items, dto.ModerationQueueItemResponse{
			Petition:       dto.NewPetitionResponse(item.Petition),
			ImageURL:       item.ImageURL,
			WaitingSeconds: int64(item.Waiting.Seconds()),
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ModerationQueueResponse{
		Size:      queue.Size,
		ETABucket: queue.ETABucket,
		Items:     items,
	})
}

func (h *ModerationHandler) RejectReasons(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	reasons := h.service.ListRejectReasons()
	items := make([]dto.RejectReasonResponse, 0, len(reasons))
	for _, item := range reasons {
		items = append(items, dto.RejectReasonResponse{
			ReasonCode:      item.ReasonCode,
			Label:           item.Label,
			ReasonText:      item.ReasonText,
			RequiredFixStep: item.RequiredFixStep,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.RejectReasonsResponse{Items: items})
}

func (h *ModerationHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	q := r.URL.Query()
	filter := pgrepo.AuditFilter{
		TargetType: enums.AuditTarget(strings.ToLower(strings.TrimSpace(q.Get("target_type")))),
		TargetID:   strings.TrimSpace(q.Get("target_id")),
		Limit:      parseIntOrDefault(q.Get("limit"), defaultAuditLimit),
	}
	entries, err := h.service.ListAuditLog(r.Context(), actor, filter)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			ActorName:  e.ActorName,
			ActorEmail: e.ActorEmail,
			ActorRole:  string(e.ActorRole),
			Action:     string(e.Action),
			TargetType: string(e.TargetType),
			TargetID:   e.TargetID,
			TargetName: e.TargetName,
			Details: dto.AuditDetailsResponse{
				OldValue: e.Details.OldValue,
				NewValue: e.Details.NewValue,
				Reason:   e.Details.Reason,
			},
			CreatedAt: e.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.AuditLogResponse{Items: items})
}
