package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	appealsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/appeals"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/dto"
	httperrors "github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/errors"
)

type AppealService interface {
	CreateAppeal(ctx context.Context, in appealsvc.CreateAppealInput) (string, error)
	AddMessage(ctx context.Context, in appealsvc.AddMessageInput) (model.AppealMessage, error)
	UpdateStatus(ctx context.Context, in appealsvc.UpdateStatusInput) (model.Appeal, error)
	GetAppealsForActor(ctx context.Context, actorID string, role enums.Role, q appealsvc.ListQuery) (appealsvc.Page, error)
	GetAppeal(ctx context.Context, appealID, actorID string, role enums.Role) (model.Appeal, error)
}

type AppealHandler struct {
	service AppealService
}

func NewAppealHandler(service AppealService) *AppealHandler {
	return &AppealHandler{service: service}
}

func (h *AppealHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "APPEAL_SERVICE_UNAVAILABLE", "appeal service is unavailable")
		return
	}

	var req dto.CreateAppealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	id, err := h.service.CreateAppeal(r.Context(), appealsvc.CreateAppealInput{
		PetitionID:   chi.URLParam(r, "id"),
		CreatorID:    actor.ID,
		CreatorName:  actor.Name,
		CreatorEmail: actor.Email,
		Message:      req.Message,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.CreateAppealResponse{AppealID: id})
}

func (h *AppealHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "APPEAL_SERVICE_UNAVAILABLE", "appeal service is unavailable")
		return
	}

	query := r.URL.Query()
	q := appealsvc.ListQuery{
		Status: enums.AppealStatus(strings.ToLower(strings.TrimSpace(query.Get("status")))),
		Limit:  parseIntOrDefault(query.Get("limit"), 0),
	}
	if raw := strings.TrimSpace(query.Get("before")); raw != "" {
		before, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeBadRequest(w, "INVALID_CURSOR", "before must be an RFC3339 timestamp")
			return
		}
		q.Before = &before
	}

	page, err := h.service.GetAppealsForActor(r.Context(), actor.ID, actor.Role, q)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewAppealsListResponse(page.Items, page.NextBefore))
}

func (h *AppealHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "APPEAL_SERVICE_UNAVAILABLE", "appeal service is unavailable")
		return
	}

	appeal, err := h.service.GetAppeal(r.Context(), chi.URLParam(r, "id"), actor.ID, actor.Role)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewAppealResponse(appeal))
}

func (h *AppealHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "APPEAL_SERVICE_UNAVAILABLE", "appeal service is unavailable")
		return
	}

	var req dto.AddAppealMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	msg, err := h.service.AddMessage(r.Context(), appealsvc.AddMessageInput{
		AppealID:   chi.URLParam(r, "id"),
		SenderID:   actor.ID,
		SenderName: actor.Name,
		SenderRole: actor.Role,
		Content:    req.Content,
		IsInternal: req.IsInternal,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.NewAppealMessageResponse(msg))
}

func (h *AppealHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "APPEAL_SERVICE_UNAVAILABLE", "appeal service is unavailable")
		return
	}

	var req dto.UpdateAppealStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	appeal, err := h.service.UpdateStatus(r.Context(), appealsvc.UpdateStatusInput{
		AppealID:      chi.URLParam(r, "id"),
		NewStatus:     enums.AppealStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		ChangedBy:     actor.ID,
		ChangedByName: actor.Name,
		Role:          actor.Role,
		Reason:        req.Reason,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewAppealResponse(appeal))
}
