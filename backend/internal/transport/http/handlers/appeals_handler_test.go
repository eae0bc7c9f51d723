package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	appealsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/appeals"
	ratesvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/rate"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/dto"
	httperrors "github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/errors"
)

type appealServiceStub struct {
	created    appealsvc.CreateAppealInput
	createErr  error
	message    appealsvc.AddMessageInput
	messageErr error
	status     appealsvc.UpdateStatusInput
	statusErr  error
	listRole   enums.Role
	listQuery  appealsvc.ListQuery
	nextBefore *time.Time
	appeal     model.Appeal
}

func (s *appealServiceStub) CreateAppeal(_ context.Context, in appealsvc.CreateAppealInput) (string, error) {
	s.created = in
	if s.createErr != nil {
		return "", s.createErr
	}
	return "a1", nil
}

func (s *appealServiceStub) AddMessage(_ context.Context, in appealsvc.AddMessageInput) (model.AppealMessage, error) {
	s.message = in
	if s.messageErr != nil {
		return model.AppealMessage{}, s.messageErr
	}
	return model.AppealMessage{
		ID:         "m1",
		SenderID:   in.SenderID,
		SenderRole: enums.MessageRoleCreator,
		Content:    in.Content,
		CreatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}, nil
}

func (s *appealServiceStub) UpdateStatus(_ context.Context, in appealsvc.UpdateStatusInput) (model.Appeal, error) {
	s.status = in
	if s.statusErr != nil {
		return model.Appeal{}, s.statusErr
	}
	out := s.appeal
	out.Status = in.NewStatus
	return out, nil
}

func (s *appealServiceStub) GetAppealsForActor(_ context.Context, _ string, role enums.Role, q appealsvc.ListQuery) (appealsvc.Page, error) {
	s.listRole = role
	s.listQuery = q
	return appealsvc.Page{Items: []model.Appeal{s.appeal}, NextBefore: s.nextBefore}, nil
}

func (s *appealServiceStub) GetAppeal(_ context.Context, appealID, actorID string, _ enums.Role) (model.Appeal, error) {
	if actorID != s.appeal.CreatorID {
		return model.Appeal{}, apperr.ErrUnauthorizedAccess
	}
	return s.appeal, nil
}

func appealRouter(h *AppealHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/v1/petitions/{id}/appeals", h.Create)
	r.Get("/v1/appeals", h.List)
	r.Get("/v1/appeals/{id}", h.Get)
	r.Post("/v1/appeals/{id}/messages", h.AddMessage)
	r.Post("/v1/mod/appeals/{id}/status", h.UpdateStatus)
	return r
}

func TestAppealCreate(t *testing.T) {
	tests := []struct {
		name      string
		createErr error
		want      int
	}{
		{name: "created", want: http.StatusCreated},
		{name: "duplicate open appeal", createErr: apperr.ErrDuplicateOpenAppeal, want: http.StatusConflict},
		{name: "petition not rejected", createErr: apperr.ErrInvalidPetitionState, want: http.StatusConflict},
		{name: "not the creator", createErr: apperr.ErrUnauthorizedAccess, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &appealServiceStub{createErr: tt.createErr}
			r := appealRouter(NewAppealHandler(stub))

			req := asUser(newJSONRequest(t, http.MethodPost, "/v1/petitions/p1/appeals", dto.CreateAppealRequest{
				Message: "Please review again",
			}), "u1", enums.RoleCreator)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
			if stub.created.PetitionID != "p1" || stub.created.CreatorID != "u1" || stub.created.CreatorEmail != "u1@example.com" {
				t.Fatalf("unexpected create input: %+v", stub.created)
			}
		})
	}
}

func TestAppealAddMessageRateLimited(t *testing.T) {
	stub := &appealServiceStub{messageErr: &ratesvc.LimitedError{RetryAfterSec: 30}}
	r := appealRouter(NewAppealHandler(stub))

	req := asUser(newJSONRequest(t, http.MethodPost, "/v1/appeals/a1/messages", dto.AddAppealMessageRequest{
		Content: "hello again",
	}), "u1", enums.RoleCreator)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	var body httperrors.RateLimitError
	decodeBody(t, rr, &body)
	if body.RetryAfterSec != 30 {
		t.Fatalf("unexpected retry_after_sec: %d", body.RetryAfterSec)
	}
}

func TestAppealAddMessagePassesRoleAndInternalFlag(t *testing.T) {
	stub := &appealServiceStub{}
	r := appealRouter(NewAppealHandler(stub))

	req := asUser(newJSONRequest(t, http.MethodPost, "/v1/appeals/a1/messages", dto.AddAppealMessageRequest{
		Content:    "internal note",
		IsInternal: true,
	}), "m1", enums.RoleModerator)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if stub.message.AppealID != "a1" || stub.message.SenderRole != enums.RoleModerator || !stub.message.IsInternal {
		t.Fatalf("unexpected message input: %+v", stub.message)
	}
}

func TestAppealAddMessageClosedAppeal(t *testing.T) {
	stub := &appealServiceStub{messageErr: apperr.ErrAppealClosed}
	r := appealRouter(NewAppealHandler(stub))

	req := asUser(newJSONRequest(t, http.MethodPost, "/v1/appeals/a1/messages", dto.AddAppealMessageRequest{
		Content: "one more thing",
	}), "u1", enums.RoleCreator)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var body httperrors.APIError
	decodeBody(t, rr, &body)
	if rr.Code != http.StatusConflict || body.Code != "APPEAL_CLOSED" {
		t.Fatalf("unexpected response: code=%d body=%+v", rr.Code, body)
	}
}

func TestAppealListNormalizesStatusFilter(t *testing.T) {
	stub := &appealServiceStub{appeal: model.Appeal{ID: "a1", Status: enums.AppealStatusPending}}
	r := appealRouter(NewAppealHandler(stub))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/v1/appeals?status=%20In-Progress", nil), "m1", enums.RoleModerator))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if stub.listQuery.Status != enums.AppealStatusInProgress || stub.listRole != enums.RoleModerator {
		t.Fatalf("unexpected list args: status=%q role=%q", stub.listQuery.Status, stub.listRole)
	}
	var resp dto.AppealsListResponse
	decodeBody(t, rr, &resp)
	if len(resp.Items) != 1 || resp.Items[0].ID != "a1" {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
	if resp.NextBefore != nil {
		t.Fatalf("expected no cursor, got %v", resp.NextBefore)
	}
}

func TestAppealListPassesPagingCursor(t *testing.T) {
	cursor := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	stub := &appealServiceStub{appeal: model.Appeal{ID: "a1", Status: enums.AppealStatusPending}, nextBefore: &cursor}
	r := appealRouter(NewAppealHandler(stub))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/v1/appeals?limit=25&before=2026-03-02T00:00:00Z", nil), "m1", enums.RoleModerator))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if stub.listQuery.Limit != 25 || stub.listQuery.Before == nil || !stub.listQuery.Before.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected paging args: %+v", stub.listQuery)
	}
	var resp dto.AppealsListResponse
	decodeBody(t, rr, &resp)
	if resp.NextBefore == nil || !resp.NextBefore.Equal(cursor) {
		t.Fatalf("expected next_before %v, got %v", cursor, resp.NextBefore)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/v1/appeals?before=yesterday", nil), "m1", enums.RoleModerator))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed cursor, got %d", rr.Code)
	}
}

func TestAppealGetForbiddenForOtherCreators(t *testing.T) {
	stub := &appealServiceStub{appeal: model.Appeal{ID: "a1", CreatorID: "u1"}}
	r := appealRouter(NewAppealHandler(stub))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/v1/appeals/a1", nil), "u2", enums.RoleCreator))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestAppealUpdateStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		statusErr error
		want      int
	}{
		{name: "resolve", status: "Resolved", want: http.StatusOK},
		{name: "invalid transition", status: "pending", statusErr: apperr.ErrInvalidTransition, want: http.StatusConflict},
		{name: "lost race", status: "rejected", statusErr: apperr.ErrConflict, want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &appealServiceStub{statusErr: tt.statusErr, appeal: model.Appeal{ID: "a1"}}
			r := appealRouter(NewAppealHandler(stub))

			req := asUser(newJSONRequest(t, http.MethodPost, "/v1/mod/appeals/a1/status", dto.UpdateAppealStatusRequest{
				Status: tt.status,
				Reason: "checked",
			}), "m1", enums.RoleModerator)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
			if stub.status.ChangedBy != "m1" || stub.status.Role != enums.RoleModerator || stub.status.Reason != "checked" {
				t.Fatalf("unexpected status input: %+v", stub.status)
			}
		})
	}
}
