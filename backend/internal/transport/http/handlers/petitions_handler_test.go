package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	authsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/auth"
	petitionsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/petitions"
	signaturesvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/signatures"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/dto"
	httperrors "github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/errors"
)

type petitionServiceStub struct {
	created  petitionsvc.CreateInput
	getActor model.Actor
	getErr   error
	updated  petitionsvc.UpdateInput
	listFor  string
	petition model.Petition
}

func (s *petitionServiceStub) Create(_ context.Context, in petitionsvc.CreateInput) (model.Petition, error) {
	s.created = in
	return s.petition, nil
}

func (s *petitionServiceStub) Get(_ context.Context, _ string, actor model.Actor) (model.Petition, error) {
	s.getActor = actor
	return s.petition, s.getErr
}

func (s *petitionServiceStub) UpdateContent(_ context.Context, in petitionsvc.UpdateInput) (model.Petition, error) {
	s.updated = in
	return s.petition, nil
}

func (s *petitionServiceStub) Resubmit(_ context.Context, _ string, _ model.Actor) (model.Petition, error) {
	return model.Petition{}, apperr.ErrInvalidPetitionState
}

func (s *petitionServiceStub) ListByCreator(_ context.Context, creatorID string, _ int) ([]model.Petition, error) {
	s.listFor = creatorID
	return []model.Petition{s.petition}, nil
}

type signatureServiceStub struct {
	in  signaturesvc.SignInput
	err error
}

func (s *signatureServiceStub) Sign(_ context.Context, in signaturesvc.SignInput) (model.Signature, error) {
	s.in = in
	if s.err != nil {
		return model.Signature{}, s.err
	}
	return model.Signature{
		ID:                 "sig-1",
		PetitionID:         in.PetitionID,
		SignerName:         in.SignerName,
		VerificationMethod: in.Method,
		CreatedAt:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}, nil
}

func (s *signatureServiceStub) Count(_ context.Context, _ string) (int, error) {
	return 12, nil
}

func petitionRouter(h *PetitionHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/v1/petitions", h.Create)
	r.Get("/v1/petitions/{id}", h.Get)
	r.Put("/v1/petitions/{id}", h.Update)
	r.Post("/v1/petitions/{id}/resubmit", h.Resubmit)
	r.Get("/v1/me/petitions", h.ListMine)
	r.Post("/v1/petitions/{id}/signatures", h.Sign)
	r.Get("/v1/petitions/{id}/signatures/count", h.SignatureCount)
	return r
}

func TestPetitionCreateRequiresIdentity(t *testing.T) {
	r := petitionRouter(NewPetitionHandler(&petitionServiceStub{}, nil, nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, newJSONRequest(t, http.MethodPost, "/v1/petitions", dto.CreatePetitionRequest{Title: "x"}))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestPetitionCreatePassesCreator(t *testing.T) {
	stub := &petitionServiceStub{petition: model.Petition{ID: "p1", Status: enums.PetitionStatusPending}}
	r := petitionRouter(NewPetitionHandler(stub, nil, nil))

	req := asUser(newJSONRequest(t, http.MethodPost, "/v1/petitions", dto.CreatePetitionRequest{
		Title:            "Fix the road",
		Description:      "Potholes everywhere",
		Category:         "infrastructure",
		TargetSignatures: 500,
	}), "u1", enums.RoleCreator)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if stub.created.Creator.ID != "u1" || stub.created.TargetSignatures != 500 {
		t.Fatalf("unexpected create input: %+v", stub.created)
	}
	var resp dto.PetitionResponse
	decodeBody(t, rr, &resp)
	if resp.ID != "p1" || resp.Status != "pending" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPetitionCreateRejectsUnknownFields(t *testing.T) {
	r := petitionRouter(NewPetitionHandler(&petitionServiceStub{}, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/petitions", strings.NewReader(`{"title":"x","status":"approved"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, asUser(req, "u1", enums.RoleCreator))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPetitionGetAllowsAnonymous(t *testing.T) {
	stub := &petitionServiceStub{petition: model.Petition{ID: "p1", Status: enums.PetitionStatusApproved}}
	r := petitionRouter(NewPetitionHandler(stub, nil, nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/petitions/p1", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if stub.getActor.ID != "" {
		t.Fatalf("expected anonymous actor, got %+v", stub.getActor)
	}
}

func TestPetitionGetMapsNotFound(t *testing.T) {
	stub := &petitionServiceStub{getErr: apperr.ErrNotFound}
	r := petitionRouter(NewPetitionHandler(stub, nil, nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/petitions/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestPetitionUpdateKeepsOmittedFieldsNil(t *testing.T) {
	stub := &petitionServiceStub{petition: model.Petition{ID: "p1"}}
	r := petitionRouter(NewPetitionHandler(stub, nil, nil))

	req := httptest.NewRequest(http.MethodPut, "/v1/petitions/p1", strings.NewReader(`{"title":"New title"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, asUser(req, "u1", enums.RoleCreator))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if stub.updated.PetitionID != "p1" || stub.updated.Title == nil || *stub.updated.Title != "New title" {
		t.Fatalf("unexpected update input: %+v", stub.updated)
	}
	if stub.updated.Description != nil || stub.updated.TargetSignatures != nil {
		t.Fatalf("omitted fields must stay nil: %+v", stub.updated)
	}
}

func TestPetitionResubmitMapsStateError(t *testing.T) {
	r := petitionRouter(NewPetitionHandler(&petitionServiceStub{}, nil, nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodPost, "/v1/petitions/p1/resubmit", nil), "u1", enums.RoleCreator))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	var body httperrors.APIError
	decodeBody(t, rr, &body)
	if body.Code != "INVALID_PETITION_STATE" {
		t.Fatalf("unexpected code: %s", body.Code)
	}
}

func TestPetitionListMineUsesCaller(t *testing.T) {
	stub := &petitionServiceStub{petition: model.Petition{ID: "p1"}}
	r := petitionRouter(NewPetitionHandler(stub, nil, nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/v1/me/petitions", nil), "u7", enums.RoleCreator))

	if rr.Code != http.StatusOK || stub.listFor != "u7" {
		t.Fatalf("unexpected result: code=%d listFor=%s", rr.Code, stub.listFor)
	}
	var resp dto.PetitionsListResponse
	decodeBody(t, rr, &resp)
	if len(resp.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(resp.Items))
	}
}

func TestPetitionSignUsesIdentityWhenPresent(t *testing.T) {
	sigs := &signatureServiceStub{}
	r := petitionRouter(NewPetitionHandler(nil, sigs, nil))

	req := asUser(newJSONRequest(t, http.MethodPost, "/v1/petitions/p1/signatures", dto.SignPetitionRequest{
		Method: "account",
	}), "u9", enums.RoleUser)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if sigs.in.PetitionID != "p1" || sigs.in.SignerUserID != "u9" || sigs.in.SignerName != "Name u9" {
		t.Fatalf("unexpected sign input: %+v", sigs.in)
	}
}

type phoneVerifierStub struct {
	proofs map[string]authsvc.PhoneVerification
}

func (s phoneVerifierStub) ParsePhoneVerification(raw string) (authsvc.PhoneVerification, error) {
	proof, ok := s.proofs[raw]
	if !ok {
		return authsvc.PhoneVerification{}, authsvc.ErrUnauthorized
	}
	return proof, nil
}

var guestProof = phoneVerifierStub{proofs: map[string]authsvc.PhoneVerification{
	"otp-ok": {PhoneNumber: "+212600000000", VerifiedAt: time.Date(2026, 3, 1, 9, 55, 0, 0, time.UTC)},
}}

func TestPetitionSignDuplicateIsConflict(t *testing.T) {
	sigs := &signatureServiceStub{err: apperr.ErrDuplicateSignature}
	r := petitionRouter(NewPetitionHandler(nil, sigs, guestProof))

	req := newJSONRequest(t, http.MethodPost, "/v1/petitions/p1/signatures", dto.SignPetitionRequest{
		SignerName:  "Guest",
		SignerPhone: "+212600000000",
		PhoneToken:  "otp-ok",
		Method:      "phone",
	})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if sigs.in.SignerUserID != "" {
		t.Fatalf("anonymous signer must not carry a user id: %+v", sigs.in)
	}
	if sigs.in.PhoneProof == nil || sigs.in.PhoneProof.PhoneNumber != "+212600000000" || sigs.in.PhoneProof.VerifiedAt.IsZero() {
		t.Fatalf("expected the checked proof to reach the service: %+v", sigs.in.PhoneProof)
	}
}

func TestPetitionSignRejectsBadPhoneToken(t *testing.T) {
	sigs := &signatureServiceStub{}
	r := petitionRouter(NewPetitionHandler(nil, sigs, guestProof))

	req := newJSONRequest(t, http.MethodPost, "/v1/petitions/p1/signatures", dto.SignPetitionRequest{
		SignerName:  "Guest",
		SignerPhone: "+212600000001",
		PhoneToken:  "forged",
		Method:      "phone",
	})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var body httperrors.APIError
	decodeBody(t, rr, &body)
	if rr.Code != http.StatusUnauthorized || body.Code != "INVALID_PHONE_TOKEN" {
		t.Fatalf("unexpected response: code=%d body=%+v", rr.Code, body)
	}
	if sigs.in.PetitionID != "" {
		t.Fatalf("service must not be called with a bad token: %+v", sigs.in)
	}
}

func TestPetitionSignWithoutPhoneTokenPassesNoProof(t *testing.T) {
	sigs := &signatureServiceStub{err: apperr.ErrUnauthorizedAccess}
	r := petitionRouter(NewPetitionHandler(nil, sigs, guestProof))

	req := newJSONRequest(t, http.MethodPost, "/v1/petitions/p1/signatures", dto.SignPetitionRequest{
		SignerName:  "Guest",
		SignerPhone: "+212600000001",
		Method:      "phone",
	})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if sigs.in.PhoneProof != nil {
		t.Fatalf("no token must mean no proof: %+v", sigs.in.PhoneProof)
	}
}

func TestPetitionSignatureCount(t *testing.T) {
	r := petitionRouter(NewPetitionHandler(nil, &signatureServiceStub{}, nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/petitions/p1/signatures/count", nil))

	var resp dto.SignatureCountResponse
	decodeBody(t, rr, &resp)
	if rr.Code != http.StatusOK || resp.Count != 12 || resp.PetitionID != "p1" {
		t.Fatalf("unexpected response: code=%d body=%+v", rr.Code, resp)
	}
}
