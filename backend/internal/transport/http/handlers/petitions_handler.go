package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	authsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/auth"
	petitionsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/petitions"
	signaturesvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/signatures"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/dto"
	httperrors "github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/errors"
)

const defaultPetitionsLimit = 50

type PetitionService interface {
	Create(ctx context.Context, in petitionsvc.CreateInput) (model.Petition, error)
	Get(ctx context.Context, id string, actor model.Actor) (model.Petition, error)
	UpdateContent(ctx context.Context, in petitionsvc.UpdateInput) (model.Petition, error)
	Resubmit(ctx context.Context, petitionID string, actor model.Actor) (model.Petition, error)
	ListByCreator(ctx context.Context, creatorID string, limit int) ([]model.Petition, error)
}

type SignatureService interface {
	Sign(ctx context.Context, in signaturesvc.SignInput) (model.Signature, error)
	Count(ctx context.Context, petitionID string) (int, error)
}

type PhoneVerifier interface {
	ParsePhoneVerification(raw string) (authsvc.PhoneVerification, error)
}

type PetitionHandler struct {
	petitions  PetitionService
	signatures SignatureService
	phones     PhoneVerifier
}

func NewPetitionHandler(petitions PetitionService, signatures SignatureService, phones PhoneVerifier) *PetitionHandler {
	return &PetitionHandler{petitions: petitions, signatures: signatures, phones: phones}
}

func (h *PetitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.petitions == nil {
		writeInternal(w, "PETITION_SERVICE_UNAVAILABLE", "petition service is unavailable")
		return
	}

	var req dto.CreatePetitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	p, err := h.petitions.Create(r.Context(), petitionsvc.CreateInput{
		Creator:          actor,
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		TargetSignatures: req.TargetSignatures,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.NewPetitionResponse(p))
}

func (h *PetitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.petitions == nil {
		writeInternal(w, "PETITION_SERVICE_UNAVAILABLE", "petition service is unavailable")
		return
	}

	p, err := h.petitions.Get(r.Context(), chi.URLParam(r, "id"), optionalActor(r))
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewPetitionResponse(p))
}

func (h *PetitionHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.petitions == nil {
		writeInternal(w, "PETITION_SERVICE_UNAVAILABLE", "petition service is unavailable")
		return
	}

	var req dto.UpdatePetitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	p, err := h.petitions.UpdateContent(r.Context(), petitionsvc.UpdateInput{
		PetitionID:       chi.URLParam(r, "id"),
		Actor:            actor,
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		TargetSignatures: req.TargetSignatures,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewPetitionResponse(p))
}

func (h *PetitionHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.petitions == nil {
		writeInternal(w, "PETITION_SERVICE_UNAVAILABLE", "petition service is unavailable")
		return
	}

	p, err := h.petitions.Resubmit(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewPetitionResponse(p))
}

func (h *PetitionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if h.petitions == nil {
		writeInternal(w, "PETITION_SERVICE_UNAVAILABLE", "petition service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), defaultPetitionsLimit)
	items, err := h.petitions.ListByCreator(r.Context(), actor.ID, limit)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewPetitionsListResponse(items))
}

// Sign accepts anonymous phone signatures backed by a phone_token; account and
// email signatures take the signer id from the access token.
func (h *PetitionHandler) Sign(w http.ResponseWriter, r *http.Request) {
	if h.signatures == nil {
		writeInternal(w, "SIGNATURE_SERVICE_UNAVAILABLE", "signature service is unavailable")
		return
	}

	var req dto.SignPetitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	var proof *signaturesvc.PhoneProof
	if req.PhoneToken != "" {
		if h.phones == nil {
			writeUnauthorized(w, "INVALID_PHONE_TOKEN", "phone verification is unavailable")
			return
		}
		verified, err := h.phones.ParsePhoneVerification(req.PhoneToken)
		if err != nil {
			writeUnauthorized(w, "INVALID_PHONE_TOKEN", "phone verification token is invalid or expired")
			return
		}
		proof = &signaturesvc.PhoneProof{PhoneNumber: verified.PhoneNumber, VerifiedAt: verified.VerifiedAt}
	}

	actor := optionalActor(r)
	name := req.SignerName
	if name == "" {
		name = actor.Name
	}

	sig, err := h.signatures.Sign(r.Context(), signaturesvc.SignInput{
		PetitionID:   chi.URLParam(r, "id"),
		SignerUserID: actor.ID,
		SignerName:   name,
		SignerPhone:  req.SignerPhone,
		PhoneProof:   proof,
		Method:       enums.VerificationMethod(req.Method),
		Comment:      req.Comment,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.NewSignatureResponse(sig))
}

func (h *PetitionHandler) SignatureCount(w http.ResponseWriter, r *http.Request) {
	if h.signatures == nil {
		writeInternal(w, "SIGNATURE_SERVICE_UNAVAILABLE", "signature service is unavailable")
		return
	}

	petitionID := chi.URLParam(r, "id")
	n, err := h.signatures.Count(r.Context(), petitionID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SignatureCountResponse{PetitionID: petitionID, Count: n})
}
