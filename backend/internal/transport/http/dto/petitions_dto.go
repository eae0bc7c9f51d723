package dto

import (
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

type CreatePetitionRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	TargetSignatures int    `json:"target_signatures"`
}

// UpdatePetitionRequest leaves omitted fields unchanged.
type UpdatePetitionRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Category         *string `json:"category"`
	TargetSignatures *int    `json:"target_signatures"`
}

type ResubmissionEntryResponse struct {
	RejectedAt    time.Time  `json:"rejected_at"`
	Reason        string     `json:"reason"`
	ResubmittedAt *time.Time `json:"resubmitted_at"`
}

type PetitionResponse struct {
	ID                  string                      `json:"id"`
	Title               string                      `json:"title"`
	Description         string                      `json:"description"`
	Category            string                      `json:"category"`
	CreatorID           string                      `json:"creator_id"`
	Status              string                      `json:"status"`
	TargetSignatures    int                         `json:"target_signatures"`
	CurrentSignatures   int                         `json:"current_signatures"`
	HasImage            bool                        `json:"has_image"`
	IsActive            bool                        `json:"is_active"`
	ModeratorNotes      *string                     `json:"moderator_notes,omitempty"`
	ResubmissionHistory []ResubmissionEntryResponse `json:"resubmission_history"`
	CreatedAt           time.Time                   `json:"created_at"`
	ApprovedAt          *time.Time                  `json:"approved_at,omitempty"`
	RejectedAt          *time.Time                  `json:"rejected_at,omitempty"`
	PausedAt            *time.Time                  `json:"paused_at,omitempty"`
	DeletedAt           *time.Time                  `json:"deleted_at,omitempty"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

type PetitionsListResponse struct {
	Items []PetitionResponse `json:"items"`
}

func NewPetitionResponse(p model.Petition) PetitionResponse {
	history := make([]ResubmissionEntryResponse, 0, len(p.ResubmissionHistory))
	for _, entry := range p.ResubmissionHistory {
		history = append(history, ResubmissionEntryResponse{
			RejectedAt:    entry.RejectedAt,
			Reason:        entry.Reason,
			ResubmittedAt: entry.ResubmittedAt,
		})
	}

	return PetitionResponse{
		ID:                  p.ID,
		Title:               p.Title,
		Description:         p.Description,
		Category:            p.Category,
		CreatorID:           p.CreatorID,
		Status:              string(p.Status),
		TargetSignatures:    p.TargetSignatures,
		CurrentSignatures:   p.CurrentSignatures,
		HasImage:            p.ImageKey != nil && *p.ImageKey != "",
		IsActive:            p.IsActive,
		ModeratorNotes:      p.ModeratorNotes,
		ResubmissionHistory: history,
		CreatedAt:           p.CreatedAt,
		ApprovedAt:          p.ApprovedAt,
		RejectedAt:          p.RejectedAt,
		PausedAt:            p.PausedAt,
		DeletedAt:           p.DeletedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func NewPetitionsListResponse(items []model.Petition) PetitionsListResponse {
	out := make([]PetitionResponse, 0, len(items))
	for _, p := range items {
		out = append(out, NewPetitionResponse(p))
	}
	return PetitionsListResponse{Items: out}
}

type SignPetitionRequest struct {
	SignerName  string `json:"signer_name"`
	SignerPhone string `json:"signer_phone"`
	PhoneToken  string `json:"phone_token"`
	Method      string `json:"verification_method"`
	Comment     string `json:"comment"`
}

type SignatureResponse struct {
	ID                 string    `json:"id"`
	PetitionID         string    `json:"petition_id"`
	SignerName         string    `json:"signer_name"`
	VerificationMethod string    `json:"verification_method"`
	Comment            *string   `json:"comment,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

type SignatureCountResponse struct {
	PetitionID string `json:"petition_id"`
	Count      int    `json:"count"`
}

func NewSignatureResponse(sig model.Signature) SignatureResponse {
	return SignatureResponse{
		ID:                 sig.ID,
		PetitionID:         sig.PetitionID,
		SignerName:         sig.SignerName,
		VerificationMethod: string(sig.VerificationMethod),
		Comment:            sig.Comment,
		CreatedAt:          sig.CreatedAt,
	}
}
