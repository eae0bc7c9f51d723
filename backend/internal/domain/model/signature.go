package model

import (
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
)

type Signature struct {
	ID                 string                   `json:"id"`
	PetitionID         string                   `json:"petition_id"`
	SignerName         string                   `json:"signer_name"`
	SignerPhone        *string                  `json:"signer_phone,omitempty"`
	SignerUserID       *string                  `json:"signer_user_id,omitempty"`
	VerificationMethod enums.VerificationMethod `json:"verification_method"`
	VerifiedAt         time.Time                `json:"verified_at"`
	Comment            *string                  `json:"comment,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
}
