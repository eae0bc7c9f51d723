package signatures

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nyaruka/phonenumbers"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/pkg/validate"
)

const (
	maxNameLength    = 120
	maxCommentLength = 500
	defaultRegion    = "MA"
)

var errNotConfigured = errors.New("signature service dependencies are not configured")

type TxRunner interface {
	InTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type PetitionLocker interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, petitionID string) (model.Petition, error)
	IncrementSignatures(ctx context.Context, tx pgx.Tx, petitionID string) error
}

type Store interface {
	Insert(ctx context.Context, tx pgx.Tx, sig model.Signature) error
	CountByPetition(ctx context.Context, petitionID string) (int, error)
}

type Service struct {
	tx         TxRunner
	petitions  PetitionLocker
	signatures Store
	region     string
	now        func() time.Time
	newID      func() string
}

// PhoneProof is a checked phone verification token.
type PhoneProof struct {
	PhoneNumber string
	VerifiedAt  time.Time
}

// SignInput describes a signer. SignerUserID is empty for guests, who must
// carry a PhoneProof. SignerPhone defaults to the proven number.
type SignInput struct {
	PetitionID   string
	SignerUserID string
	SignerName   string
	SignerPhone  string
	PhoneProof   *PhoneProof
	Method       enums.VerificationMethod
	Comment      string
}

// NewService parses numbers without a country code as belonging to region.
func NewService(tx TxRunner, petitions PetitionLocker, signatures Store, region string) *Service {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultRegion
	}
	return &Service{
		tx:         tx,
		petitions:  petitions,
		signatures: signatures,
		region:     region,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Sign stores the signature and bumps the petition counter in one transaction.
func (s *Service) Sign(ctx context.Context, in SignInput) (model.Signature, error) {
	sig, err := s.build(in)
	if err != nil {
		return model.Signature{}, err
	}
	if s.tx == nil || s.petitions == nil || s.signatures == nil {
		return model.Signature{}, apperr.Dependency("sign petition", errNotConfigured)
	}

	err = s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		p, err := s.petitions.GetForUpdate(ctx, tx, sig.PetitionID)
		if err != nil {
			return err
		}
		if p.Status != enums.PetitionStatusApproved || !p.IsActive {
			return fmt.Errorf("petition is %s: %w", p.Status, apperr.ErrInvalidPetitionState)
		}
		if err := s.signatures.Insert(ctx, tx, sig); err != nil {
			return err
		}
		return s.petitions.IncrementSignatures(ctx, tx, sig.PetitionID)
	})
	if err != nil {
		return model.Signature{}, apperr.Store("sign petition", err)
	}
	return sig, nil
}

func (s *Service) Count(ctx context.Context, petitionID string) (int, error) {
	petitionID = strings.TrimSpace(petitionID)
	if petitionID == "" {
		return 0, apperr.Validation("petition_id", "petition id is required")
	}
	if s.signatures == nil {
		return 0, apperr.Dependency("count signatures", errNotConfigured)
	}

	n, err := s.signatures.CountByPetition(ctx, petitionID)
	if err != nil {
		return 0, apperr.Store("count signatures", err)
	}
	return n, nil
}

func (s *Service) build(in SignInput) (model.Signature, error) {
	petitionID := strings.TrimSpace(in.PetitionID)
	if petitionID == "" {
		return model.Signature{}, apperr.Validation("petition_id", "petition id is required")
	}

	name := validate.Text(in.SignerName)
	if name == "" {
		return model.Signature{}, apperr.Validation("signer_name", "signer name is required")
	}
	if !validate.MaxLen(name, maxNameLength) {
		return model.Signature{}, apperr.Validation("signer_name", fmt.Sprintf("signer name must be at most %d characters", maxNameLength))
	}

	comment := validate.TextPtr(&in.Comment)
	if comment != nil && !validate.MaxLen(*comment, maxCommentLength) {
		return model.Signature{}, apperr.Validation("comment", fmt.Sprintf("comment must be at most %d characters", maxCommentLength))
	}

	var (
		userID *string
		phone  *string
	)
	if id := strings.TrimSpace(in.SignerUserID); id != "" {
		userID = &id
	}
	if raw := strings.TrimSpace(in.SignerPhone); raw != "" {
		normalized, err := s.normalizePhone(raw)
		if err != nil {
			return model.Signature{}, err
		}
		phone = &normalized
	}

	now := s.now().UTC()
	verifiedAt := now
	switch in.Method {
	case enums.VerificationMethodPhone:
		if in.PhoneProof == nil || in.PhoneProof.VerifiedAt.IsZero() {
			return model.Signature{}, apperr.ErrUnauthorizedAccess
		}
		proven, err := s.normalizePhone(in.PhoneProof.PhoneNumber)
		if err != nil {
			return model.Signature{}, err
		}
		if phone == nil {
			phone = &proven
		} else if *phone != proven {
			return model.Signature{}, fmt.Errorf("signer phone does not match the verified number: %w", apperr.ErrUnauthorizedAccess)
		}
		verifiedAt = in.PhoneProof.VerifiedAt.UTC()
	case enums.VerificationMethodEmail, enums.VerificationMethodAccount:
		if userID == nil {
			return model.Signature{}, apperr.ErrUnauthorizedAccess
		}
	default:
		return model.Signature{}, apperr.Validation("verification_method", "verification method must be phone, email or account")
	}

	return model.Signature{
		ID:                 s.newID(),
		PetitionID:         petitionID,
		SignerName:         name,
		SignerPhone:        phone,
		SignerUserID:       userID,
		VerificationMethod: in.Method,
		VerifiedAt:         verifiedAt,
		Comment:            comment,
		CreatedAt:          now,
	}, nil
}

// normalizePhone returns the E.164 form of raw.
func (s *Service) normalizePhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), s.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", apperr.Validation("signer_phone", "phone number is invalid")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
