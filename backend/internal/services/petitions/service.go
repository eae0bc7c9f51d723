package petitions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/policy"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/pkg/validate"
)

const (
	maxTitleLength       = 150
	maxDescriptionLength = 10000
	maxCategoryLength    = 64
	maxTargetSignatures  = 10_000_000
	defaultListLimit     = 50
)

var errNotConfigured = errors.New("petition service dependencies are not configured")

type Store interface {
	Create(ctx context.Context, p model.Petition) error
	GetByID(ctx context.Context, id string) (model.Petition, error)
	Update(ctx context.Context, p model.Petition, expectedVersion int64) (model.Petition, error)
	ListByCreator(ctx context.Context, creatorID string, limit int) ([]model.Petition, error)
}

type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

type CreateInput struct {
	Creator          model.Actor
	Title            string
	Description      string
	Category         string
	TargetSignatures int
}

// UpdateInput carries the editable fields; nil leaves a field unchanged.
type UpdateInput struct {
	PetitionID       string
	Actor            model.Actor
	Title            *string
	Description      *string
	Category         *string
	TargetSignatures *int
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (model.Petition, error) {
	creatorID := strings.TrimSpace(in.Creator.ID)
	if creatorID == "" {
		return model.Petition{}, apperr.ErrUnauthorizedAccess
	}

	p := model.Petition{
		Title:            validate.Text(in.Title),
		Description:      validate.Text(in.Description),
		Category:         strings.ToLower(validate.Text(in.Category)),
		TargetSignatures: in.TargetSignatures,
	}
	if err := validateContent(p); err != nil {
		return model.Petition{}, err
	}
	if s.store == nil {
		return model.Petition{}, apperr.Dependency("create petition", errNotConfigured)
	}

	now := s.now().UTC()
	p.ID = s.newID()
	p.CreatorID = creatorID
	p.Status = enums.PetitionStatusPending
	p.IsActive = true
	p.ResubmissionHistory = []model.ResubmissionEntry{}
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.store.Create(ctx, p); err != nil {
		return model.Petition{}, apperr.Store("create petition", err)
	}
	return p, nil
}

// Get hides petitions that are not approved from everyone but their creator
// and moderators.
func (s *Service) Get(ctx context.Context, id string, actor model.Actor) (model.Petition, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Petition{}, apperr.Validation("id", "petition id is required")
	}
	if s.store == nil {
		return model.Petition{}, apperr.Dependency("get petition", errNotConfigured)
	}

	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Petition{}, apperr.Store("get petition", err)
	}
	if p.Status != enums.PetitionStatusApproved && policy.CanAct(actor.ID, actor.Role, p.CreatorID) != nil {
		return model.Petition{}, apperr.ErrNotFound
	}
	return p, nil
}

// UpdateContent edits a petition that is still pending or was rejected.
func (s *Service) UpdateContent(ctx context.Context, in UpdateInput) (model.Petition, error) {
	current, err := s.loadOwned(ctx, in.PetitionID, in.Actor)
	if err != nil {
		return model.Petition{}, err
	}
	if current.Status != enums.PetitionStatusPending && current.Status != enums.PetitionStatusRejected {
		return model.Petition{}, fmt.Errorf("petition is %s: %w", current.Status, apperr.ErrInvalidPetitionState)
	}

	next := current.Clone()
	if in.Title != nil {
		next.Title = validate.Text(*in.Title)
	}
	if in.Description != nil {
		next.Description = validate.Text(*in.Description)
	}
	if in.Category != nil {
		next.Category = strings.ToLower(validate.Text(*in.Category))
	}
	if in.TargetSignatures != nil {
		next.TargetSignatures = *in.TargetSignatures
	}
	if err := validateContent(next); err != nil {
		return model.Petition{}, err
	}
	next.UpdatedAt = s.now().UTC()

	updated, err := s.store.Update(ctx, next, current.Version)
	if err != nil {
		return model.Petition{}, apperr.Store("update petition", err)
	}
	return updated, nil
}

// Resubmit sends a rejected petition back to the moderation queue.
func (s *Service) Resubmit(ctx context.Context, petitionID string, actor model.Actor) (model.Petition, error) {
	current, err := s.loadOwned(ctx, petitionID, actor)
	if err != nil {
		return model.Petition{}, err
	}
	if current.Status != enums.PetitionStatusRejected {
		return model.Petition{}, fmt.Errorf("only rejected petitions can be resubmitted: %w", apperr.ErrInvalidPetitionState)
	}

	now := s.now().UTC()
	next := current.Clone()
	next.Status = enums.PetitionStatusPending
	next.UpdatedAt = now
	for i := len(next.ResubmissionHistory) - 1; i >= 0; i-- {
		if next.ResubmissionHistory[i].ResubmittedAt == nil {
			next.ResubmissionHistory[i].ResubmittedAt = &now
			break
		}
	}

	updated, err := s.store.Update(ctx, next, current.Version)
	if err != nil {
		return model.Petition{}, apperr.Store("resubmit petition", err)
	}
	return updated, nil
}

func (s *Service) ListByCreator(ctx context.Context, creatorID string, limit int) ([]model.Petition, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, apperr.ErrUnauthorizedAccess
	}
	if s.store == nil {
		return nil, apperr.Dependency("list petitions", errNotConfigured)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	items, err := s.store.ListByCreator(ctx, creatorID, limit)
	if err != nil {
		return nil, apperr.Store("list petitions", err)
	}
	return items, nil
}

func (s *Service) loadOwned(ctx context.Context, petitionID string, actor model.Actor) (model.Petition, error) {
	petitionID = strings.TrimSpace(petitionID)
	if petitionID == "" {
		return model.Petition{}, apperr.Validation("id", "petition id is required")
	}
	if strings.TrimSpace(actor.ID) == "" {
		return model.Petition{}, apperr.ErrUnauthorizedAccess
	}
	if s.store == nil {
		return model.Petition{}, apperr.Dependency("load petition", errNotConfigured)
	}

	p, err := s.store.GetByID(ctx, petitionID)
	if err != nil {
		return model.Petition{}, apperr.Store("load petition", err)
	}
	if p.CreatorID != actor.ID {
		return model.Petition{}, fmt.Errorf("petition %s: %w", p.ID, apperr.ErrUnauthorizedAccess)
	}
	return p, nil
}

func validateContent(p model.Petition) error {
	switch {
	case p.Title == "":
		return apperr.Validation("title", "title is required")
	case !validate.MaxLen(p.Title, maxTitleLength):
		return apperr.Validation("title", fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	case p.Description == "":
		return apperr.Validation("description", "description is required")
	case !validate.MaxLen(p.Description, maxDescriptionLength):
		return apperr.Validation("description", fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	case !validate.MaxLen(p.Category, maxCategoryLength):
		return apperr.Validation("category", fmt.Sprintf("category must be at most %d characters", maxCategoryLength))
	case p.TargetSignatures <= 0 || p.TargetSignatures > maxTargetSignatures:
		return apperr.Validation("target_signatures", "target signatures must be a positive number")
	}
	return nil
}
