package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	pgrepo "github.com/Brahim-Amzil/3arida-sub004/backend/internal/repo/postgres"
)

var errStoreNotConfigured = errors.New("audit store is not configured")

type Store interface {
	Append(ctx context.Context, entry model.AuditEntry) error
	List(ctx context.Context, filter pgrepo.AuditFilter) ([]model.AuditEntry, error)
}

// Service is the append-only audit log.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *Service) Record(ctx context.Context, entry model.AuditEntry) error {
	if s == nil || s.store == nil {
		return apperr.Dependency("record audit entry", errStoreNotConfigured)
	}
	if strings.TrimSpace(entry.ActorID) == "" {
		return apperr.Validation("actor_id", "audit entry needs an actor")
	}
	if strings.TrimSpace(entry.TargetID) == "" || entry.TargetType == "" {
		return apperr.Validation("target_id", "audit entry needs a target")
	}
	if entry.Action == "" {
		return apperr.Validation("action", "audit entry needs an action")
	}

	if entry.ID == "" {
		entry.ID = s.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}

	if err := s.store.Append(ctx, entry); err != nil {
		return apperr.Dependency("record audit entry", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter pgrepo.AuditFilter) ([]model.AuditEntry, error) {
	if s == nil || s.store == nil {
		return nil, apperr.Dependency("list audit entries", errStoreNotConfigured)
	}
	if filter.TargetType != "" && filter.TargetType != enums.AuditTargetPetition && filter.TargetType != enums.AuditTargetAppeal {
		return nil, apperr.Validation("target_type", "target type must be petition or appeal")
	}

	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, apperr.Dependency("list audit entries", err)
	}
	return entries, nil
}

// PetitionEntry describes a petition status change made by actor.
func PetitionEntry(actor model.Actor, petition model.Petition, from, to enums.PetitionStatus, reason string) model.AuditEntry {
	return model.AuditEntry{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		ActorRole:  actor.Role,
		Action:     enums.PetitionAuditAction(to),
		TargetType: enums.AuditTargetPetition,
		TargetID:   petition.ID,
		TargetName: petition.Title,
		Details: model.AuditDetails{
			OldValue: string(from),
			NewValue: string(to),
			Reason:   reason,
		},
	}
}

func AppealEntry(actor model.Actor, appeal model.Appeal, action enums.AuditAction, from, to enums.AppealStatus, reason string) model.AuditEntry {
	return model.AuditEntry{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		ActorRole:  actor.Role,
		Action:     action,
		TargetType: enums.AuditTargetAppeal,
		TargetID:   appeal.ID,
		TargetName: appeal.PetitionTitle,
		Details: model.AuditDetails{
			OldValue: string(from),
			NewValue: string(to),
			Reason:   reason,
		},
	}
}
