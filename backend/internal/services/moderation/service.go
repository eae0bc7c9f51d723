package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/policy"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/infra/metrics"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/pkg/validate"
	pgrepo "github.com/Brahim-Amzil/3arida-sub004/backend/internal/repo/postgres"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/audit"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/notify"
)

const (
	signedURLTTL    = 5 * time.Minute
	maxNotesLength  = 2000
	defaultReason   = "No reason provided"
	defaultQueueMax = 20
)

var errNotConfigured = errors.New("moderation service dependencies are not configured")

type PetitionStore interface {
	GetByID(ctx context.Context, id string) (model.Petition, error)
	Update(ctx context.Context, p model.Petition, expectedVersion int64) (model.Petition, error)
}

type QueueStore interface {
	CountPending(ctx context.Context) (int, error)
	ListPending(ctx context.Context, limit int) ([]model.Petition, error)
}

type Auditor interface {
	Record(ctx context.Context, entry model.AuditEntry) error
	List(ctx context.Context, filter pgrepo.AuditFilter) ([]model.AuditEntry, error)
}

type Notifier interface {
	NotifyPetitionStatusChange(ctx context.Context, ev notify.PetitionStatusChange) error
}

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Service struct {
	petitions PetitionStore
	queue     QueueStore
	auditor   Auditor
	notifier  Notifier
	signer    URLSigner
	logger    *zap.Logger
	now       func() time.Time
}

type ModerationInput struct {
	PetitionID string
	Action     enums.ModerationAction
	Actor      model.Actor
	Notes      string
	ReasonCode string
}

// Result reports the committed petition and the outcome of each secondary
// effect. A failed audit write or notification never fails the call.
type Result struct {
	Petition        model.Petition
	AuditOK         bool
	NotificationOK  bool
	AuditErr        error
	NotificationErr error
}

type QueueItem struct {
	Petition model.Petition
	ImageURL *string
	Waiting  time.Duration
}

type Queue struct {
	Size      int
	ETABucket string
	Items     []QueueItem
}

func NewService(petitions PetitionStore, queue QueueStore, auditor Auditor, notifier Notifier, signer URLSigner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		petitions: petitions,
		queue:     queue,
		auditor:   auditor,
		notifier:  notifier,
		signer:    signer,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) ApplyModerationAction(ctx context.Context, in ModerationInput) (Result, error) {
	action := enums.ModerationAction(strings.ToLower(strings.TrimSpace(string(in.Action))))
	result, err := s.apply(ctx, in, action)
	metrics.ModerationAction(string(action), resultLabel(err))
	return result, err
}

func (s *Service) apply(ctx context.Context, in ModerationInput, action enums.ModerationAction) (Result, error) {
	if err := policy.CanModerate(in.Actor.Role); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(in.Actor.ID) == "" {
		return Result{}, apperr.ErrUnauthorizedAccess
	}
	petitionID := strings.TrimSpace(in.PetitionID)
	if petitionID == "" {
		return Result{}, apperr.Validation("petition_id", "petition id is required")
	}
	if _, ok := action.TargetStatus(); !ok {
		return Result{}, apperr.Validation("action", "action must be approve, reject, pause or delete")
	}

	notes, err := resolveNotes(in.Notes, in.ReasonCode)
	if err != nil {
		return Result{}, err
	}
	if action == enums.ModerationActionDelete && notes == "" {
		return Result{}, apperr.Validation("notes", "a reason is required for deletion")
	}
	if !validate.MaxLen(notes, maxNotesLength) {
		return Result{}, apperr.Validation("notes", fmt.Sprintf("notes must be at most %d characters", maxNotesLength))
	}

	if s.petitions == nil {
		return Result{}, apperr.Dependency("apply moderation action", errNotConfigured)
	}

	current, err := s.petitions.GetByID(ctx, petitionID)
	if err != nil {
		return Result{}, apperr.Store("load petition", err)
	}

	to, err := policy.PetitionTransition(current.Status, action)
	if err != nil {
		return Result{}, err
	}

	next := applyTransition(current, to, in.Actor.ID, notes, s.now().UTC())
	updated, err := s.petitions.Update(ctx, next, current.Version)
	if err != nil {
		return Result{}, apperr.Store("update petition", err)
	}

	result := Result{Petition: updated, AuditOK: true, NotificationOK: true}

	reason := notes
	if to == enums.PetitionStatusRejected && reason == "" {
		reason = defaultReason
	}

	if err := s.recordAudit(ctx, audit.PetitionEntry(in.Actor, updated, current.Status, to, reason)); err != nil {
		result.AuditOK = false
		result.AuditErr = err
		metrics.SideEffectFailure("audit")
		s.logger.Warn("moderation audit write failed",
			zap.String("petition_id", updated.ID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}

	if err := s.notifyCreator(ctx, updated, notes); err != nil {
		result.NotificationOK = false
		result.NotificationErr = err
		metrics.SideEffectFailure("notification")
		s.logger.Warn("moderation notification failed",
			zap.String("petition_id", updated.ID),
			zap.String("creator_id", updated.CreatorID),
			zap.Error(err),
		)
	}

	return result, nil
}

// applyTransition returns a copy of p moved to status `to`.
func applyTransition(p model.Petition, to enums.PetitionStatus, moderatorID, notes string, now time.Time) model.Petition {
	next := p.Clone()
	next.Status = to
	next.UpdatedAt = now
	next.ModeratedBy = &moderatorID
	if notes != "" {
		next.ModeratorNotes = &notes
	}

	switch to {
	case enums.PetitionStatusApproved:
		next.ApprovedAt = &now
	case enums.PetitionStatusRejected:
		next.RejectedAt = &now
		reason := notes
		if reason == "" {
			reason = defaultReason
		}
		next.ResubmissionHistory = append(next.ResubmissionHistory, model.ResubmissionEntry{
			RejectedAt: now,
			Reason:     reason,
		})
	case enums.PetitionStatusPaused:
		next.PausedAt = &now
	case enums.PetitionStatusDeleted:
		next.DeletedAt = &now
		next.IsActive = false
	}
	return next
}

func (s *Service) recordAudit(ctx context.Context, entry model.AuditEntry) error {
	if s.auditor == nil {
		return apperr.Dependency("record audit entry", errNotConfigured)
	}
	return s.auditor.Record(ctx, entry)
}

func (s *Service) notifyCreator(ctx context.Context, p model.Petition, notes string) error {
	if s.notifier == nil {
		return apperr.Dependency("notify creator", errNotConfigured)
	}
	return s.notifier.NotifyPetitionStatusChange(ctx, notify.PetitionStatusChange{
		PetitionID:    p.ID,
		CreatorID:     p.CreatorID,
		PetitionTitle: p.Title,
		NewStatus:     p.Status,
		Notes:         notes,
	})
}

// Queue lists pending petitions oldest first.
func (s *Service) Queue(ctx context.Context, actor model.Actor, limit int) (Queue, error) {
	if err := policy.CanModerate(actor.Role); err != nil {
		return Queue{}, err
	}
	if s.queue == nil {
		return Queue{}, apperr.Dependency("load moderation queue", errNotConfigured)
	}
	if limit <= 0 {
		limit = defaultQueueMax
	}

	size, err := s.queue.CountPending(ctx)
	if err != nil {
		return Queue{}, apperr.Dependency("count pending petitions", err)
	}
	petitions, err := s.queue.ListPending(ctx, limit)
	if err != nil {
		return Queue{}, apperr.Dependency("list pending petitions", err)
	}

	now := s.now().UTC()
	items := make([]QueueItem, 0, len(petitions))
	for _, p := range petitions {
		item := QueueItem{Petition: p, Waiting: now.Sub(p.CreatedAt)}
		if p.ImageKey != nil {
			url, signErr := s.signKey(ctx, *p.ImageKey)
			if signErr != nil {
				return Queue{}, signErr
			}
			if url != "" {
				item.ImageURL = &url
			}
		}
		items = append(items, item)
	}

	return Queue{
		Size:      size,
		ETABucket: ETABucketFromQueueSize(size),
		Items:     items,
	}, nil
}

func (s *Service) ListAuditLog(ctx context.Context, actor model.Actor, filter pgrepo.AuditFilter) ([]model.AuditEntry, error) {
	if err := policy.CanModerate(actor.Role); err != nil {
		return nil, err
	}
	if s.auditor == nil {
		return nil, apperr.Dependency("list audit entries", errNotConfigured)
	}
	return s.auditor.List(ctx, filter)
}

func ETABucketFromQueueSize(queueSize int) string {
	if queueSize >= 50 {
		return "more_than_hour"
	}
	if queueSize <= 10 {
		return "up_to_10"
	}
	if queueSize <= 20 {
		return "up_to_20"
	}
	if queueSize <= 30 {
		return "up_to_30"
	}
	if queueSize <= 40 {
		return "up_to_40"
	}
	return "up_to_50"
}

func (s *Service) signKey(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", nil
	}
	if s.signer == nil {
		return "", apperr.Dependency("sign petition image", errors.New("url signer is not configured"))
	}
	url, err := s.signer.PresignGet(ctx, key, signedURLTTL)
	if err != nil {
		return "", apperr.Dependency("sign petition image", err)
	}
	return url, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrUnauthorizedAccess):
		return "unauthorized"
	case errors.Is(err, apperr.ErrValidation):
		return "invalid"
	case errors.Is(err, apperr.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
