// Package appeals runs the appeal thread between a petition creator and the
// moderation team. Authorization and status rules come from domain/policy.
package appeals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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
	maxMessageLength = 5000
	maxReasonLength  = 2000
)

var errNotConfigured = errors.New("appeal service dependencies are not configured")

// ListQuery pages through appeals newest first. Before is the cursor
// returned as Page.NextBefore by the previous call.
type ListQuery struct {
	Status enums.AppealStatus
	Limit  int
	Before *time.Time
}

type Page struct {
	Items []model.Appeal
	// NextBefore is set when the page is full and more rows may follow.
	NextBefore *time.Time
}

type Store interface {
	Create(ctx context.Context, a model.Appeal) error
	GetByID(ctx context.Context, id string) (model.Appeal, error)
	HasOpenForPetition(ctx context.Context, petitionID string) (bool, error)
	Update(ctx context.Context, a model.Appeal, expectedVersion int64) (model.Appeal, error)
	List(ctx context.Context, filter pgrepo.AppealFilter) ([]model.Appeal, error)
}

type PetitionReader interface {
	GetByID(ctx context.Context, id string) (model.Petition, error)
}

type MessageLimiter interface {
	AllowMessage(ctx context.Context, userID string) error
}

type Auditor interface {
	Record(ctx context.Context, entry model.AuditEntry) error
}

type Notifier interface {
	NotifyAppealReply(ctx context.Context, ev notify.AppealEvent) error
	NotifyAppealStatus(ctx context.Context, ev notify.AppealEvent) error
	NotifyModeratorsNewAppeal(ctx context.Context, ev notify.AppealEvent) error
}

type Service struct {
	appeals   Store
	petitions PetitionReader
	limiter   MessageLimiter
	auditor   Auditor
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

type CreateAppealInput struct {
	PetitionID   string
	CreatorID    string
	CreatorName  string
	CreatorEmail string
	Message      string
}

type AddMessageInput struct {
	AppealID   string
	SenderID   string
	SenderName string
	SenderRole enums.Role
	Content    string
	IsInternal bool
}

type UpdateStatusInput struct {
	AppealID      string
	NewStatus     enums.AppealStatus
	ChangedBy     string
	ChangedByName string
	Role          enums.Role
	Reason        string
}

func NewService(appeals Store, petitions PetitionReader, limiter MessageLimiter, auditor Auditor, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		appeals:   appeals,
		petitions: petitions,
		limiter:   limiter,
		auditor:   auditor,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// CreateAppeal opens a thread on a paused or rejected petition and returns its id.
func (s *Service) CreateAppeal(ctx context.Context, in CreateAppealInput) (string, error) {
	petitionID := strings.TrimSpace(in.PetitionID)
	creatorID := strings.TrimSpace(in.CreatorID)
	if petitionID == "" {
		return "", apperr.Validation("petition_id", "petition id is required")
	}
	if creatorID == "" {
		return "", apperr.ErrUnauthorizedAccess
	}
	message := validate.Text(in.Message)
	if message == "" {
		return "", apperr.Validation("message", "a message is required to open an appeal")
	}
	if !validate.MaxLen(message, maxMessageLength) {
		return "", apperr.Validation("message", fmt.Sprintf("message must be at most %d characters", maxMessageLength))
	}
	if s.appeals == nil || s.petitions == nil {
		return "", apperr.Dependency("create appeal", errNotConfigured)
	}

	petition, err := s.petitions.GetByID(ctx, petitionID)
	if err != nil {
		return "", apperr.Store("load petition", err)
	}
	if petition.CreatorID != creatorID {
		return "", fmt.Errorf("only the petition creator can appeal: %w", apperr.ErrUnauthorizedAccess)
	}
	if err := policy.CanCreateAppeal(petition.Status); err != nil {
		return "", err
	}

	open, err := s.appeals.HasOpenForPetition(ctx, petitionID)
	if err != nil {
		return "", apperr.Store("check open appeals", err)
	}
	if open {
		return "", apperr.ErrDuplicateOpenAppeal
	}

	now := s.now().UTC()
	creatorName := strings.TrimSpace(in.CreatorName)
	appeal := model.Appeal{
		ID:            s.newID(),
		PetitionID:    petition.ID,
		PetitionTitle: petition.Title,
		CreatorID:     creatorID,
		CreatorName:   creatorName,
		CreatorEmail:  strings.TrimSpace(in.CreatorEmail),
		Status:        enums.AppealStatusPending,
		Messages: []model.AppealMessage{{
			ID:         s.newID(),
			SenderID:   creatorID,
			SenderName: creatorName,
			SenderRole: enums.MessageRoleCreator,
			Content:    message,
			CreatedAt:  now,
		}},
		StatusHistory: []model.AppealStatusChange{{
			Status:        enums.AppealStatusPending,
			ChangedBy:     creatorID,
			ChangedByName: creatorName,
			ChangedAt:     now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.appeals.Create(ctx, appeal); err != nil {
		return "", apperr.Store("create appeal", err)
	}
	metrics.AppealEvent("created")

	creator := model.Actor{ID: creatorID, Name: creatorName, Email: appeal.CreatorEmail, Role: enums.RoleCreator}
	s.recordAudit(ctx, audit.AppealEntry(creator, appeal, enums.AuditActionAppealCreated, "", enums.AppealStatusPending, ""))
	s.notify("appeal_created", appeal.ID, func(n Notifier) error {
		return n.NotifyModeratorsNewAppeal(ctx, notify.AppealEvent{
			AppealID:      appeal.ID,
			PetitionID:    appeal.PetitionID,
			PetitionTitle: appeal.PetitionTitle,
			ActorName:     creatorName,
			Status:        appeal.Status,
			Message:       message,
		})
	})

	return appeal.ID, nil
}

// AddMessage appends a reply to an open appeal.
func (s *Service) AddMessage(ctx context.Context, in AddMessageInput) (model.AppealMessage, error) {
	appealID := strings.TrimSpace(in.AppealID)
	senderID := strings.TrimSpace(in.SenderID)
	if appealID == "" {
		return model.AppealMessage{}, apperr.Validation("appeal_id", "appeal id is required")
	}
	if senderID == "" {
		return model.AppealMessage{}, apperr.ErrUnauthorizedAccess
	}
	content := validate.Text(in.Content)
	if content == "" {
		return model.AppealMessage{}, apperr.Validation("content", "message content is required")
	}
	if !validate.MaxLen(content, maxMessageLength) {
		return model.AppealMessage{}, apperr.Validation("content", fmt.Sprintf("message must be at most %d characters", maxMessageLength))
	}
	if s.appeals == nil {
		return model.AppealMessage{}, apperr.Dependency("add appeal message", errNotConfigured)
	}

	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		return model.AppealMessage{}, apperr.Store("load appeal", err)
	}
	if err := policy.CanAct(senderID, in.SenderRole, appeal.CreatorID); err != nil {
		return model.AppealMessage{}, err
	}
	if err := policy.CanReply(appeal.Status); err != nil {
		return model.AppealMessage{}, err
	}
	if err := policy.CanPostInternal(in.SenderRole, in.IsInternal); err != nil {
		return model.AppealMessage{}, err
	}

	privileged := policy.IsPrivileged(in.SenderRole)
	if !privileged && s.limiter != nil {
		if err := s.limiter.AllowMessage(ctx, senderID); err != nil {
			return model.AppealMessage{}, err
		}
	}

	now := s.now().UTC()
	msg := model.AppealMessage{
		ID:         s.newID(),
		SenderID:   senderID,
		SenderName: strings.TrimSpace(in.SenderName),
		SenderRole: policy.MessageRoleFor(in.SenderRole),
		Content:    content,
		IsInternal: in.IsInternal,
		CreatedAt:  now,
	}

	next := appeal.Clone()
	next.Messages = append(next.Messages, msg)
	next.UpdatedAt = now
	if _, err := s.appeals.Update(ctx, next, appeal.Version); err != nil {
		return model.AppealMessage{}, apperr.Store("append appeal message", err)
	}
	metrics.AppealEvent("message")

	if privileged && !msg.IsInternal {
		s.notify("appeal_reply", appeal.ID, func(n Notifier) error {
			return n.NotifyAppealReply(ctx, notify.AppealEvent{
				AppealID:      appeal.ID,
				PetitionID:    appeal.PetitionID,
				PetitionTitle: appeal.PetitionTitle,
				RecipientID:   appeal.CreatorID,
				ActorName:     msg.SenderName,
				Status:        appeal.Status,
				Message:       msg.Content,
			})
		})
	}

	return msg, nil
}

// UpdateStatus moves an appeal along its state machine.
func (s *Service) UpdateStatus(ctx context.Context, in UpdateStatusInput) (model.Appeal, error) {
	if err := policy.CanModerate(in.Role); err != nil {
		return model.Appeal{}, err
	}
	appealID := strings.TrimSpace(in.AppealID)
	changedBy := strings.TrimSpace(in.ChangedBy)
	if appealID == "" {
		return model.Appeal{}, apperr.Validation("appeal_id", "appeal id is required")
	}
	if changedBy == "" {
		return model.Appeal{}, apperr.ErrUnauthorizedAccess
	}
	newStatus := enums.AppealStatus(strings.ToLower(strings.TrimSpace(string(in.NewStatus))))
	reason := validate.Text(in.Reason)
	if !validate.MaxLen(reason, maxReasonLength) {
		return model.Appeal{}, apperr.Validation("reason", fmt.Sprintf("reason must be at most %d characters", maxReasonLength))
	}
	if s.appeals == nil {
		return model.Appeal{}, apperr.Dependency("update appeal status", errNotConfigured)
	}

	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		return model.Appeal{}, apperr.Store("load appeal", err)
	}
	if err := policy.AppealTransition(in.Role, appeal.Status, newStatus); err != nil {
		return model.Appeal{}, err
	}

	now := s.now().UTC()
	changedByName := strings.TrimSpace(in.ChangedByName)
	change := model.AppealStatusChange{
		Status:        newStatus,
		ChangedBy:     changedBy,
		ChangedByName: changedByName,
		ChangedAt:     now,
	}
	if reason != "" {
		change.Reason = &reason
	}

	next := appeal.Clone()
	next.Status = newStatus
	next.StatusHistory = append(next.StatusHistory, change)
	next.UpdatedAt = now
	if newStatus.Terminal() {
		next.ResolvedAt = &now
		next.ResolvedBy = &changedBy
		if reason != "" {
			next.ResolutionNote = &reason
		}
	}

	updated, err := s.appeals.Update(ctx, next, appeal.Version)
	if err != nil {
		return model.Appeal{}, apperr.Store("update appeal status", err)
	}
	metrics.AppealEvent("status_" + string(newStatus))

	actor := model.Actor{ID: changedBy, Name: changedByName, Role: in.Role}
	s.recordAudit(ctx, audit.AppealEntry(actor, updated, enums.AuditActionAppealStatusChanged, appeal.Status, newStatus, reason))
	s.notify("appeal_status", updated.ID, func(n Notifier) error {
		return n.NotifyAppealStatus(ctx, notify.AppealEvent{
			AppealID:      updated.ID,
			PetitionID:    updated.PetitionID,
			PetitionTitle: updated.PetitionTitle,
			RecipientID:   updated.CreatorID,
			ActorName:     changedByName,
			Status:        newStatus,
			Reason:        reason,
		})
	})

	return updated, nil
}

// GetAppealsForActor lists one page of appeals newest first. Creators only
// see their own. Limit defaults to 50 and is capped at 200.
func (s *Service) GetAppealsForActor(ctx context.Context, actorID string, role enums.Role, q ListQuery) (Page, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return Page{}, apperr.ErrUnauthorizedAccess
	}
	if q.Status != "" && !q.Status.Valid() {
		return Page{}, apperr.Validation("status", fmt.Sprintf("unknown appeal status %q", q.Status))
	}
	switch {
	case q.Limit < 0:
		return Page{}, apperr.Validation("limit", "limit must not be negative")
	case q.Limit == 0:
		q.Limit = pgrepo.DefaultListLimit
	case q.Limit > pgrepo.MaxListLimit:
		q.Limit = pgrepo.MaxListLimit
	}
	if s.appeals == nil {
		return Page{}, apperr.Dependency("list appeals", errNotConfigured)
	}

	filter := pgrepo.AppealFilter{Status: q.Status, Limit: q.Limit, Before: q.Before}
	if !policy.IsPrivileged(role) {
		filter.CreatorID = actorID
	}

	items, err := s.appeals.List(ctx, filter)
	if err != nil {
		return Page{}, apperr.Store("list appeals", err)
	}

	page := Page{Items: make([]model.Appeal, 0, len(items))}
	for _, a := range items {
		page.Items = append(page.Items, visibleTo(role, a))
	}
	if len(items) == q.Limit {
		cursor := items[len(items)-1].CreatedAt
		page.NextBefore = &cursor
	}
	return page, nil
}

func (s *Service) GetAppeal(ctx context.Context, appealID, actorID string, role enums.Role) (model.Appeal, error) {
	appealID = strings.TrimSpace(appealID)
	if appealID == "" {
		return model.Appeal{}, apperr.Validation("appeal_id", "appeal id is required")
	}
	if s.appeals == nil {
		return model.Appeal{}, apperr.Dependency("load appeal", errNotConfigured)
	}

	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		return model.Appeal{}, apperr.Store("load appeal", err)
	}
	if err := policy.CanReadAppeal(strings.TrimSpace(actorID), role, appeal); err != nil {
		return model.Appeal{}, err
	}
	return visibleTo(role, appeal), nil
}

func visibleTo(role enums.Role, a model.Appeal) model.Appeal {
	out := a.Clone()
	out.Messages = policy.VisibleMessages(role, out.Messages)
	return out
}

func (s *Service) recordAudit(ctx context.Context, entry model.AuditEntry) {
	err := apperr.Dependency("record audit entry", errNotConfigured)
	if s.auditor != nil {
		err = s.auditor.Record(ctx, entry)
	}
	if err == nil {
		return
	}
	metrics.SideEffectFailure("audit")
	s.logger.Warn("appeal audit write failed",
		zap.String("appeal_id", entry.TargetID),
		zap.String("action", string(entry.Action)),
		zap.Error(err),
	)
}

func (s *Service) notify(kind, appealID string, send func(Notifier) error) {
	err := apperr.Dependency("notify", errNotConfigured)
	if s.notifier != nil {
		err = send(s.notifier)
	}
	if err == nil {
		return
	}
	metrics.SideEffectFailure("notification")
	s.logger.Warn("appeal notification failed",
		zap.String("kind", kind),
		zap.String("appeal_id", appealID),
		zap.Error(err),
	)
}
