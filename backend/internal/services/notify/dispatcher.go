// Package notify delivers petition and appeal notifications over the
// configured channels. A Dispatcher is built once by the application and
// closed on shutdown; after Close every Notify call fails with ErrClosed.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/infra/email"
)

var (
	ErrClosed             = errors.New("notification dispatcher is closed")
	errStoreNotConfigured = errors.New("store is not configured")
)

type InAppStore interface {
	Insert(ctx context.Context, n model.Notification) error
}

type ContactDirectory interface {
	Get(ctx context.Context, userID string) (model.Contact, error)
	ListModerators(ctx context.Context) ([]model.Contact, error)
}

type EmailSender interface {
	Send(ctx context.Context, msg email.Message) (string, error)
}

type ChatSender interface {
	SendLink(ctx context.Context, chatID int64, text, label, url string) error
}

// Channels lists the delivery backends. Any of them may be nil.
type Channels struct {
	InApp           InAppStore
	Contacts        ContactDirectory
	Email           EmailSender
	Telegram        ChatSender
	ModeratorChatID int64
	PublicBaseURL   string
}

type PetitionStatusChange struct {
	PetitionID    string
	CreatorID     string
	PetitionTitle string
	NewStatus     enums.PetitionStatus
	Notes         string
}

type AppealEvent struct {
	AppealID      string
	PetitionID    string
	PetitionTitle string
	RecipientID   string
	ActorName     string
	Status        enums.AppealStatus
	Message       string
	Reason        string
}

type Dispatcher struct {
	ch     Channels
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
	closed atomic.Bool
}

func NewDispatcher(ch Channels, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	ch.PublicBaseURL = strings.TrimRight(strings.TrimSpace(ch.PublicBaseURL), "/")

	return &Dispatcher{
		ch:     ch,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (d *Dispatcher) NotifyPetitionStatusChange(ctx context.Context, ev PetitionStatusChange) error {
	if err := d.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(ev.CreatorID) == "" {
		return apperr.Validation("creator_id", "notification recipient is required")
	}

	title, body := petitionStatusText(ev)
	return d.deliver(ctx, delivery{
		recipientID: ev.CreatorID,
		kind:        enums.NotificationKindPetitionStatus,
		title:       title,
		body:        body,
		petitionID:  ev.PetitionID,
		link:        d.link("petitions", ev.PetitionID),
	})
}

func (d *Dispatcher) NotifyAppealReply(ctx context.Context, ev AppealEvent) error {
	if err := d.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(ev.RecipientID) == "" {
		return apperr.Validation("recipient_id", "notification recipient is required")
	}

	title := fmt.Sprintf("New reply on your appeal for %q", ev.PetitionTitle)
	body := fmt.Sprintf("%s replied to your appeal:\n\n%s", fallback(ev.ActorName, "A moderator"), ev.Message)
	return d.deliver(ctx, delivery{
		recipientID: ev.RecipientID,
		kind:        enums.NotificationKindAppealReply,
		title:       title,
		body:        body,
		petitionID:  ev.PetitionID,
		appealID:    ev.AppealID,
		link:        d.link("appeals", ev.AppealID),
	})
}

func (d *Dispatcher) NotifyAppealStatus(ctx context.Context, ev AppealEvent) error {
	if err := d.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(ev.RecipientID) == "" {
		return apperr.Validation("recipient_id", "notification recipient is required")
	}

	title, body := appealStatusText(ev)
	return d.deliver(ctx, delivery{
		recipientID: ev.RecipientID,
		kind:        enums.NotificationKindAppealStatus,
		title:       title,
		body:        body,
		petitionID:  ev.PetitionID,
		appealID:    ev.AppealID,
		link:        d.link("appeals", ev.AppealID),
	})
}

// NotifyModeratorsNewAppeal posts to the moderator chat and leaves an in-app
// record for every known moderator.
func (d *Dispatcher) NotifyModeratorsNewAppeal(ctx context.Context, ev AppealEvent) error {
	if err := d.ready(); err != nil {
		return err
	}

	title := fmt.Sprintf("New appeal for %q", ev.PetitionTitle)
	body := fmt.Sprintf("%s opened an appeal:\n\n%s", fallback(ev.ActorName, "The creator"), ev.Message)
	link := d.link("mod/appeals", ev.AppealID)

	var errs []error
	if d.ch.Telegram != nil && d.ch.ModeratorChatID != 0 {
		if err := d.ch.Telegram.SendLink(ctx, d.ch.ModeratorChatID, title+"\n\n"+body, "Open appeal", link); err != nil {
			errs = append(errs, fmt.Errorf("telegram: %w", err))
		}
	}

	if d.ch.InApp != nil && d.ch.Contacts != nil {
		moderators, err := d.ch.Contacts.ListModerators(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("list moderators: %w", err))
		}
		for _, moderator := range moderators {
			if err := d.ch.InApp.Insert(ctx, d.record(delivery{
				recipientID: moderator.UserID,
				kind:        enums.NotificationKindAppealCreated,
				title:       title,
				body:        body,
				petitionID:  ev.PetitionID,
				appealID:    ev.AppealID,
			})); err != nil {
				errs = append(errs, fmt.Errorf("in-app %s: %w", moderator.UserID, err))
			}
		}
	}

	return d.result("new appeal", ev.AppealID, errs)
}

// Close marks the dispatcher as torn down. Channels hold no goroutines.
func (d *Dispatcher) Close() error {
	d.closed.Store(true)
	return nil
}

type delivery struct {
	recipientID string
	kind        enums.NotificationKind
	title       string
	body        string
	petitionID  string
	appealID    string
	link        string
}

func (d *Dispatcher) deliver(ctx context.Context, msg delivery) error {
	var errs []error

	if d.ch.InApp != nil {
		if err := d.ch.InApp.Insert(ctx, d.record(msg)); err != nil {
			errs = append(errs, fmt.Errorf("in-app: %w", err))
		}
	}

	if d.ch.Contacts != nil && (d.ch.Email != nil || d.ch.Telegram != nil) {
		contact, err := d.ch.Contacts.Get(ctx, msg.recipientID)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			d.logger.Debug("no contact for notification recipient", zap.String("user_id", msg.recipientID))
		case err != nil:
			errs = append(errs, fmt.Errorf("contact lookup: %w", err))
		default:
			errs = append(errs, d.external(ctx, contact, msg)...)
		}
	}

	return d.result(string(msg.kind), msg.recipientID, errs)
}

func (d *Dispatcher) external(ctx context.Context, contact model.Contact, msg delivery) []error {
	var errs []error

	if d.ch.Email != nil && strings.TrimSpace(contact.Email) != "" {
		text := msg.body
		if msg.link != "" {
			text += "\n\n" + msg.link
		}
		body, err := renderHTML(fallback(contact.DisplayName, "there"), msg.body, msg.link)
		if err != nil {
			d.logger.Warn("email html render failed, sending text only", zap.Error(err))
		}
		if _, err := d.ch.Email.Send(ctx, email.Message{
			To:      []string{contact.Email},
			Subject: msg.title,
			Text:    text,
			HTML:    body,
		}); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}

	if d.ch.Telegram != nil && contact.TelegramChatID != nil && *contact.TelegramChatID != 0 {
		if err := d.ch.Telegram.SendLink(ctx, *contact.TelegramChatID, msg.title+"\n\n"+msg.body, "Open", msg.link); err != nil {
			errs = append(errs, fmt.Errorf("telegram: %w", err))
		}
	}

	return errs
}

func (d *Dispatcher) record(msg delivery) model.Notification {
	return model.Notification{
		ID:         d.newID(),
		UserID:     msg.recipientID,
		Kind:       msg.kind,
		Title:      msg.title,
		Body:       msg.body,
		PetitionID: optional(msg.petitionID),
		AppealID:   optional(msg.appealID),
		CreatedAt:  d.now().UTC(),
	}
}

func (d *Dispatcher) result(kind, target string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	err := errors.Join(errs...)
	d.logger.Warn("notification delivery failed",
		zap.String("kind", kind),
		zap.String("target", target),
		zap.Error(err),
	)
	return apperr.Dependency("notify "+kind, err)
}

func (d *Dispatcher) ready() error {
	if d == nil {
		return apperr.Dependency("notify", errors.New("notification dispatcher is nil"))
	}
	if d.closed.Load() {
		return apperr.Dependency("notify", ErrClosed)
	}
	return nil
}

func (d *Dispatcher) link(section, id string) string {
	if d.ch.PublicBaseURL == "" || id == "" {
		return ""
	}
	return d.ch.PublicBaseURL + "/" + section + "/" + id
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
