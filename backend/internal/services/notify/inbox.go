package notify

import (
	"context"
	"strings"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

type InboxStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

type ContactStore interface {
	Upsert(ctx context.Context, c model.Contact, role enums.Role) error
}

// Inbox serves a user's in-app notifications and the contact details used
// for external delivery.
type Inbox struct {
	store    InboxStore
	contacts ContactStore
}

func NewInbox(store InboxStore, contacts ContactStore) *Inbox {
	return &Inbox{store: store, contacts: contacts}
}

func (s *Inbox) List(ctx context.Context, actor model.Actor, limit int) ([]model.Notification, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return nil, apperr.ErrUnauthorizedAccess
	}
	if s.store == nil {
		return nil, apperr.Dependency("list notifications", errStoreNotConfigured)
	}

	items, err := s.store.ListByUser(ctx, actor.ID, limit)
	if err != nil {
		return nil, apperr.Store("list notifications", err)
	}
	return items, nil
}

func (s *Inbox) MarkRead(ctx context.Context, actor model.Actor, notificationID string) error {
	if strings.TrimSpace(actor.ID) == "" {
		return apperr.ErrUnauthorizedAccess
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return apperr.Validation("id", "notification id is required")
	}
	if s.store == nil {
		return apperr.Dependency("mark notification read", errStoreNotConfigured)
	}

	return apperr.Store("mark notification read", s.store.MarkRead(ctx, actor.ID, notificationID))
}

// SyncContact records the caller's delivery details. A nil chat id clears
// Telegram delivery.
func (s *Inbox) SyncContact(ctx context.Context, actor model.Actor, telegramChatID *int64) error {
	if strings.TrimSpace(actor.ID) == "" {
		return apperr.ErrUnauthorizedAccess
	}
	if telegramChatID != nil && *telegramChatID == 0 {
		return apperr.Validation("telegram_chat_id", "telegram chat id must not be zero")
	}
	if s.contacts == nil {
		return apperr.Dependency("sync contact", errStoreNotConfigured)
	}

	return apperr.Store("sync contact", s.contacts.Upsert(ctx, model.Contact{
		UserID:         actor.ID,
		DisplayName:    strings.TrimSpace(actor.Name),
		Email:          strings.TrimSpace(actor.Email),
		TelegramChatID: telegramChatID,
	}, actor.Role))
}
