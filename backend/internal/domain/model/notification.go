package model

import (
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
)

type Notification struct {
	ID         string                 `json:"id"`
	UserID     string                 `json:"user_id"`
	Kind       enums.NotificationKind `json:"kind"`
	Title      string                 `json:"title"`
	Body       string                 `json:"body"`
	PetitionID *string                `json:"petition_id,omitempty"`
	AppealID   *string                `json:"appeal_id,omitempty"`
	Read       bool                   `json:"read"`
	CreatedAt  time.Time              `json:"created_at"`
}

// Contact mirrors the identity provider's profile fields needed for delivery.
type Contact struct {
	UserID         string
	DisplayName    string
	Email          string
	TelegramChatID *int64
}
