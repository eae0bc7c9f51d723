package dto

import (
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

type NotificationResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	PetitionID *string   `json:"petition_id,omitempty"`
	AppealID   *string   `json:"appeal_id,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

type NotificationsListResponse struct {
	Items []NotificationResponse `json:"items"`
}

type ContactRequest struct {
	TelegramChatID *int64 `json:"telegram_chat_id"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

func NewNotificationsListResponse(items []model.Notification) NotificationsListResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NotificationResponse{
			ID:         n.ID,
			Kind:       string(n.Kind),
			Title:      n.Title,
			Body:       n.Body,
			PetitionID: n.PetitionID,
			AppealID:   n.AppealID,
			Read:       n.Read,
			CreatedAt:  n.CreatedAt,
		})
	}
	return NotificationsListResponse{Items: out}
}
