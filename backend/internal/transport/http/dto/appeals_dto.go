package dto

import (
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

type CreateAppealRequest struct {
	Message string `json:"message"`
}

type CreateAppealResponse struct {
	AppealID string `json:"appeal_id"`
}

type AddAppealMessageRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

type UpdateAppealStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type AppealMessageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole string    `json:"sender_role"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

type AppealStatusChangeResponse struct {
	Status        string    `json:"status"`
	ChangedBy     string    `json:"changed_by"`
	ChangedByName string    `json:"changed_by_name"`
	ChangedAt     time.Time `json:"changed_at"`
	Reason        *string   `json:"reason,omitempty"`
}

type AppealResponse struct {
	ID             string                       `json:"id"`
	PetitionID     string                       `json:"petition_id"`
	PetitionTitle  string                       `json:"petition_title"`
	CreatorID      string                       `json:"creator_id"`
	CreatorName    string                       `json:"creator_name"`
	Status         string                       `json:"status"`
	Messages       []AppealMessageResponse      `json:"messages"`
	StatusHistory  []AppealStatusChangeResponse `json:"status_history"`
	CreatedAt      time.Time                    `json:"created_at"`
	UpdatedAt      time.Time                    `json:"updated_at"`
	ResolvedAt     *time.Time                   `json:"resolved_at,omitempty"`
	ResolvedBy     *string                      `json:"resolved_by,omitempty"`
	ResolutionNote *string                      `json:"resolution_note,omitempty"`
}

type AppealsListResponse struct {
	Items      []AppealResponse `json:"items"`
	NextBefore *time.Time       `json:"next_before,omitempty"`
}

func NewAppealMessageResponse(m model.AppealMessage) AppealMessageResponse {
	return AppealMessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		SenderRole: string(m.SenderRole),
		Content:    m.Content,
		IsInternal: m.IsInternal,
		CreatedAt:  m.CreatedAt,
	}
}

// NewAppealResponse expects an appeal already filtered for the caller.
func NewAppealResponse(a model.Appeal) AppealResponse {
	messages := make([]AppealMessageResponse, 0, len(a.Messages))
	for _, m := range a.Messages {
		messages = append(messages, NewAppealMessageResponse(m))
	}
	history := make([]AppealStatusChangeResponse, 0, len(a.StatusHistory))
	for _, change := range a.StatusHistory {
		history = append(history, AppealStatusChangeResponse{
			Status:        string(change.Status),
			ChangedBy:     change.ChangedBy,
			ChangedByName: change.ChangedByName,
			ChangedAt:     change.ChangedAt,
			Reason:        change.Reason,
		})
	}

	return AppealResponse{
		ID:             a.ID,
		PetitionID:     a.PetitionID,
		PetitionTitle:  a.PetitionTitle,
		CreatorID:      a.CreatorID,
		CreatorName:    a.CreatorName,
		Status:         string(a.Status),
		Messages:       messages,
		StatusHistory:  history,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		ResolvedAt:     a.ResolvedAt,
		ResolvedBy:     a.ResolvedBy,
		ResolutionNote: a.ResolutionNote,
	}
}

func NewAppealsListResponse(items []model.Appeal, nextBefore *time.Time) AppealsListResponse {
	out := make([]AppealResponse, 0, len(items))
	for _, a := range items {
		out = append(out, NewAppealResponse(a))
	}
	return AppealsListResponse{Items: out, NextBefore: nextBefore}
}
