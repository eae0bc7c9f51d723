package model

import (
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
)

type Appeal struct {
	ID             string               `json:"id"`
	PetitionID     string               `json:"petition_id"`
	PetitionTitle  string               `json:"petition_title"`
	CreatorID      string               `json:"creator_id"`
	CreatorName    string               `json:"creator_name"`
	CreatorEmail   string               `json:"creator_email"`
	Status         enums.AppealStatus   `json:"status"`
	Messages       []AppealMessage      `json:"messages"`
	StatusHistory  []AppealStatusChange `json:"status_history"`
	Version        int64                `json:"version"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	ResolvedAt     *time.Time           `json:"resolved_at,omitempty"`
	ResolvedBy     *string              `json:"resolved_by,omitempty"`
	ResolutionNote *string              `json:"resolution_note,omitempty"`
}

type AppealMessage struct {
	ID         string            `json:"id"`
	SenderID   string            `json:"sender_id"`
	SenderName string            `json:"sender_name"`
	SenderRole enums.MessageRole `json:"sender_role"`
	Content    string            `json:"content"`
	IsInternal bool              `json:"is_internal"`
	CreatedAt  time.Time         `json:"created_at"`
}

type AppealStatusChange struct {
	Status        enums.AppealStatus `json:"status"`
	ChangedBy     string             `json:"changed_by"`
	ChangedByName string             `json:"changed_by_name"`
	ChangedAt     time.Time          `json:"changed_at"`
	Reason        *string            `json:"reason,omitempty"`
}

// Clone returns a deep copy so callers can filter messages without touching stored state.
func (a Appeal) Clone() Appeal {
	out := a
	out.Messages = append([]AppealMessage(nil), a.Messages...)
	out.StatusHistory = make([]AppealStatusChange, 0, len(a.StatusHistory))
	for _, change := range a.StatusHistory {
		change.Reason = cloneString(change.Reason)
		out.StatusHistory = append(out.StatusHistory, change)
	}
	out.ResolvedAt = cloneTime(a.ResolvedAt)
	out.ResolvedBy = cloneString(a.ResolvedBy)
	out.ResolutionNote = cloneString(a.ResolutionNote)
	return out
}
