package model

import (
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
)

type Petition struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	Category            string               `json:"category"`
	CreatorID           string               `json:"creator_id"`
	Status              enums.PetitionStatus `json:"status"`
	TargetSignatures    int                  `json:"target_signatures"`
	CurrentSignatures   int                  `json:"current_signatures"`
	ImageKey            *string              `json:"image_key,omitempty"`
	IsActive            bool                 `json:"is_active"`
	ModeratedBy         *string              `json:"moderated_by,omitempty"`
	ModeratorNotes      *string              `json:"moderator_notes,omitempty"`
	ResubmissionHistory []ResubmissionEntry  `json:"resubmission_history"`
	Version             int64                `json:"version"`
	CreatedAt           time.Time            `json:"created_at"`
	ApprovedAt          *time.Time           `json:"approved_at,omitempty"`
	RejectedAt          *time.Time           `json:"rejected_at,omitempty"`
	PausedAt            *time.Time           `json:"paused_at,omitempty"`
	DeletedAt           *time.Time           `json:"deleted_at,omitempty"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

type ResubmissionEntry struct {
	RejectedAt    time.Time  `json:"rejected_at"`
	Reason        string     `json:"reason"`
	ResubmittedAt *time.Time `json:"resubmitted_at"`
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Petition) Clone() Petition {
	out := p
	out.ImageKey = cloneString(p.ImageKey)
	out.ModeratedBy = cloneString(p.ModeratedBy)
	out.ModeratorNotes = cloneString(p.ModeratorNotes)
	out.ApprovedAt = cloneTime(p.ApprovedAt)
	out.RejectedAt = cloneTime(p.RejectedAt)
	out.PausedAt = cloneTime(p.PausedAt)
	out.DeletedAt = cloneTime(p.DeletedAt)
	out.ResubmissionHistory = make([]ResubmissionEntry, 0, len(p.ResubmissionHistory))
	for _, entry := range p.ResubmissionHistory {
		entry.ResubmittedAt = cloneTime(entry.ResubmittedAt)
		out.ResubmissionHistory = append(out.ResubmissionHistory, entry)
	}
	return out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
