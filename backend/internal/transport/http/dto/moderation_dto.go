package dto

import "time"

type ModerationActionRequest struct {
	Action     string `json:"action"`
	Notes      string `json:"notes"`
	ReasonCode string `json:"reason_code"`
}

// ModerationActionResponse reports side effects separately so the panel can
// warn when the audit or notification did not go through.
type ModerationActionResponse struct {
	Petition         PetitionResponse `json:"petition"`
	AuditRecorded    bool             `json:"audit_recorded"`
	NotificationSent bool             `json:"notification_sent"`
}

type ModerationQueueItemResponse struct {
	Petition       PetitionResponse `json:"petition"`
	ImageURL       *string          `json:"image_url,omitempty"`
	WaitingSeconds int64            `json:"waiting_sec"`
}

type ModerationQueueResponse struct {
	Size      int                           `json:"size"`
	ETABucket string                        `json:"eta_bucket"`
	Items     []ModerationQueueItemResponse `json:"items"`
}

type RejectReasonResponse struct {
	ReasonCode      string `json:"reason_code"`
	Label           string `json:"label"`
	ReasonText      string `json:"reason_text"`
	RequiredFixStep string `json:"required_fix_step"`
}

type RejectReasonsResponse struct {
	Items []RejectReasonResponse `json:"items"`
}

type AuditDetailsResponse struct {
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
	Reason   string `json:"reason,omitempty"`
}

type AuditEntryResponse struct {
	ID         string               `json:"id"`
	ActorID    string               `json:"actor_id"`
	ActorName  string               `json:"actor_name"`
	ActorEmail string               `json:"actor_email"`
	ActorRole  string               `json:"actor_role"`
	Action     string               `json:"action"`
	TargetType string               `json:"target_type"`
	TargetID   string               `json:"target_id"`
	TargetName string               `json:"target_name"`
	Details    AuditDetailsResponse `json:"details"`
	CreatedAt  time.Time            `json:"created_at"`
}

type AuditLogResponse struct {
	Items []AuditEntryResponse `json:"items"`
}
