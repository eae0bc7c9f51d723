package model

import (
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
)

type AuditEntry struct {
	ID         string            `json:"id"`
	ActorID    string            `json:"actor_id"`
	ActorName  string            `json:"actor_name"`
	ActorEmail string            `json:"actor_email"`
	ActorRole  enums.Role        `json:"actor_role"`
	Action     enums.AuditAction `json:"action"`
	TargetType enums.AuditTarget `json:"target_type"`
	TargetID   string            `json:"target_id"`
	TargetName string            `json:"target_name"`
	Details    AuditDetails      `json:"details"`
	CreatedAt  time.Time         `json:"created_at"`
}

type AuditDetails struct {
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
	Reason   string `json:"reason,omitempty"`
}
