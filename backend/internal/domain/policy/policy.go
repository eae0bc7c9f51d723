// Package policy holds the authorization and status-transition rules shared
// by the moderation and appeal engines and by the HTTP layer.
package policy

import (
	"fmt"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

func IsPrivileged(role enums.Role) bool {
	switch enums.ParseRole(string(role)) {
	case enums.RoleModerator, enums.RoleAdmin:
		return true
	default:
		return false
	}
}

func CanModerate(role enums.Role) error {
	if !IsPrivileged(role) {
		return fmt.Errorf("role %q cannot moderate: %w", role, apperr.ErrUnauthorizedAccess)
	}
	return nil
}

// PetitionTransition resolves the status an action leads to from the current one.
// Deleted is terminal and re-applying the current status is rejected.
func PetitionTransition(from enums.PetitionStatus, action enums.ModerationAction) (enums.PetitionStatus, error) {
	to, ok := action.TargetStatus()
	if !ok {
		return "", apperr.Validation("action", fmt.Sprintf("unknown moderation action %q", action))
	}
	if !from.Valid() {
		return "", fmt.Errorf("unknown petition status %q: %w", from, apperr.ErrInvalidTransition)
	}
	if from == enums.PetitionStatusDeleted {
		return "", fmt.Errorf("petition is deleted: %w", apperr.ErrInvalidTransition)
	}
	if from == to {
		return "", fmt.Errorf("petition is already %s: %w", to, apperr.ErrInvalidTransition)
	}
	return to, nil
}

func CanCreateAppeal(status enums.PetitionStatus) error {
	switch status {
	case enums.PetitionStatusPaused, enums.PetitionStatusRejected:
		return nil
	default:
		return fmt.Errorf("petition status %q: %w", status, apperr.ErrInvalidPetitionState)
	}
}

var appealTransitions = map[enums.AppealStatus][]enums.AppealStatus{
	enums.AppealStatusPending: {
		enums.AppealStatusInProgress,
		enums.AppealStatusResolved,
		enums.AppealStatusRejected,
	},
	enums.AppealStatusInProgress: {
		enums.AppealStatusResolved,
		enums.AppealStatusRejected,
	},
}

func AppealTransition(role enums.Role, from, to enums.AppealStatus) error {
	if !IsPrivileged(role) {
		return fmt.Errorf("role %q cannot change appeal status: %w", role, apperr.ErrUnauthorizedAccess)
	}
	if !to.Valid() {
		return apperr.Validation("status", fmt.Sprintf("unknown appeal status %q", to))
	}
	if from.Terminal() {
		return fmt.Errorf("appeal is %s: %w", from, apperr.ErrAppealClosed)
	}
	if from == to {
		return fmt.Errorf("appeal is already %s: %w", to, apperr.ErrInvalidTransition)
	}
	for _, allowed := range appealTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("appeal %s -> %s: %w", from, to, apperr.ErrInvalidTransition)
}

func CanReply(status enums.AppealStatus) error {
	if status.Terminal() {
		return fmt.Errorf("appeal is %s: %w", status, apperr.ErrAppealClosed)
	}
	return nil
}

func CanPostInternal(role enums.Role, internal bool) error {
	if internal && !IsPrivileged(role) {
		return fmt.Errorf("internal notes are reserved for moderators: %w", apperr.ErrUnauthorizedAccess)
	}
	return nil
}

func CanReadAppeal(actorID string, role enums.Role, appeal model.Appeal) error {
	if IsPrivileged(role) || (actorID != "" && appeal.CreatorID == actorID) {
		return nil
	}
	return fmt.Errorf("appeal %s: %w", appeal.ID, apperr.ErrUnauthorizedAccess)
}

// CanAct reports whether actorID may act as the owner of a record created by ownerID.
func CanAct(actorID string, role enums.Role, ownerID string) error {
	if IsPrivileged(role) || (actorID != "" && actorID == ownerID) {
		return nil
	}
	return apperr.ErrUnauthorizedAccess
}

func VisibleMessages(role enums.Role, messages []model.AppealMessage) []model.AppealMessage {
	out := make([]model.AppealMessage, 0, len(messages))
	privileged := IsPrivileged(role)
	for _, msg := range messages {
		if msg.IsInternal && !privileged {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func MessageRoleFor(role enums.Role) enums.MessageRole {
	if IsPrivileged(role) {
		return enums.MessageRoleModerator
	}
	return enums.MessageRoleCreator
}
