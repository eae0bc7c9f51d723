package enums

type PetitionStatus string

const (
	PetitionStatusPending  PetitionStatus = "pending"
	PetitionStatusApproved PetitionStatus = "approved"
	PetitionStatusRejected PetitionStatus = "rejected"
	PetitionStatusPaused   PetitionStatus = "paused"
	PetitionStatusDeleted  PetitionStatus = "deleted"
)

func (s PetitionStatus) Valid() bool {
	switch s {
	case PetitionStatusPending,
		PetitionStatusApproved,
		PetitionStatusRejected,
		PetitionStatusPaused,
		PetitionStatusDeleted:
		return true
	default:
		return false
	}
}

type ModerationAction string

const (
	ModerationActionApprove ModerationAction = "approve"
	ModerationActionReject  ModerationAction = "reject"
	ModerationActionPause   ModerationAction = "pause"
	ModerationActionDelete  ModerationAction = "delete"
)

// TargetStatus returns the petition status an action moves to.
func (a ModerationAction) TargetStatus() (PetitionStatus, bool) {
	switch a {
	case ModerationActionApprove:
		return PetitionStatusApproved, true
	case ModerationActionReject:
		return PetitionStatusRejected, true
	case ModerationActionPause:
		return PetitionStatusPaused, true
	case ModerationActionDelete:
		return PetitionStatusDeleted, true
	default:
		return "", false
	}
}
