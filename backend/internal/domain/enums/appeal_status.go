package enums

type AppealStatus string

const (
	AppealStatusPending    AppealStatus = "pending"
	AppealStatusInProgress AppealStatus = "in-progress"
	AppealStatusResolved   AppealStatus = "resolved"
	AppealStatusRejected   AppealStatus = "rejected"
)

func (s AppealStatus) Valid() bool {
	switch s {
	case AppealStatusPending, AppealStatusInProgress, AppealStatusResolved, AppealStatusRejected:
		return true
	default:
		return false
	}
}

// Open reports whether the appeal still blocks a new appeal on the same petition.
func (s AppealStatus) Open() bool {
	return s == AppealStatusPending || s == AppealStatusInProgress
}

func (s AppealStatus) Terminal() bool {
	return s == AppealStatusResolved || s == AppealStatusRejected
}

type MessageRole string

const (
	MessageRoleCreator   MessageRole = "creator"
	MessageRoleModerator MessageRole = "moderator"
)
