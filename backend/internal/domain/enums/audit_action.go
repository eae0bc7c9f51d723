package enums

type AuditAction string

const (
	AuditActionPetitionApproved    AuditAction = "petition.approved"
	AuditActionPetitionRejected    AuditAction = "petition.rejected"
	AuditActionPetitionPaused      AuditAction = "petition.paused"
	AuditActionPetitionDeleted     AuditAction = "petition.deleted"
	AuditActionAppealCreated       AuditAction = "appeal.created"
	AuditActionAppealStatusChanged AuditAction = "appeal.status_changed"
)

type AuditTarget string

const (
	AuditTargetPetition AuditTarget = "petition"
	AuditTargetAppeal   AuditTarget = "appeal"
)

// PetitionAuditAction maps the status a petition moved to onto its audit action.
func PetitionAuditAction(status PetitionStatus) AuditAction {
	return AuditAction("petition." + string(status))
}

type VerificationMethod string

const (
	VerificationMethodPhone   VerificationMethod = "phone"
	VerificationMethodEmail   VerificationMethod = "email"
	VerificationMethodAccount VerificationMethod = "account"
)

type NotificationKind string

const (
	NotificationKindPetitionStatus NotificationKind = "petition_status"
	NotificationKindAppealReply    NotificationKind = "appeal_reply"
	NotificationKindAppealStatus   NotificationKind = "appeal_status"
	NotificationKindAppealCreated  NotificationKind = "appeal_created"
)
