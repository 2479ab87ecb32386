package types

// AuditAction tags an entry in a case's audit trail
type AuditAction string

const (
	AuditActionCreated      AuditAction = "created"
	AuditActionRescanUpdate AuditAction = "rescan_update"
	AuditActionEscalate     AuditAction = "escalate"
	AuditActionDismiss      AuditAction = "dismiss"
	AuditActionResolve      AuditAction = "resolve"
	AuditActionComment      AuditAction = "comment"
)

// String returns the string representation of the action
func (a AuditAction) String() string {
	return string(a)
}

// IsValid checks if the action is a known audit action
func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreated, AuditActionRescanUpdate, AuditActionEscalate,
		AuditActionDismiss, AuditActionResolve, AuditActionComment:
		return true
	default:
		return false
	}
}
