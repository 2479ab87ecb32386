package types

// CaseStatus represents the lifecycle status of an investigation case
type CaseStatus string

const (
	CaseStatusOpen          CaseStatus = "open"
	CaseStatusInvestigating CaseStatus = "investigating"
	CaseStatusEscalated     CaseStatus = "escalated"
	CaseStatusResolved      CaseStatus = "resolved"
	CaseStatusDismissed     CaseStatus = "dismissed"
)

// String returns the string representation of the status
func (s CaseStatus) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusOpen, CaseStatusInvestigating, CaseStatusEscalated,
		CaseStatusResolved, CaseStatusDismissed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status excludes the case from any further
// automatic matching. A recurring signal opens a new case instead.
func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusResolved || s == CaseStatusDismissed
}

// TerminalStatuses lists the statuses excluded from live-case lookup
func TerminalStatuses() []CaseStatus {
	return []CaseStatus{CaseStatusResolved, CaseStatusDismissed}
}
