package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

func TestSeverityTier(t *testing.T) {
	t.Run("Ordering", func(t *testing.T) {
		gt.True(t, types.TierMonitor < types.TierInvestigate)
		gt.True(t, types.TierInvestigate < types.TierEscalate)
		gt.True(t, types.TierEscalate < types.TierCritical)
	})

	t.Run("String labels", func(t *testing.T) {
		gt.Equal(t, "Monitor", types.TierMonitor.String())
		gt.Equal(t, "Investigate", types.TierInvestigate.String())
		gt.Equal(t, "Escalate", types.TierEscalate.String())
		gt.Equal(t, "Critical", types.TierCritical.String())
		gt.Equal(t, "Unknown", types.SeverityTier(99).String())
	})

	t.Run("Next caps at Critical", func(t *testing.T) {
		gt.Equal(t, types.TierInvestigate, types.TierMonitor.Next())
		gt.Equal(t, types.TierCritical, types.TierCritical.Next())
	})

	t.Run("Validity", func(t *testing.T) {
		gt.True(t, types.TierMonitor.IsValid())
		gt.True(t, types.TierCritical.IsValid())
		gt.False(t, types.SeverityTier(0).IsValid())
		gt.False(t, types.SeverityTier(5).IsValid())
	})
}

func TestCaseStatus(t *testing.T) {
	t.Run("Terminal statuses", func(t *testing.T) {
		gt.True(t, types.CaseStatusResolved.IsTerminal())
		gt.True(t, types.CaseStatusDismissed.IsTerminal())
		gt.False(t, types.CaseStatusOpen.IsTerminal())
		gt.False(t, types.CaseStatusInvestigating.IsTerminal())
		gt.False(t, types.CaseStatusEscalated.IsTerminal())
	})

	t.Run("Validity", func(t *testing.T) {
		gt.True(t, types.CaseStatusOpen.IsValid())
		gt.False(t, types.CaseStatus("closed").IsValid())
	})

	t.Run("Terminal status list", func(t *testing.T) {
		gt.Equal(t, []types.CaseStatus{types.CaseStatusResolved, types.CaseStatusDismissed},
			types.TerminalStatuses())
	})
}

func TestIDGeneration(t *testing.T) {
	t.Run("Case IDs are unique", func(t *testing.T) {
		a := types.NewCaseID()
		b := types.NewCaseID()
		gt.V(t, a).NotEqual(b)
	})

	t.Run("Notification IDs carry the prefix", func(t *testing.T) {
		id := types.NewNotificationID()
		gt.S(t, string(id)).Contains("ntf-")
	})
}
