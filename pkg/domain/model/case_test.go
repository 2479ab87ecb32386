package model_test

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/gt"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

func isErr(err, target error) bool {
	return errors.Is(err, target)
}

func scoredFixture() model.ScoredCluster {
	return model.Score(model.ClusterCandidate{
		ProductSKU:  "SKU-100",
		FailureMode: "battery overheating",
		Count:       50,
		InjuryCount: 10,
		Regions:     []string{"US", "CA", "UK", "DE", "FR"},
		Trend: []model.TrendPoint{
			{Period: "2026-07-06", Count: 2},
			{Period: "2026-07-13", Count: 3},
			{Period: "2026-07-20", Count: 5},
			{Period: "2026-07-27", Count: 10},
			{Period: "2026-08-03", Count: 12},
		},
	})
}

func caseFixture(t *testing.T) *model.Case {
	t.Helper()
	window := model.ScanWindow{
		Start: time.Now().AddDate(0, 0, -7),
		End:   time.Now(),
	}
	c, err := model.NewCase(scoredFixture(),
		[]types.ComplaintID{"cmp-1", "cmp-2"},
		"Cluster narrative.", window, 0.70)
	gt.NoError(t, err)
	return c
}

func TestNewCase(t *testing.T) {
	t.Run("Valid case creation", func(t *testing.T) {
		c := caseFixture(t)
		gt.S(t, string(c.ID)).Contains("-")
		gt.Equal(t, "SKU-100 — Battery overheating Cluster", c.Title)
		gt.Equal(t, "SKU-100", c.ProductSKU)
		gt.Equal(t, "battery overheating", c.FailureMode)
		gt.Equal(t, types.TierCritical, c.SeverityTier)
		gt.Equal(t, types.CaseStatusEscalated, c.Status)
		gt.Equal(t, 0.72, c.ConfidenceScore)
		gt.Equal(t, 50, c.ComplaintCount)
		gt.A(t, c.ExemplarIDs).Length(2)
		gt.True(t, time.Since(c.CreatedAt) < time.Second)

		gt.A(t, c.AuditLog).Length(1)
		entry := c.AuditLog[0]
		gt.Equal(t, types.AuditActionCreated, entry.Action)
		gt.Equal(t, types.ActorSystem, entry.ActorID)
		gt.Equal(t, model.ScannerActorName, entry.ActorName)
		gt.S(t, entry.Reason).Contains("Confidence 0.720 exceeded threshold 0.70")
	})

	t.Run("Low tier opens non-escalated", func(t *testing.T) {
		sc := model.Score(model.ClusterCandidate{
			ProductSKU:  "SKU-200",
			FailureMode: "seam split",
			Count:       12,
			InjuryCount: 0,
			Regions:     []string{"US"},
		})
		gt.Equal(t, types.TierInvestigate, sc.Tier)

		c, err := model.NewCase(sc, nil, "n", model.ScanWindow{}, 0.70)
		gt.NoError(t, err)
		gt.Equal(t, types.CaseStatusOpen, c.Status)
	})

	t.Run("Invalid candidate is rejected", func(t *testing.T) {
		sc := scoredFixture()
		sc.InjuryCount = sc.Count + 1
		_, err := model.NewCase(sc, nil, "n", model.ScanWindow{}, 0.70)
		gt.Error(t, err)
	})
}

func TestApplyRescan(t *testing.T) {
	t.Run("Preserves identity and history", func(t *testing.T) {
		c := caseFixture(t)
		origID := c.ID
		origCreatedAt := c.CreatedAt

		candidate := scoredFixture().ClusterCandidate
		candidate.Count = 60
		candidate.InjuryCount = 12
		sc := model.Score(candidate)

		gt.NoError(t, c.ApplyRescan(sc, []types.ComplaintID{"cmp-9"}, "Updated narrative."))

		gt.Equal(t, origID, c.ID)
		gt.Equal(t, origCreatedAt, c.CreatedAt)
		gt.Equal(t, 60, c.ComplaintCount)
		gt.Equal(t, "Updated narrative.", c.Narrative)
		gt.A(t, c.AuditLog).Length(2)
		gt.Equal(t, types.AuditActionRescanUpdate, c.AuditLog[1].Action)
		gt.S(t, c.AuditLog[1].Reason).Contains("Rescan detected 60 complaints")
	})

	t.Run("Overwrites human-set status", func(t *testing.T) {
		c := caseFixture(t)
		c.Status = types.CaseStatusInvestigating

		sc := model.Score(model.ClusterCandidate{
			ProductSKU:  c.ProductSKU,
			FailureMode: c.FailureMode,
			Count:       6,
			InjuryCount: 0,
			Regions:     []string{"US"},
		})
		gt.Equal(t, types.TierMonitor, sc.Tier)

		gt.NoError(t, c.ApplyRescan(sc, nil, "n"))
		gt.Equal(t, types.CaseStatusOpen, c.Status)
		gt.Equal(t, types.TierMonitor, c.SeverityTier)
	})

	t.Run("Terminal case is rejected", func(t *testing.T) {
		c := caseFixture(t)
		gt.NoError(t, c.Resolve("u1", "Alice", "done"))

		err := c.ApplyRescan(scoredFixture(), nil, "n")
		gt.Error(t, err)
		gt.True(t, isErr(err, model.ErrCaseTerminal))
	})
}

func TestCaseActions(t *testing.T) {
	t.Run("Escalate bumps tier and status", func(t *testing.T) {
		sc := model.Score(model.ClusterCandidate{
			ProductSKU:  "SKU-300",
			FailureMode: "latch failure",
			Count:       12,
			InjuryCount: 0,
			Regions:     []string{"US"},
		})
		c, err := model.NewCase(sc, nil, "n", model.ScanWindow{}, 0.70)
		gt.NoError(t, err)
		gt.Equal(t, types.TierInvestigate, c.SeverityTier)

		gt.NoError(t, c.Escalate("u1", "Alice", "injury report confirmed"))
		gt.Equal(t, types.TierEscalate, c.SeverityTier)
		gt.Equal(t, types.CaseStatusEscalated, c.Status)
		gt.Equal(t, types.AuditActionEscalate, c.AuditLog[len(c.AuditLog)-1].Action)
	})

	t.Run("Escalate caps at Critical", func(t *testing.T) {
		c := caseFixture(t)
		gt.Equal(t, types.TierCritical, c.SeverityTier)

		gt.NoError(t, c.Escalate("u1", "Alice", "still critical"))
		gt.Equal(t, types.TierCritical, c.SeverityTier)
	})

	t.Run("Dismiss and resolve are terminal", func(t *testing.T) {
		c := caseFixture(t)
		gt.NoError(t, c.Dismiss("u1", "Alice", "false positive"))
		gt.Equal(t, types.CaseStatusDismissed, c.Status)
		gt.False(t, c.IsLive())

		gt.True(t, isErr(c.Escalate("u1", "Alice", "reopen"), model.ErrCaseTerminal))
		gt.True(t, isErr(c.Dismiss("u1", "Alice", "again"), model.ErrCaseTerminal))
		gt.True(t, isErr(c.Resolve("u1", "Alice", "done"), model.ErrCaseTerminal))
	})

	t.Run("Comment works in terminal state", func(t *testing.T) {
		c := caseFixture(t)
		gt.NoError(t, c.Resolve("u1", "Alice", "fixed in rev B"))

		gt.NoError(t, c.Comment("u2", "Bob", "regulator notified"))
		last := c.AuditLog[len(c.AuditLog)-1]
		gt.Equal(t, types.AuditActionComment, last.Action)
		gt.Equal(t, types.CaseStatusResolved, c.Status)
	})

	t.Run("Comment requires a reason", func(t *testing.T) {
		c := caseFixture(t)
		gt.Error(t, c.Comment("u1", "Alice", ""))
	})
}

func TestNarrativeExcerpt(t *testing.T) {
	c := caseFixture(t)
	c.Narrative = strings.Repeat("a", 300)
	gt.Equal(t, 200, len(c.NarrativeExcerpt(200)))

	c.Narrative = "short"
	gt.Equal(t, "short", c.NarrativeExcerpt(200))

	// A multi-byte rune straddling the cut must not be split
	c.Narrative = strings.Repeat("a", 199) + "é" + strings.Repeat("b", 100)
	excerpt := c.NarrativeExcerpt(200)
	gt.True(t, utf8.ValidString(excerpt))
	gt.Equal(t, strings.Repeat("a", 199), excerpt)
}
