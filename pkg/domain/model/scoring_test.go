package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

func TestComputeVelocity(t *testing.T) {
	t.Run("Sharp acceleration clamps to 1", func(t *testing.T) {
		// older avg 3.333, recent avg 11 -> ratio ~2.30 -> clamped
		gt.Equal(t, 1.0, model.ComputeVelocity([]int{2, 3, 5, 10, 12}))
	})

	t.Run("Single bucket yields zero", func(t *testing.T) {
		gt.Equal(t, 0.0, model.ComputeVelocity([]int{5}))
	})

	t.Run("All-zero buckets yield zero", func(t *testing.T) {
		gt.Equal(t, 0.0, model.ComputeVelocity([]int{0, 0}))
	})

	t.Run("No older buckets with recent activity yields 1", func(t *testing.T) {
		gt.Equal(t, 1.0, model.ComputeVelocity([]int{3, 4}))
	})

	t.Run("Declining trend clamps to 0", func(t *testing.T) {
		gt.Equal(t, 0.0, model.ComputeVelocity([]int{20, 18, 2, 1}))
	})

	t.Run("Flat trend yields 0", func(t *testing.T) {
		gt.Equal(t, 0.0, model.ComputeVelocity([]int{5, 5, 5, 5}))
	})

	t.Run("Empty series yields 0", func(t *testing.T) {
		gt.Equal(t, 0.0, model.ComputeVelocity(nil))
	})
}

func TestComputeConfidenceScore(t *testing.T) {
	t.Run("High-signal cluster passes the default gate", func(t *testing.T) {
		// volume 1.0*0.30 + injury 0.2*0.35 + geo 1.0*0.20 + vel 1.0*0.15
		score := model.ComputeConfidenceScore(50, 0.2, 5, 1.0)
		gt.Equal(t, 0.72, score)
	})

	t.Run("Sparse cluster fails the default gate", func(t *testing.T) {
		// volume ln6/ln50*0.30 + geo 0.2*0.20
		score := model.ComputeConfidenceScore(5, 0, 1, 0)
		gt.Equal(t, 0.177, score)
		gt.True(t, score < 0.70)
	})

	t.Run("Score is clamped to 1", func(t *testing.T) {
		score := model.ComputeConfidenceScore(1000, 1.0, 50, 1.0)
		gt.Equal(t, 1.0, score)
	})

	t.Run("Empty cluster scores zero", func(t *testing.T) {
		gt.Equal(t, 0.0, model.ComputeConfidenceScore(0, 0, 0, 0))
	})
}

func TestClassifyTier(t *testing.T) {
	t.Run("Critical requires injuries, spread, and volume together", func(t *testing.T) {
		gt.Equal(t, types.TierCritical, model.ClassifyTier(50, 10, 5, 1.0))
		gt.Equal(t, types.TierCritical, model.ClassifyTier(20, 3, 3, 0))
	})

	t.Run("Single injury with volume escalates", func(t *testing.T) {
		gt.Equal(t, types.TierEscalate, model.ClassifyTier(10, 1, 1, 0))
		gt.Equal(t, types.TierEscalate, model.ClassifyTier(5, 1, 2, 0))
	})

	t.Run("Single injury alone is investigate", func(t *testing.T) {
		gt.Equal(t, types.TierInvestigate, model.ClassifyTier(8, 1, 1, 0))
	})

	t.Run("Velocity spike alone is investigate", func(t *testing.T) {
		gt.Equal(t, types.TierInvestigate, model.ClassifyTier(3, 0, 1, 0.6))
	})

	t.Run("Quiet cluster is monitor", func(t *testing.T) {
		gt.Equal(t, types.TierMonitor, model.ClassifyTier(3, 0, 1, 0))
	})
}

func TestScore(t *testing.T) {
	t.Run("Derives all metrics from the candidate", func(t *testing.T) {
		sc := model.Score(model.ClusterCandidate{
			ProductSKU:  "SKU-100",
			FailureMode: "overheating",
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
		gt.Equal(t, 1.0, sc.Velocity)
		gt.Equal(t, 0.72, sc.ConfidenceScore)
		gt.Equal(t, types.TierCritical, sc.Tier)
	})

	t.Run("Tier and gate may disagree", func(t *testing.T) {
		// Meets Critical thresholds but the confidence score stays below 0.70
		sc := model.Score(model.ClusterCandidate{
			ProductSKU:  "SKU-200",
			FailureMode: "hinge crack",
			Count:       20,
			InjuryCount: 3,
			Regions:     []string{"US", "CA", "MX"},
		})
		gt.Equal(t, types.TierCritical, sc.Tier)
		gt.Equal(t, 0.406, sc.ConfidenceScore)
		gt.True(t, sc.ConfidenceScore < 0.70)
	})
}
