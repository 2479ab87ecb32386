package model

import (
	"math"

	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

// Confidence score weights. Fixed design constants: injury evidence is
// weighted highest. Changing these breaks parity with historical scores.
const (
	weightVolume   = 0.30
	weightInjury   = 0.35
	weightGeo      = 0.20
	weightVelocity = 0.15

	volumeSaturation = 50 // complaint count where the volume score saturates
	geoSaturation    = 5  // distinct regions where the geo score saturates
)

// ComputeVelocity derives a 0-1 trend-acceleration score from chronological
// per-period counts. It compares the mean of the last two periods against
// the mean of all preceding periods; negative or flat trends clamp to 0,
// extreme spikes clamp to 1.
func ComputeVelocity(counts []int) float64 {
	if len(counts) < 2 {
		return 0.0
	}

	recent := counts[len(counts)-2:]
	older := counts[:len(counts)-2]

	recentAvg := mean(recent)
	olderAvg := mean(older)

	if olderAvg == 0 {
		if recentAvg > 0 {
			return 1.0
		}
		return 0.0
	}

	ratio := (recentAvg - olderAvg) / olderAvg
	return clamp01(ratio)
}

// ComputeConfidenceScore combines volume, injury rate, geographic spread,
// and velocity into a single 0-1 score, rounded to 3 decimals.
func ComputeConfidenceScore(count int, injuryRate float64, geoSpread int, velocity float64) float64 {
	// Log scale so the marginal value of additional reports diminishes
	volumeScore := math.Min(1.0, math.Log(float64(count)+1)/math.Log(volumeSaturation))

	injuryScore := injuryRate

	geoScore := math.Min(1.0, float64(geoSpread)/geoSaturation)

	score := volumeScore*weightVolume +
		injuryScore*weightInjury +
		geoScore*weightGeo +
		velocity*weightVelocity

	return round3(clamp01(score))
}

// ClassifyTier maps raw cluster metrics to a severity tier. Rules are
// evaluated in order; first match wins. The tier and the confidence score
// are computed independently and may disagree.
func ClassifyTier(count, injuries, geoSpread int, velocity float64) types.SeverityTier {
	if injuries >= 3 && geoSpread >= 3 && count >= 20 {
		return types.TierCritical
	}
	if injuries >= 1 && (geoSpread >= 2 || count >= 10) {
		return types.TierEscalate
	}
	if injuries >= 1 || count >= 10 || velocity > 0.5 {
		return types.TierInvestigate
	}
	return types.TierMonitor
}

// Score derives velocity, confidence score, and tier for a candidate
func Score(c ClusterCandidate) ScoredCluster {
	velocity := ComputeVelocity(c.TrendCounts())
	return ScoredCluster{
		ClusterCandidate: c,
		Velocity:         velocity,
		ConfidenceScore:  ComputeConfidenceScore(c.Count, c.InjuryRate(), c.GeoSpread(), velocity),
		Tier:             ClassifyTier(c.Count, c.InjuryCount, c.GeoSpread(), velocity),
	}
}

func mean(counts []int) float64 {
	if len(counts) == 0 {
		return 0
	}
	sum := 0
	for _, n := range counts {
		sum += n
	}
	return float64(sum) / float64(len(counts))
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
