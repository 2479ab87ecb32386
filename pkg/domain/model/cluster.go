package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

// TrendPoint is one bucket of the per-period complaint count series,
// in chronological order
type TrendPoint struct {
	Period string `json:"period" firestore:"period"`
	Count  int    `json:"count" firestore:"count"`
}

// ScanWindow is the time range a scan covers
type ScanWindow struct {
	Start time.Time
	End   time.Time
}

// ClusterCandidate is a group of complaints sharing product SKU and failure
// mode within a scan window, produced by the aggregation adapter. Candidates
// are ephemeral; only clusters that pass both gates become cases.
type ClusterCandidate struct {
	ProductSKU  string
	FailureMode string
	Count       int
	InjuryCount int
	Regions     []string
	Trend       []TrendPoint
}

// Validate checks the candidate invariants
func (c *ClusterCandidate) Validate() error {
	if c.ProductSKU == "" {
		return goerr.New("product SKU is required")
	}
	if c.FailureMode == "" {
		return goerr.New("failure mode is required")
	}
	if c.Count < 0 {
		return goerr.New("complaint count must not be negative",
			goerr.V("count", c.Count))
	}
	if c.InjuryCount < 0 || c.InjuryCount > c.Count {
		return goerr.New("injury count must be between 0 and complaint count",
			goerr.V("injuryCount", c.InjuryCount),
			goerr.V("count", c.Count))
	}
	if c.Count > 0 && len(c.Regions) == 0 {
		return goerr.New("region set must not be empty for a non-empty cluster",
			goerr.V("count", c.Count))
	}
	return nil
}

// GeoSpread returns the number of distinct regions in the cluster
func (c *ClusterCandidate) GeoSpread() int {
	return len(c.Regions)
}

// InjuryRate returns the proportion of complaints mentioning injury
func (c *ClusterCandidate) InjuryRate() float64 {
	if c.Count == 0 {
		return 0
	}
	return float64(c.InjuryCount) / float64(c.Count)
}

// TrendCounts returns the per-period counts in chronological order
func (c *ClusterCandidate) TrendCounts() []int {
	counts := make([]int, 0, len(c.Trend))
	for _, tp := range c.Trend {
		counts = append(counts, tp.Count)
	}
	return counts
}

// ScoredCluster is a candidate with its derived velocity, confidence score,
// and severity tier
type ScoredCluster struct {
	ClusterCandidate
	Velocity        float64
	ConfidenceScore float64
	Tier            types.SeverityTier
}
