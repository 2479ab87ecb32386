package types

// SeverityTier is the ordinal severity classification of a cluster or case.
// Tiers are ordered: Monitor < Investigate < Escalate < Critical.
type SeverityTier int

const (
	TierMonitor SeverityTier = iota + 1
	TierInvestigate
	TierEscalate
	TierCritical
)

// String returns the display label of the tier
func (t SeverityTier) String() string {
	switch t {
	case TierMonitor:
		return "Monitor"
	case TierInvestigate:
		return "Investigate"
	case TierEscalate:
		return "Escalate"
	case TierCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Int returns the int representation of the tier
func (t SeverityTier) Int() int {
	return int(t)
}

// IsValid checks if the tier is within the defined range
func (t SeverityTier) IsValid() bool {
	return t >= TierMonitor && t <= TierCritical
}

// Next returns the next higher tier, capped at Critical
func (t SeverityTier) Next() SeverityTier {
	if t >= TierCritical {
		return TierCritical
	}
	return t + 1
}
