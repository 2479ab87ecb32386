package model

import "github.com/m-mizutani/goerr/v2"

// Defaults for the mutable scan settings
const (
	DefaultConfidenceThreshold = 0.70
	DefaultClusterMinDocs      = 5
)

// ScanSettings holds the two mutable numeric settings read at the start of
// each scan. They are passed into the orchestrator as a value so runs are
// deterministic given fixed inputs.
type ScanSettings struct {
	ConfidenceThreshold float64 `json:"confidenceThreshold" firestore:"confidence_threshold"`
	ClusterMinDocs      int     `json:"clusterMinDocs" firestore:"cluster_min_docs"`
}

// DefaultScanSettings returns the built-in defaults
func DefaultScanSettings() ScanSettings {
	return ScanSettings{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		ClusterMinDocs:      DefaultClusterMinDocs,
	}
}

// Validate validates the settings
func (s *ScanSettings) Validate() error {
	if s.ConfidenceThreshold < 0 || s.ConfidenceThreshold > 1 {
		return goerr.New("confidence threshold must be between 0 and 1",
			goerr.V("threshold", s.ConfidenceThreshold))
	}
	if s.ClusterMinDocs < 1 {
		return goerr.New("cluster min docs must be positive",
			goerr.V("minDocs", s.ClusterMinDocs))
	}
	return nil
}
