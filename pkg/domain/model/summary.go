package model

import "github.com/verdicttrace/verdicttrace/pkg/domain/types"

// ClusterAction describes what a scan did with one cluster
type ClusterAction string

const (
	ClusterActionCreated ClusterAction = "created"
	ClusterActionUpdated ClusterAction = "updated"
	ClusterActionSkipped ClusterAction = "skipped"
	ClusterActionFailed  ClusterAction = "failed"
)

// ClusterOutcome is the per-cluster result row of a scan
type ClusterOutcome struct {
	ProductSKU      string             `json:"productSku"`
	FailureMode     string             `json:"failureMode"`
	Count           int                `json:"count"`
	InjuryCount     int                `json:"injuryCount"`
	ConfidenceScore float64            `json:"confidenceScore"`
	Tier            types.SeverityTier `json:"tier"`
	Action          ClusterAction      `json:"action"`
	Reason          string             `json:"reason,omitempty"`
}

// ScanSummary is the per-run result of the scan orchestrator. Partial
// failures never silently disappear; every skipped or failed cluster has an
// outcome row with a reason.
type ScanSummary struct {
	ClustersEvaluated int              `json:"clustersEvaluated"`
	ClustersAboveGate int              `json:"clustersAboveGate"`
	CasesCreated      int              `json:"casesCreated"`
	CasesUpdated      int              `json:"casesUpdated"`
	Outcomes          []ClusterOutcome `json:"outcomes"`
}
