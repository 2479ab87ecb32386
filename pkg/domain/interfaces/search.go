package interfaces

import (
	"context"

	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
)

// SearchClient defines the aggregation/search collaborator holding the
// complaint corpus. The core depends only on the normalized shapes returned
// here, not on any query language.
type SearchClient interface {
	// ClusterCandidates runs the three-level grouping query
	// (product -> failure mode -> time/region/injury) over the window and
	// returns flattened candidates with chronological trend buckets.
	ClusterCandidates(ctx context.Context, window model.ScanWindow) ([]model.ClusterCandidate, error)

	// RecentComplaints returns the most recent complaints matching the
	// cluster keys, newest first, for exemplar sampling.
	RecentComplaints(ctx context.Context, productSKU, failureMode string, limit int) ([]model.Complaint, error)
}
