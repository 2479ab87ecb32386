package interfaces

import (
	"context"

	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
)

// EmailClient sends case alert emails. Fire-and-forget from the core's
// perspective; a send failure never rolls back a case mutation.
type EmailClient interface {
	SendCaseAlert(ctx context.Context, to model.Recipient, c *model.Case) error
}

// NarrativeGenerator produces the free-text narrative for a case from
// cluster metrics and exemplar excerpts
type NarrativeGenerator interface {
	Generate(ctx context.Context, sc model.ScoredCluster, exemplars []model.ComplaintExcerpt) (string, error)
}
