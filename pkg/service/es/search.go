package es

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

type searchHit struct {
	ID     string          `json:"_id"`
	Source complaintSource `json:"_source"`
}

type complaintSource struct {
	ProductSKU      string `json:"product_sku"`
	ProductName     string `json:"product_name"`
	Title           string `json:"title"`
	Summary         string `json:"summary"`
	FailureMode     string `json:"failure_mode"`
	InjuryMentioned bool   `json:"injury_mentioned"`
	Location        string `json:"location"`
	GeoRegion       string `json:"geo_region"`
	CreatedAt       string `json:"created_at"`
}

// RecentComplaints returns the most recent complaints matching the cluster
// keys, newest first, for exemplar sampling
func (c *Client) RecentComplaints(ctx context.Context, productSKU, failureMode string, limit int) ([]model.Complaint, error) {
	if productSKU == "" || failureMode == "" {
		return nil, goerr.New("product SKU and failure mode are required")
	}

	body := map[string]any{
		"size": limit,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"product_sku": productSKU}},
					map[string]any{"term": map[string]any{"failure_mode.keyword": failureMode}},
				},
			},
		},
		"sort": []any{
			map[string]any{"created_at": "desc"},
		},
	}

	var resp searchResponse
	if err := c.search(ctx, c.complaintsIndex, body, &resp); err != nil {
		return nil, goerr.Wrap(err, "exemplar search failed",
			goerr.V("productSKU", productSKU),
			goerr.V("failureMode", failureMode))
	}

	complaints := make([]model.Complaint, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		createdAt, _ := time.Parse(time.RFC3339, hit.Source.CreatedAt)
		complaints = append(complaints, model.Complaint{
			ID:              types.ComplaintID(hit.ID),
			ProductSKU:      hit.Source.ProductSKU,
			ProductName:     hit.Source.ProductName,
			Title:           hit.Source.Title,
			Summary:         hit.Source.Summary,
			FailureMode:     hit.Source.FailureMode,
			InjuryMentioned: hit.Source.InjuryMentioned,
			Location:        hit.Source.Location,
			GeoRegion:       hit.Source.GeoRegion,
			CreatedAt:       createdAt,
		})
	}

	return complaints, nil
}
