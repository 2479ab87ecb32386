package es

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
)

const (
	// Bucket limits of the three-level grouping query
	maxProductBuckets     = 50
	maxFailureModeBuckets = 20
	maxRegionBuckets      = 20

	// Bucket granularity of the time histogram
	bucketInterval = "1w"

	// Free-text filter matching complaints that mention injury
	injuryMatchTerms = "injury burn shock harm hurt"
)

// Typed intermediate representation of the nested aggregation response.
// Shapes are validated here at the adapter boundary; malformed payloads
// become tagged aggregation-fetch errors, never silently coerced.
type clusterAggResponse struct {
	Aggregations *struct {
		ByProduct struct {
			Buckets []productBucket `json:"buckets"`
		} `json:"by_product"`
	} `json:"aggregations"`
}

type productBucket struct {
	Key           string `json:"key"`
	DocCount      int    `json:"doc_count"`
	ByFailureMode struct {
		Buckets []failureModeBucket `json:"buckets"`
	} `json:"by_failure_mode"`
}

type failureModeBucket struct {
	Key      string `json:"key"`
	DocCount int    `json:"doc_count"`
	OverTime struct {
		Buckets []timeBucket `json:"buckets"`
	} `json:"over_time"`
	ByRegion struct {
		Buckets []termBucket `json:"buckets"`
	} `json:"by_region"`
	InjuryMentions struct {
		DocCount int `json:"doc_count"`
	} `json:"injury_mentions"`
}

type timeBucket struct {
	Key         int64  `json:"key"`
	KeyAsString string `json:"key_as_string"`
	DocCount    int    `json:"doc_count"`
}

type termBucket struct {
	Key      string `json:"key"`
	DocCount int    `json:"doc_count"`
}

// ClusterCandidates runs the three-level grouping query
// (product -> failure mode -> time/region/injury) and flattens the nested
// bucket tree into candidates, preserving the chronological time-bucket
// order as returned.
func (c *Client) ClusterCandidates(ctx context.Context, window model.ScanWindow) ([]model.ClusterCandidate, error) {
	body := map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"range": map[string]any{
						"created_at": map[string]any{
							"gte": window.Start.Format(time.RFC3339),
							"lte": window.End.Format(time.RFC3339),
						},
					}},
				},
			},
		},
		"aggs": map[string]any{
			"by_product": map[string]any{
				"terms": map[string]any{"field": "product_sku", "size": maxProductBuckets},
				"aggs": map[string]any{
					"by_failure_mode": map[string]any{
						"terms": map[string]any{"field": "failure_mode.keyword", "size": maxFailureModeBuckets},
						"aggs": map[string]any{
							"over_time": map[string]any{
								"date_histogram": map[string]any{
									"field":             "created_at",
									"calendar_interval": bucketInterval,
								},
							},
							"by_region": map[string]any{
								"terms": map[string]any{"field": "geo_region.keyword", "size": maxRegionBuckets},
							},
							"injury_mentions": map[string]any{
								"filter": map[string]any{
									"match": map[string]any{"complaint_text": injuryMatchTerms},
								},
							},
						},
					},
				},
			},
		},
	}

	var resp clusterAggResponse
	if err := c.search(ctx, c.complaintsIndex, body, &resp); err != nil {
		return nil, goerr.Wrap(err, "cluster aggregation failed",
			goerr.T(model.ErrTagAggregationFetch))
	}

	if resp.Aggregations == nil {
		return nil, goerr.New("aggregation response missing aggregations",
			goerr.T(model.ErrTagAggregationFetch),
			goerr.V("index", c.complaintsIndex))
	}

	return flattenClusters(resp)
}

// flattenClusters converts the nested bucket tree into flat candidates
func flattenClusters(resp clusterAggResponse) ([]model.ClusterCandidate, error) {
	var candidates []model.ClusterCandidate

	for _, pb := range resp.Aggregations.ByProduct.Buckets {
		if pb.Key == "" {
			return nil, goerr.New("product bucket missing key",
				goerr.T(model.ErrTagAggregationFetch))
		}

		for _, fb := range pb.ByFailureMode.Buckets {
			if fb.Key == "" {
				return nil, goerr.New("failure mode bucket missing key",
					goerr.T(model.ErrTagAggregationFetch),
					goerr.V("productSKU", pb.Key))
			}

			regions := make([]string, 0, len(fb.ByRegion.Buckets))
			for _, rb := range fb.ByRegion.Buckets {
				regions = append(regions, rb.Key)
			}

			trend := make([]model.TrendPoint, 0, len(fb.OverTime.Buckets))
			for _, tb := range fb.OverTime.Buckets {
				period := tb.KeyAsString
				if period == "" {
					period = time.UnixMilli(tb.Key).UTC().Format("2006-01-02")
				}
				trend = append(trend, model.TrendPoint{Period: period, Count: tb.DocCount})
			}

			candidate := model.ClusterCandidate{
				ProductSKU:  pb.Key,
				FailureMode: fb.Key,
				Count:       fb.DocCount,
				InjuryCount: fb.InjuryMentions.DocCount,
				Regions:     regions,
				Trend:       trend,
			}
			if err := candidate.Validate(); err != nil {
				return nil, goerr.Wrap(err, "malformed cluster bucket",
					goerr.T(model.ErrTagAggregationFetch),
					goerr.V("productSKU", pb.Key),
					goerr.V("failureMode", fb.Key))
			}

			candidates = append(candidates, candidate)
		}
	}

	return candidates, nil
}
