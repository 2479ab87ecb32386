package es_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
	"github.com/verdicttrace/verdicttrace/pkg/service/es"
)

const aggResponseFixture = `{
  "aggregations": {
    "by_product": {
      "buckets": [
        {
          "key": "SKU-100",
          "doc_count": 62,
          "by_failure_mode": {
            "buckets": [
              {
                "key": "battery overheating",
                "doc_count": 50,
                "over_time": {
                  "buckets": [
                    {"key": 1753056000000, "key_as_string": "2026-07-20", "doc_count": 5},
                    {"key": 1753660800000, "key_as_string": "2026-07-27", "doc_count": 10},
                    {"key": 1754265600000, "key_as_string": "2026-08-03", "doc_count": 12}
                  ]
                },
                "by_region": {
                  "buckets": [
                    {"key": "US", "doc_count": 30},
                    {"key": "CA", "doc_count": 12},
                    {"key": "UK", "doc_count": 8}
                  ]
                },
                "injury_mentions": {"doc_count": 10}
              },
              {
                "key": "hinge crack",
                "doc_count": 12,
                "over_time": {"buckets": []},
                "by_region": {"buckets": [{"key": "US", "doc_count": 12}]},
                "injury_mentions": {"doc_count": 0}
              }
            ]
          }
        }
      ]
    }
  }
}`

func window() model.ScanWindow {
	end := time.Now()
	return model.ScanWindow{Start: end.AddDate(0, 0, -7), End: end}
}

func TestClusterCandidates(t *testing.T) {
	t.Run("Flattens the nested bucket tree", func(t *testing.T) {
		var capturedBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, "/complaints/_search", r.URL.Path)
			gt.Equal(t, "ApiKey test-key", r.Header.Get("Authorization"))
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(aggResponseFixture))
		}))
		defer srv.Close()

		client := es.New(srv.URL, "test-key", "complaints")
		candidates, err := client.ClusterCandidates(context.Background(), window())
		gt.NoError(t, err)
		gt.A(t, candidates).Length(2)

		first := candidates[0]
		gt.Equal(t, "SKU-100", first.ProductSKU)
		gt.Equal(t, "battery overheating", first.FailureMode)
		gt.Equal(t, 50, first.Count)
		gt.Equal(t, 10, first.InjuryCount)
		gt.Equal(t, []string{"US", "CA", "UK"}, first.Regions)
		gt.Equal(t, []int{5, 10, 12}, first.TrendCounts())
		gt.Equal(t, "2026-07-20", first.Trend[0].Period)

		second := candidates[1]
		gt.Equal(t, "hinge crack", second.FailureMode)
		gt.Equal(t, 0, second.InjuryCount)

		// Query carries the window range and the nested aggregation levels
		gt.V(t, capturedBody["aggs"]).NotNil()
		gt.V(t, capturedBody["query"]).NotNil()
	})

	t.Run("Missing aggregations section is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"took": 3}`))
		}))
		defer srv.Close()

		client := es.New(srv.URL, "", "complaints")
		_, err := client.ClusterCandidates(context.Background(), window())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.ErrTagAggregationFetch))
	})

	t.Run("Bucket missing key is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"aggregations": {"by_product": {"buckets": [
					{"doc_count": 5, "by_failure_mode": {"buckets": []}}
				]}}
			}`))
		}))
		defer srv.Close()

		client := es.New(srv.URL, "", "complaints")
		_, err := client.ClusterCandidates(context.Background(), window())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.ErrTagAggregationFetch))
	})

	t.Run("Non-OK status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "index_not_found_exception"}`, http.StatusNotFound)
		}))
		defer srv.Close()

		client := es.New(srv.URL, "", "complaints")
		_, err := client.ClusterCandidates(context.Background(), window())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.ErrTagAggregationFetch))
	})

	t.Run("Unreachable host is an error", func(t *testing.T) {
		client := es.New("http://127.0.0.1:1", "", "complaints",
			es.WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))
		_, err := client.ClusterCandidates(context.Background(), window())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.ErrTagAggregationFetch))
	})
}

func TestRecentComplaints(t *testing.T) {
	t.Run("Decodes hits newest first", func(t *testing.T) {
		var capturedBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))
			_, _ = w.Write([]byte(`{
				"hits": {"hits": [
					{"_id": "cmp-2", "_source": {
						"product_sku": "SKU-100",
						"title": "Burned my hand",
						"summary": "The unit got extremely hot.",
						"failure_mode": "battery overheating",
						"injury_mentioned": true,
						"location": "Austin, TX",
						"geo_region": "US",
						"created_at": "2026-08-20T10:00:00Z"
					}},
					{"_id": "cmp-1", "_source": {
						"product_sku": "SKU-100",
						"title": "Device got hot",
						"failure_mode": "battery overheating",
						"created_at": "2026-08-18T10:00:00Z"
					}}
				]}
			}`))
		}))
		defer srv.Close()

		client := es.New(srv.URL, "", "complaints")
		complaints, err := client.RecentComplaints(context.Background(), "SKU-100", "battery overheating", 5)
		gt.NoError(t, err)
		gt.A(t, complaints).Length(2)

		gt.Equal(t, "cmp-2", string(complaints[0].ID))
		gt.Equal(t, "Burned my hand", complaints[0].Title)
		gt.True(t, complaints[0].InjuryMentioned)
		gt.Equal(t, 2026, complaints[0].CreatedAt.Year())
		gt.Equal(t, float64(5), capturedBody["size"])
	})

	t.Run("Empty cluster keys rejected", func(t *testing.T) {
		client := es.New("http://localhost:9200", "", "complaints")
		_, err := client.RecentComplaints(context.Background(), "", "battery overheating", 5)
		gt.Error(t, err)
	})

	t.Run("Malformed response is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		client := es.New(srv.URL, "", "complaints")
		_, err := client.RecentComplaints(context.Background(), "SKU-100", "battery overheating", 5)
		gt.Error(t, err)
	})
}
