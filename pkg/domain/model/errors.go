package model

import "github.com/m-mizutani/goerr/v2"

// Error tags for the scan failure taxonomy. Aggregation failures abort the
// whole run; persist failures are fatal for one cluster only; narrative and
// notification failures degrade without blocking the case mutation.
var (
	ErrTagAggregationFetch   = goerr.NewTag("aggregation_fetch")
	ErrTagNarrativeDegraded  = goerr.NewTag("narrative_degraded")
	ErrTagNotificationFailed = goerr.NewTag("notification_failed")
	ErrTagCasePersist        = goerr.NewTag("case_persist")
)

// Sentinel errors for domain operations
var (
	ErrCaseNotFound = goerr.New("case not found")
	ErrCaseTerminal = goerr.New("case is in a terminal state")
	ErrNoLiveCase   = goerr.New("no live case for cluster key")
)
