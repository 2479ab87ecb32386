package model

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

// Case is a persisted investigation case, created only by the scan
// orchestrator and mutated only through defined actions. Cases are never
// physically deleted; resolved and dismissed are terminal with respect to
// rescans, so a recurring signal opens a new case.
type Case struct {
	ID              types.CaseID        `json:"id" firestore:"id"`
	Title           string              `json:"title" firestore:"title"`
	ProductSKU      string              `json:"productSku" firestore:"product_sku"`
	FailureMode     string              `json:"failureMode" firestore:"failure_mode"`
	SeverityTier    types.SeverityTier  `json:"severityTier" firestore:"severity_tier"`
	Status          types.CaseStatus    `json:"status" firestore:"status"`
	ConfidenceScore float64             `json:"confidenceScore" firestore:"confidence_score"`
	ComplaintCount  int                 `json:"complaintCount" firestore:"complaint_count"`
	InjuryCount     int                 `json:"injuryCount" firestore:"injury_count"`
	Regions         []string            `json:"regions" firestore:"regions"`
	Narrative       string              `json:"narrative" firestore:"narrative"`
	ExemplarIDs     []types.ComplaintID `json:"exemplarIds" firestore:"exemplar_ids"`
	Trend           []TrendPoint        `json:"trend" firestore:"trend"`
	DateRangeStart  time.Time           `json:"dateRangeStart" firestore:"date_range_start"`
	DateRangeEnd    time.Time           `json:"dateRangeEnd" firestore:"date_range_end"`
	CreatedAt       time.Time           `json:"createdAt" firestore:"created_at"`
	UpdatedAt       time.Time           `json:"updatedAt" firestore:"updated_at"`
	AuditLog        []AuditEntry        `json:"auditLog" firestore:"audit_log"`
}

// NewCase creates a case from a scored cluster that passed both gates.
// It records a single "created" audit entry carrying the triggering
// confidence score and threshold.
func NewCase(sc ScoredCluster, exemplarIDs []types.ComplaintID, narrative string, window ScanWindow, threshold float64) (*Case, error) {
	if err := sc.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid cluster candidate")
	}
	if !sc.Tier.IsValid() {
		return nil, goerr.New("invalid severity tier", goerr.V("tier", sc.Tier))
	}

	now := time.Now()
	c := &Case{
		ID:              types.NewCaseID(),
		Title:           formatCaseTitle(sc.ProductSKU, sc.FailureMode),
		ProductSKU:      sc.ProductSKU,
		FailureMode:     sc.FailureMode,
		SeverityTier:    sc.Tier,
		Status:          statusForTier(sc.Tier),
		ConfidenceScore: sc.ConfidenceScore,
		ComplaintCount:  sc.Count,
		InjuryCount:     sc.InjuryCount,
		Regions:         append([]string(nil), sc.Regions...),
		Narrative:       narrative,
		ExemplarIDs:     append([]types.ComplaintID(nil), exemplarIDs...),
		Trend:           append([]TrendPoint(nil), sc.Trend...),
		DateRangeStart:  window.Start,
		DateRangeEnd:    window.End,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	entry, err := NewAuditEntry(types.AuditActionCreated, types.ActorSystem, ScannerActorName,
		fmt.Sprintf("Auto-generated from cluster detection. Confidence %.3f exceeded threshold %.2f.", sc.ConfidenceScore, threshold))
	if err != nil {
		return nil, err
	}
	c.AuditLog = append(c.AuditLog, *entry)

	return c, nil
}

// IsLive reports whether the case participates in automatic matching
func (c *Case) IsLive() bool {
	return !c.Status.IsTerminal()
}

// ApplyRescan refreshes the case from freshly scored cluster metrics.
// Identity, createdAt, date range, and prior audit history are preserved;
// status is re-derived from the recomputed tier, which can overwrite a
// human-set status.
func (c *Case) ApplyRescan(sc ScoredCluster, exemplarIDs []types.ComplaintID, narrative string) error {
	if c.Status.IsTerminal() {
		return goerr.Wrap(ErrCaseTerminal, "cannot rescan a terminal case",
			goerr.V("caseID", c.ID),
			goerr.V("status", c.Status))
	}
	if err := sc.Validate(); err != nil {
		return goerr.Wrap(err, "invalid cluster candidate")
	}

	c.SeverityTier = sc.Tier
	c.Status = statusForTier(sc.Tier)
	c.ConfidenceScore = sc.ConfidenceScore
	c.ComplaintCount = sc.Count
	c.InjuryCount = sc.InjuryCount
	c.Regions = append([]string(nil), sc.Regions...)
	c.Narrative = narrative
	c.ExemplarIDs = append([]types.ComplaintID(nil), exemplarIDs...)
	c.Trend = append([]TrendPoint(nil), sc.Trend...)

	entry, err := NewAuditEntry(types.AuditActionRescanUpdate, types.ActorSystem, ScannerActorName,
		fmt.Sprintf("Rescan detected %d complaints (was previously flagged). Confidence: %.3f.", sc.Count, sc.ConfidenceScore))
	if err != nil {
		return err
	}
	c.appendAudit(*entry)

	return nil
}

// Escalate bumps the severity tier by one (capped at Critical) and derives
// the new status from the new tier. Valid from any non-terminal state.
func (c *Case) Escalate(actorID types.ActorID, actorName, reason string) error {
	if c.Status.IsTerminal() {
		return goerr.Wrap(ErrCaseTerminal, "cannot escalate a terminal case",
			goerr.V("caseID", c.ID),
			goerr.V("status", c.Status))
	}

	c.SeverityTier = c.SeverityTier.Next()
	if c.SeverityTier >= types.TierEscalate {
		c.Status = types.CaseStatusEscalated
	} else {
		c.Status = types.CaseStatusInvestigating
	}

	entry, err := NewAuditEntry(types.AuditActionEscalate, actorID, actorName, reason)
	if err != nil {
		return err
	}
	c.appendAudit(*entry)

	return nil
}

// Dismiss moves the case to the terminal dismissed state
func (c *Case) Dismiss(actorID types.ActorID, actorName, reason string) error {
	if c.Status.IsTerminal() {
		return goerr.Wrap(ErrCaseTerminal, "cannot dismiss a terminal case",
			goerr.V("caseID", c.ID),
			goerr.V("status", c.Status))
	}

	c.Status = types.CaseStatusDismissed

	entry, err := NewAuditEntry(types.AuditActionDismiss, actorID, actorName, reason)
	if err != nil {
		return err
	}
	c.appendAudit(*entry)

	return nil
}

// Resolve moves the case to the terminal resolved state
func (c *Case) Resolve(actorID types.ActorID, actorName, reason string) error {
	if c.Status.IsTerminal() {
		return goerr.Wrap(ErrCaseTerminal, "cannot resolve a terminal case",
			goerr.V("caseID", c.ID),
			goerr.V("status", c.Status))
	}

	c.Status = types.CaseStatusResolved

	entry, err := NewAuditEntry(types.AuditActionResolve, actorID, actorName, reason)
	if err != nil {
		return err
	}
	c.appendAudit(*entry)

	return nil
}

// Comment appends a comment-only audit entry without changing status or
// tier. Valid in any state, including terminal ones.
func (c *Case) Comment(actorID types.ActorID, actorName, reason string) error {
	if reason == "" {
		return goerr.New("comment reason is required")
	}

	entry, err := NewAuditEntry(types.AuditActionComment, actorID, actorName, reason)
	if err != nil {
		return err
	}
	c.appendAudit(*entry)

	return nil
}

// NarrativeExcerpt returns the leading part of the narrative for
// notification bodies. The cut never splits a multi-byte rune.
func (c *Case) NarrativeExcerpt(maxLen int) string {
	if len(c.Narrative) <= maxLen {
		return c.Narrative
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(c.Narrative[cut]) {
		cut--
	}
	return c.Narrative[:cut]
}

func (c *Case) appendAudit(entry AuditEntry) {
	c.AuditLog = append(c.AuditLog, entry)
	c.UpdatedAt = entry.Timestamp
}

// statusForTier derives the automatic status for a freshly scored cluster
func statusForTier(tier types.SeverityTier) types.CaseStatus {
	if tier >= types.TierEscalate {
		return types.CaseStatusEscalated
	}
	return types.CaseStatusOpen
}

// formatCaseTitle builds the case title from the cluster key, upcasing the
// first letter of the failure mode
func formatCaseTitle(productSKU, failureMode string) string {
	fm := failureMode
	if fm != "" {
		runes := []rune(fm)
		runes[0] = unicode.ToUpper(runes[0])
		fm = string(runes)
	}
	return fmt.Sprintf("%s — %s Cluster", productSKU, strings.TrimSpace(fm))
}
