package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/verdicttrace/verdicttrace/pkg/domain/interfaces"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
	"github.com/verdicttrace/verdicttrace/pkg/service/llm"
	"github.com/verdicttrace/verdicttrace/pkg/utils/apperr"
	"github.com/verdicttrace/verdicttrace/pkg/utils/async"
	"github.com/verdicttrace/verdicttrace/pkg/utils/keylock"
)

const (
	// Scan window and exemplar sample size
	scanWindowDays = 7
	exemplarLimit  = 5
)

// ScanUseCase is the detection entry point. It pulls cluster candidates
// from the search collaborator, applies the minimum-volume and confidence
// gates, scores and classifies each cluster, and creates or refreshes the
// matching investigation case. This is the only code path that creates
// cases.
type ScanUseCase struct {
	repo       interfaces.Repository
	search     interfaces.SearchClient
	narrative  interfaces.NarrativeGenerator
	email      interfaces.EmailClient
	recipients []model.Recipient
	locks      *keylock.KeyLock
}

// NewScan creates a new ScanUseCase instance. narrative and email may be
// nil; the scan then uses the templated fallback narrative and skips email
// alerts.
func NewScan(repo interfaces.Repository, search interfaces.SearchClient, narrative interfaces.NarrativeGenerator, email interfaces.EmailClient, recipients []model.Recipient) *ScanUseCase {
	return &ScanUseCase{
		repo:       repo,
		search:     search,
		narrative:  narrative,
		email:      email,
		recipients: recipients,
		locks:      keylock.New(),
	}
}

// RunScan executes one full detection scan and returns its summary.
// An aggregation failure aborts the whole run; a persist failure is fatal
// for that cluster only. No call is retried within a run; the next
// scheduled scan is naturally idempotent.
func (uc *ScanUseCase) RunScan(ctx context.Context) (*model.ScanSummary, error) {
	logger := ctxlog.From(ctx)

	settings, err := uc.repo.GetScanSettings(ctx)
	if err != nil {
		logger.Warn("Failed to load scan settings, using defaults", "error", err)
		settings = model.DefaultScanSettings()
	}

	now := time.Now()
	window := model.ScanWindow{
		Start: now.AddDate(0, 0, -scanWindowDays),
		End:   now,
	}

	logger.Info("Starting cluster detection scan",
		"confidenceThreshold", settings.ConfidenceThreshold,
		"clusterMinDocs", settings.ClusterMinDocs,
	)

	candidates, err := uc.search.ClusterCandidates(ctx, window)
	if err != nil {
		return nil, goerr.Wrap(err, "aggregation fetch failed, aborting scan")
	}

	summary := &model.ScanSummary{}

	for _, candidate := range candidates {
		// Below the minimum-volume gate: no case action, no outcome row
		if candidate.Count < settings.ClusterMinDocs {
			continue
		}
		summary.ClustersEvaluated++

		scored := model.Score(candidate)

		logger.Info("Cluster detected",
			"productSKU", scored.ProductSKU,
			"failureMode", scored.FailureMode,
			"complaints", scored.Count,
			"injuries", scored.InjuryCount,
			"regions", scored.GeoSpread(),
			"velocity", scored.Velocity,
			"confidence", scored.ConfidenceScore,
			"tier", scored.Tier.String(),
		)

		if scored.ConfidenceScore < settings.ConfidenceThreshold {
			summary.Outcomes = append(summary.Outcomes, outcomeFor(scored, model.ClusterActionSkipped,
				fmt.Sprintf("confidence %.3f below threshold %.2f", scored.ConfidenceScore, settings.ConfidenceThreshold)))
			continue
		}
		summary.ClustersAboveGate++

		exemplarIDs, excerpts := uc.fetchExemplars(ctx, scored)
		narrative := uc.generateNarrative(ctx, scored, excerpts)

		created, err := uc.upsertCase(ctx, scored, exemplarIDs, narrative, window, settings.ConfidenceThreshold)
		if err != nil {
			logger.Error("Failed to persist case, continuing with next cluster",
				"productSKU", scored.ProductSKU,
				"failureMode", scored.FailureMode,
				"error", err,
			)
			summary.Outcomes = append(summary.Outcomes, outcomeFor(scored, model.ClusterActionFailed, err.Error()))
			continue
		}

		if created {
			summary.CasesCreated++
			summary.Outcomes = append(summary.Outcomes, outcomeFor(scored, model.ClusterActionCreated, ""))
		} else {
			summary.CasesUpdated++
			summary.Outcomes = append(summary.Outcomes, outcomeFor(scored, model.ClusterActionUpdated, ""))
		}
	}

	logger.Info("Scan complete",
		"clustersEvaluated", summary.ClustersEvaluated,
		"clustersAboveGate", summary.ClustersAboveGate,
		"casesCreated", summary.CasesCreated,
		"casesUpdated", summary.CasesUpdated,
	)

	return summary, nil
}

// fetchExemplars samples the most recent complaints for the cluster keys.
// A failed sample degrades to an empty exemplar set; the case is still
// actionable without it.
func (uc *ScanUseCase) fetchExemplars(ctx context.Context, scored model.ScoredCluster) ([]types.ComplaintID, []model.ComplaintExcerpt) {
	complaints, err := uc.search.RecentComplaints(ctx, scored.ProductSKU, scored.FailureMode, exemplarLimit)
	if err != nil {
		ctxlog.From(ctx).Warn("Exemplar sampling failed, continuing without exemplars",
			"productSKU", scored.ProductSKU,
			"failureMode", scored.FailureMode,
			"error", err,
		)
		return nil, nil
	}

	ids := make([]types.ComplaintID, 0, len(complaints))
	excerpts := make([]model.ComplaintExcerpt, 0, len(complaints))
	for i := range complaints {
		ids = append(ids, complaints[i].ID)
		excerpts = append(excerpts, complaints[i].Excerpt())
	}
	return ids, excerpts
}

// generateNarrative asks the narrative generator for a summary, degrading
// to the deterministic templated narrative on any failure
func (uc *ScanUseCase) generateNarrative(ctx context.Context, scored model.ScoredCluster, excerpts []model.ComplaintExcerpt) string {
	if uc.narrative == nil {
		return llm.Fallback(scored)
	}

	narrative, err := uc.narrative.Generate(ctx, scored, excerpts)
	if err != nil {
		ctxlog.From(ctx).Warn("Narrative generation degraded to template",
			"productSKU", scored.ProductSKU,
			"failureMode", scored.FailureMode,
			"error", goerr.Wrap(err, "narrative generation failed", goerr.T(model.ErrTagNarrativeDegraded)),
		)
		return llm.Fallback(scored)
	}
	return narrative
}

// upsertCase creates or refreshes the case for the cluster key. The
// resolve-then-write sequence is serialized per key so concurrent workers
// cannot both create a case for the same pair. Returns true when a new
// case was created.
func (uc *ScanUseCase) upsertCase(ctx context.Context, scored model.ScoredCluster, exemplarIDs []types.ComplaintID, narrative string, window model.ScanWindow, threshold float64) (bool, error) {
	unlock := uc.locks.Lock(scored.ProductSKU + "\x00" + scored.FailureMode)
	defer unlock()

	existing, err := uc.repo.FindLiveCase(ctx, scored.ProductSKU, scored.FailureMode)
	switch {
	case err == nil:
		if err := existing.ApplyRescan(scored, exemplarIDs, narrative); err != nil {
			return false, err
		}
		if err := uc.repo.PutCase(ctx, existing); err != nil {
			return false, goerr.Wrap(err, "failed to persist rescan update",
				goerr.T(model.ErrTagCasePersist),
				goerr.V("caseID", existing.ID))
		}
		return false, nil

	case !errors.Is(err, model.ErrNoLiveCase):
		return false, goerr.Wrap(err, "live case lookup failed",
			goerr.T(model.ErrTagCasePersist))

	default:
		newCase, err := model.NewCase(scored, exemplarIDs, narrative, window, threshold)
		if err != nil {
			return false, err
		}
		if err := uc.repo.PutCase(ctx, newCase); err != nil {
			return false, goerr.Wrap(err, "failed to persist new case",
				goerr.T(model.ErrTagCasePersist),
				goerr.V("caseID", newCase.ID))
		}

		// Notification happens exactly once, only on creation
		uc.notifyNewCase(ctx, newCase, scored)
		return true, nil
	}
}

// notifyNewCase records the in-app notification and fans out alert emails.
// Failures are logged and never roll back the case mutation.
func (uc *ScanUseCase) notifyNewCase(ctx context.Context, c *model.Case, scored model.ScoredCluster) {
	notification, err := model.NewNotification(c.ID, model.NotificationTypeEscalation,
		fmt.Sprintf("New case: %s — %s", c.ProductSKU, c.FailureMode),
		fmt.Sprintf("Cluster detected with %d complaints, %d injuries. Tier: %s.",
			scored.Count, scored.InjuryCount, scored.Tier))
	if err == nil {
		err = uc.repo.AddNotification(ctx, notification)
	}
	if err != nil {
		apperr.Handle(ctx, goerr.Wrap(err, "failed to record in-app notification",
			goerr.T(model.ErrTagNotificationFailed),
			goerr.V("caseID", c.ID)))
	}

	sendCaseAlerts(ctx, uc.email, uc.recipients, c)
}

// sendCaseAlerts dispatches alert emails to every recipient without
// blocking the scan path
func sendCaseAlerts(ctx context.Context, email interfaces.EmailClient, recipients []model.Recipient, c *model.Case) {
	if email == nil || len(recipients) == 0 {
		return
	}

	alertCase := *c
	async.Dispatch(ctx, func(ctx context.Context) error {
		for _, recipient := range recipients {
			if err := email.SendCaseAlert(ctx, recipient, &alertCase); err != nil {
				apperr.Handle(ctx, goerr.Wrap(err, "failed to send case alert",
					goerr.T(model.ErrTagNotificationFailed),
					goerr.V("caseID", alertCase.ID),
					goerr.V("recipient", recipient.Email)))
			}
		}
		return nil
	})
}

func outcomeFor(scored model.ScoredCluster, action model.ClusterAction, reason string) model.ClusterOutcome {
	return model.ClusterOutcome{
		ProductSKU:      scored.ProductSKU,
		FailureMode:     scored.FailureMode,
		Count:           scored.Count,
		InjuryCount:     scored.InjuryCount,
		ConfidenceScore: scored.ConfidenceScore,
		Tier:            scored.Tier,
		Action:          action,
		Reason:          reason,
	}
}
