package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/verdicttrace/verdicttrace/pkg/domain/interfaces"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
	"github.com/verdicttrace/verdicttrace/pkg/utils/apperr"
)

// ActionUseCase applies human actions to existing cases. It never creates
// cases; the scan path is the only creation path.
type ActionUseCase struct {
	repo       interfaces.Repository
	email      interfaces.EmailClient
	recipients []model.Recipient
}

// NewAction creates a new ActionUseCase instance
func NewAction(repo interfaces.Repository, email interfaces.EmailClient, recipients []model.Recipient) *ActionUseCase {
	return &ActionUseCase{
		repo:       repo,
		email:      email,
		recipients: recipients,
	}
}

// Escalate bumps the case's severity tier, re-derives its status, and
// notifies recipients. Rejected for terminal cases.
func (uc *ActionUseCase) Escalate(ctx context.Context, caseID types.CaseID, actorID types.ActorID, actorName, reason string) (*model.Case, error) {
	c, err := uc.repo.GetCase(ctx, caseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get case")
	}

	if err := c.Escalate(actorID, actorName, reason); err != nil {
		return nil, err
	}

	if err := uc.repo.PutCase(ctx, c); err != nil {
		return nil, goerr.Wrap(err, "failed to persist escalation",
			goerr.T(model.ErrTagCasePersist),
			goerr.V("caseID", caseID))
	}

	uc.notifyEscalation(ctx, c, reason)

	return c, nil
}

// Dismiss moves the case to the terminal dismissed state
func (uc *ActionUseCase) Dismiss(ctx context.Context, caseID types.CaseID, actorID types.ActorID, actorName, reason string) (*model.Case, error) {
	return uc.applyTransition(ctx, caseID, func(c *model.Case) error {
		return c.Dismiss(actorID, actorName, reason)
	})
}

// Resolve moves the case to the terminal resolved state
func (uc *ActionUseCase) Resolve(ctx context.Context, caseID types.CaseID, actorID types.ActorID, actorName, reason string) (*model.Case, error) {
	return uc.applyTransition(ctx, caseID, func(c *model.Case) error {
		return c.Resolve(actorID, actorName, reason)
	})
}

// Comment appends a comment-only audit entry. Valid in any state,
// including terminal ones.
func (uc *ActionUseCase) Comment(ctx context.Context, caseID types.CaseID, actorID types.ActorID, actorName, reason string) (*model.Case, error) {
	return uc.applyTransition(ctx, caseID, func(c *model.Case) error {
		return c.Comment(actorID, actorName, reason)
	})
}

// applyTransition loads the case, applies the mutation, and persists it
func (uc *ActionUseCase) applyTransition(ctx context.Context, caseID types.CaseID, mutate func(*model.Case) error) (*model.Case, error) {
	c, err := uc.repo.GetCase(ctx, caseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get case")
	}

	if err := mutate(c); err != nil {
		return nil, err
	}

	if err := uc.repo.PutCase(ctx, c); err != nil {
		return nil, goerr.Wrap(err, "failed to persist case action",
			goerr.T(model.ErrTagCasePersist),
			goerr.V("caseID", caseID))
	}

	return c, nil
}

// notifyEscalation records the in-app notification and fans out alert
// emails. Failures are logged; the escalation already committed.
func (uc *ActionUseCase) notifyEscalation(ctx context.Context, c *model.Case, reason string) {
	notification, err := model.NewNotification(c.ID, model.NotificationTypeEscalation,
		fmt.Sprintf("Case escalated to %s", c.SeverityTier),
		fmt.Sprintf("Case %s was escalated to %s. Reason: %s", c.ID, c.SeverityTier, reason))
	if err == nil {
		err = uc.repo.AddNotification(ctx, notification)
	}
	if err != nil {
		apperr.Handle(ctx, goerr.Wrap(err, "failed to record escalation notification",
			goerr.T(model.ErrTagNotificationFailed),
			goerr.V("caseID", c.ID)))
	}

	sendCaseAlerts(ctx, uc.email, uc.recipients, c)
}
