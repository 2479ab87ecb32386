package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/verdicttrace/verdicttrace/pkg/domain/interfaces"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	casesCollection         = "cases"
	notificationsCollection = "notifications"
	settingsCollection      = "settings"

	// Document IDs
	scanSettingsDocID = "scan"

	// Field names, matching the firestore struct tags on the models
	fieldProductSKU  = "product_sku"
	fieldFailureMode = "failure_mode"
	fieldStatus      = "status"
	fieldCreatedAt   = "created_at"
)

// Firestore implements Repository interface with Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on credential problems; an empty collection is fine
	_, err = client.Collection(casesCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{
		client: client,
	}, nil
}

// PutCase saves a case to Firestore, overwriting any prior version
func (f *Firestore) PutCase(ctx context.Context, c *model.Case) error {
	if c == nil {
		return goerr.New("case is nil")
	}
	if c.ID == "" {
		return goerr.New("case ID is empty")
	}

	_, err := f.client.Collection(casesCollection).Doc(c.ID.String()).Set(ctx, c)
	if err != nil {
		return goerr.Wrap(err, "failed to save case to firestore",
			goerr.T(model.ErrTagCasePersist),
			goerr.V("caseID", c.ID))
	}

	return nil
}

// GetCase retrieves a case by ID
func (f *Firestore) GetCase(ctx context.Context, id types.CaseID) (*model.Case, error) {
	if id == "" {
		return nil, goerr.New("case ID is empty")
	}

	doc, err := f.client.Collection(casesCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrCaseNotFound, "failed to get case",
				goerr.V("caseID", id))
		}
		return nil, goerr.Wrap(err, "failed to get case from firestore")
	}

	var c model.Case
	if err := doc.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode case")
	}

	return &c, nil
}

// FindLiveCase finds the non-terminal case matching the cluster key.
// Status exclusion is done client-side; terminal statuses are a short fixed
// set and Firestore not-in queries cannot be combined with the key filters
// without a composite index.
func (f *Firestore) FindLiveCase(ctx context.Context, productSKU, failureMode string) (*model.Case, error) {
	if productSKU == "" || failureMode == "" {
		return nil, goerr.New("product SKU and failure mode are required")
	}

	iter := f.client.Collection(casesCollection).
		Where(fieldProductSKU, "==", productSKU).
		Where(fieldFailureMode, "==", failureMode).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query cases from firestore")
		}

		var c model.Case
		if err := doc.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case")
		}
		if c.IsLive() {
			return &c, nil
		}
	}

	return nil, goerr.Wrap(model.ErrNoLiveCase, "no live case",
		goerr.V("productSKU", productSKU),
		goerr.V("failureMode", failureMode))
}

// ListCases lists cases, optionally filtered by status, newest first
func (f *Firestore) ListCases(ctx context.Context, statuses []types.CaseStatus, limit int) ([]*model.Case, error) {
	query := f.client.Collection(casesCollection).Query
	if len(statuses) > 0 {
		values := make([]interface{}, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, s.String())
		}
		query = query.Where(fieldStatus, "in", values)
	}

	iter := query.OrderBy(fieldCreatedAt, firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var cases []*model.Case
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list cases from firestore")
		}

		var c model.Case
		if err := doc.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case")
		}
		cases = append(cases, &c)

		if limit > 0 && len(cases) >= limit {
			break
		}
	}

	return cases, nil
}

// AddNotification appends an in-app notification
func (f *Firestore) AddNotification(ctx context.Context, n *model.Notification) error {
	if n == nil {
		return goerr.New("notification is nil")
	}
	if n.ID == "" {
		return goerr.New("notification ID is empty")
	}

	_, err := f.client.Collection(notificationsCollection).Doc(n.ID.String()).Set(ctx, n)
	if err != nil {
		return goerr.Wrap(err, "failed to save notification to firestore",
			goerr.V("notificationID", n.ID))
	}

	return nil
}

// ListNotifications lists notifications, newest first
func (f *Firestore) ListNotifications(ctx context.Context, limit int) ([]*model.Notification, error) {
	iter := f.client.Collection(notificationsCollection).
		OrderBy(fieldCreatedAt, firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var notifications []*model.Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list notifications from firestore")
		}

		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, goerr.Wrap(err, "failed to decode notification")
		}
		notifications = append(notifications, &n)

		if limit > 0 && len(notifications) >= limit {
			break
		}
	}

	return notifications, nil
}

// GetScanSettings returns the stored scan settings, or defaults when the
// settings document does not exist yet
func (f *Firestore) GetScanSettings(ctx context.Context) (model.ScanSettings, error) {
	doc, err := f.client.Collection(settingsCollection).Doc(scanSettingsDocID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.DefaultScanSettings(), nil
		}
		return model.ScanSettings{}, goerr.Wrap(err, "failed to get scan settings from firestore")
	}

	var s model.ScanSettings
	if err := doc.DataTo(&s); err != nil {
		return model.ScanSettings{}, goerr.Wrap(err, "failed to decode scan settings")
	}

	return s, nil
}

// PutScanSettings stores the scan settings
func (f *Firestore) PutScanSettings(ctx context.Context, s model.ScanSettings) error {
	if err := s.Validate(); err != nil {
		return goerr.Wrap(err, "invalid scan settings")
	}

	_, err := f.client.Collection(settingsCollection).Doc(scanSettingsDocID).Set(ctx, s)
	if err != nil {
		return goerr.Wrap(err, "failed to save scan settings to firestore")
	}

	return nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
