package interfaces

import (
	"context"

	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

// Repository defines the interface for case-store persistence
type Repository interface {
	// Case operations
	PutCase(ctx context.Context, c *model.Case) error
	GetCase(ctx context.Context, id types.CaseID) (*model.Case, error)
	// FindLiveCase returns the case matching (productSKU, failureMode) whose
	// status is neither resolved nor dismissed, or model.ErrNoLiveCase.
	FindLiveCase(ctx context.Context, productSKU, failureMode string) (*model.Case, error)
	ListCases(ctx context.Context, statuses []types.CaseStatus, limit int) ([]*model.Case, error)

	// In-app notification operations
	AddNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, limit int) ([]*model.Notification, error)

	// Mutable scan settings, read at the start of each scan
	GetScanSettings(ctx context.Context) (model.ScanSettings, error)
	PutScanSettings(ctx context.Context, s model.ScanSettings) error

	// Close closes the repository connection
	Close() error
}
