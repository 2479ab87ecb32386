package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/verdicttrace/verdicttrace/pkg/domain/interfaces"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu            sync.RWMutex
	cases         map[types.CaseID]*model.Case
	notifications []*model.Notification
	settings      *model.ScanSettings
}

// NewMemory creates a new memory repository
func NewMemory() interfaces.Repository {
	return &Memory{
		cases: make(map[types.CaseID]*model.Case),
	}
}

// PutCase saves a case to memory
func (m *Memory) PutCase(ctx context.Context, c *model.Case) error {
	if c == nil {
		return goerr.New("case is nil")
	}
	if c.ID == "" {
		return goerr.New("case ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cases[c.ID] = copyCase(c)
	return nil
}

// GetCase retrieves a case by ID
func (m *Memory) GetCase(ctx context.Context, id types.CaseID) (*model.Case, error) {
	if id == "" {
		return nil, goerr.New("case ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.cases[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrCaseNotFound, "no such case",
			goerr.V("caseID", id))
	}

	return copyCase(c), nil
}

// FindLiveCase finds the non-terminal case matching the cluster key
func (m *Memory) FindLiveCase(ctx context.Context, productSKU, failureMode string) (*model.Case, error) {
	if productSKU == "" || failureMode == "" {
		return nil, goerr.New("product SKU and failure mode are required")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.cases {
		if c.ProductSKU == productSKU && c.FailureMode == failureMode && c.IsLive() {
			return copyCase(c), nil
		}
	}

	return nil, goerr.Wrap(model.ErrNoLiveCase, "no live case",
		goerr.V("productSKU", productSKU),
		goerr.V("failureMode", failureMode))
}

// ListCases lists cases, optionally filtered by status, newest first
func (m *Memory) ListCases(ctx context.Context, statuses []types.CaseStatus, limit int) ([]*model.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statusSet := make(map[types.CaseStatus]bool, len(statuses))
	for _, s := range statuses {
		statusSet[s] = true
	}

	var cases []*model.Case
	for _, c := range m.cases {
		if len(statusSet) > 0 && !statusSet[c.Status] {
			continue
		}
		cases = append(cases, copyCase(c))
	}

	sort.Slice(cases, func(i, j int) bool {
		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})

	if limit > 0 && len(cases) > limit {
		cases = cases[:limit]
	}

	return cases, nil
}

// AddNotification appends an in-app notification
func (m *Memory) AddNotification(ctx context.Context, n *model.Notification) error {
	if n == nil {
		return goerr.New("notification is nil")
	}
	if n.ID == "" {
		return goerr.New("notification ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	nCopy := *n
	m.notifications = append(m.notifications, &nCopy)
	return nil
}

// ListNotifications lists notifications, newest first
func (m *Memory) ListNotifications(ctx context.Context, limit int) ([]*model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	notifications := make([]*model.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		nCopy := *n
		notifications = append(notifications, &nCopy)
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}

	return notifications, nil
}

// GetScanSettings returns the stored scan settings, or defaults when none
// have been saved
func (m *Memory) GetScanSettings(ctx context.Context) (model.ScanSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return model.DefaultScanSettings(), nil
	}
	return *m.settings, nil
}

// PutScanSettings stores the scan settings
func (m *Memory) PutScanSettings(ctx context.Context, s model.ScanSettings) error {
	if err := s.Validate(); err != nil {
		return goerr.Wrap(err, "invalid scan settings")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = &s
	return nil
}

// Close closes the repository (no-op for memory)
func (m *Memory) Close() error {
	return nil
}

// copyCase deep-copies a case so callers cannot mutate stored state
func copyCase(c *model.Case) *model.Case {
	cCopy := *c
	cCopy.Regions = append([]string(nil), c.Regions...)
	cCopy.ExemplarIDs = append([]types.ComplaintID(nil), c.ExemplarIDs...)
	cCopy.Trend = append([]model.TrendPoint(nil), c.Trend...)
	cCopy.AuditLog = append([]model.AuditEntry(nil), c.AuditLog...)
	return &cCopy
}
