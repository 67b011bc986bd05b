package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/taglia21/App-Builder-sub001/internal/model"
)

// ErrNotFound is returned when no deployment record exists for an id.
var ErrNotFound = errors.New("deployment not found")

// RollbackEvent is one audit entry. Rollback is an event, not a state
// transition: prior deployment records are never mutated.
type RollbackEvent struct {
	ID         string    `json:"id" db:"id"`
	FromID     string    `json:"from_id" db:"from_id"`
	ToID       string    `json:"to_id" db:"to_id"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// Store is the append-only deployment history. GetDeployment returns
// ErrNotFound for unknown ids.
type Store interface {
	RecordDeployment(ctx context.Context, result model.DeploymentResult) error
	GetDeployment(ctx context.Context, deploymentID string) (*model.DeploymentResult, error)
	ListDeployments(ctx context.Context) ([]model.DeploymentResult, error)

	RecordRollback(ctx context.Context, event RollbackEvent) error
	ListRollbacks(ctx context.Context) ([]RollbackEvent, error)

	Migrate(ctx context.Context) error
	Close() error
}

// RollbackManager validates rollback targets against recorded history.
type RollbackManager struct {
	store Store
}

func NewRollbackManager(store Store) *RollbackManager {
	return &RollbackManager{store: store}
}

// CanRollback reports whether deploymentID is a valid rollback target:
// a record must exist and must have succeeded. Unknown and failed targets
// are rejected before any provider call.
func (m *RollbackManager) CanRollback(ctx context.Context, deploymentID string) (bool, error) {
	record, err := m.store.GetDeployment(ctx, deploymentID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return record.Success, nil
}

// RecordRollback appends an audit entry for a completed rollback.
func (m *RollbackManager) RecordRollback(ctx context.Context, fromID, toID string) error {
	return m.store.RecordRollback(ctx, RollbackEvent{
		FromID:     fromID,
		ToID:       toID,
		RecordedAt: time.Now().UTC(),
	})
}
