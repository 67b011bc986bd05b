package tracker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/taglia21/App-Builder-sub001/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deployments.db")
	store, err := NewSQLiteStore(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testResult(id string, success bool) model.DeploymentResult {
	return model.DeploymentResult{
		Success:      success,
		DeploymentID: id,
		Timestamp:    time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Provider:     model.ProviderVercel,
		Environment:  model.EnvProduction,
		FrontendURL:  "https://demo.vercel.app",
		Duration:     42 * time.Second,
		Logs:         []string{"Building...", "Done."},
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := testResult("dpl_vercel_abc123", true)
	require.NoError(t, store.RecordDeployment(ctx, want))

	got, err := store.GetDeployment(ctx, want.DeploymentID)
	require.NoError(t, err)
	require.Equal(t, want.DeploymentID, got.DeploymentID)
	require.True(t, got.Success)
	require.Equal(t, want.Provider, got.Provider)
	require.Equal(t, want.FrontendURL, got.FrontendURL)
	require.Equal(t, want.Duration, got.Duration)
	require.Equal(t, want.Logs, got.Logs)
	require.True(t, want.Timestamp.Equal(got.Timestamp))
}

func TestSQLiteStoreNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetDeployment(context.Background(), "dpl_missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreListOrderedByTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := testResult("dpl_old", true)
	older.Timestamp = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := testResult("dpl_new", false)
	newer.Timestamp = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordDeployment(ctx, newer))
	require.NoError(t, store.RecordDeployment(ctx, older))

	results, err := store.ListDeployments(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "dpl_old", results[0].DeploymentID)
	require.Equal(t, "dpl_new", results[1].DeploymentID)
}

func TestCanRollback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	manager := NewRollbackManager(store)

	require.NoError(t, store.RecordDeployment(ctx, testResult("dpl_good", true)))
	require.NoError(t, store.RecordDeployment(ctx, testResult("dpl_bad", false)))

	ok, err := manager.CanRollback(ctx, "dpl_good")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = manager.CanRollback(ctx, "dpl_bad")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = manager.CanRollback(ctx, "dpl_unknown")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRollbackAuditDoesNotMutateHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	manager := NewRollbackManager(store)

	current := testResult("dpl_current", true)
	previous := testResult("dpl_previous", true)
	require.NoError(t, store.RecordDeployment(ctx, current))
	require.NoError(t, store.RecordDeployment(ctx, previous))

	require.NoError(t, manager.RecordRollback(ctx, "dpl_current", "dpl_previous"))
	require.NoError(t, manager.RecordRollback(ctx, "dpl_current", "dpl_previous"))

	events, err := store.ListRollbacks(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "dpl_current", events[0].FromID)
	require.Equal(t, "dpl_previous", events[0].ToID)
	require.NotEmpty(t, events[0].ID)

	// The rolled-back deployment record itself is untouched.
	got, err := store.GetDeployment(ctx, "dpl_current")
	require.NoError(t, err)
	require.True(t, got.Success)
	require.Empty(t, got.RollbackID)
}
