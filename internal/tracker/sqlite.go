package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/taglia21/App-Builder-sub001/internal/model"
	"github.com/taglia21/App-Builder-sub001/internal/platform"
)

// SQLiteStore is the default local history store.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSQLiteStore(path string, logger zerolog.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode for concurrent readers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger.With().Str("store", "sqlite").Logger()}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS deployments (
		deployment_id TEXT PRIMARY KEY,
		success INTEGER NOT NULL,
		provider TEXT NOT NULL,
		environment TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		frontend_url TEXT,
		backend_url TEXT,
		database_url TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		logs TEXT,
		error_message TEXT,
		rollback_id TEXT
	);

	CREATE TABLE IF NOT EXISTS rollbacks (
		id TEXT PRIMARY KEY,
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordDeployment(ctx context.Context, result model.DeploymentResult) error {
	logs, err := json.Marshal(result.Logs)
	if err != nil {
		return fmt.Errorf("marshal logs: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deployments (deployment_id, success, provider, environment, timestamp,
		 frontend_url, backend_url, database_url, duration_ms, logs, error_message, rollback_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.DeploymentID, result.Success, result.Provider, result.Environment,
		result.Timestamp.UTC().Format(time.RFC3339Nano),
		result.FrontendURL, result.BackendURL, result.DatabaseURL,
		result.Duration.Milliseconds(), string(logs), result.ErrorMessage, result.RollbackID,
	)
	if err != nil {
		return fmt.Errorf("insert deployment %s: %w", result.DeploymentID, err)
	}

	s.logger.Info().Str("deployment_id", result.DeploymentID).Msg("recorded deployment")
	return nil
}

const deploymentColumns = `deployment_id, success, provider, environment, timestamp,
	frontend_url, backend_url, database_url, duration_ms, logs, error_message, rollback_id`

func scanDeployment(row interface{ Scan(dest ...any) error }) (model.DeploymentResult, error) {
	var (
		r          model.DeploymentResult
		timestamp  string
		durationMS int64
		logs       sql.NullString
	)
	err := row.Scan(&r.DeploymentID, &r.Success, &r.Provider, &r.Environment, &timestamp,
		&r.FrontendURL, &r.BackendURL, &r.DatabaseURL, &durationMS, &logs, &r.ErrorMessage, &r.RollbackID)
	if err != nil {
		return r, err
	}

	if t, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
		r.Timestamp = t
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	if logs.Valid && logs.String != "" {
		_ = json.Unmarshal([]byte(logs.String), &r.Logs)
	}
	return r, nil
}

func (s *SQLiteStore) GetDeployment(ctx context.Context, deploymentID string) (*model.DeploymentResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+deploymentColumns+` FROM deployments WHERE deployment_id = ?`, deploymentID)

	r, err := scanDeployment(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get deployment %s: %w", deploymentID, err)
	}
	return &r, nil
}

func (s *SQLiteStore) ListDeployments(ctx context.Context) ([]model.DeploymentResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+deploymentColumns+` FROM deployments ORDER BY timestamp`)
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	var results []model.DeploymentResult
	for rows.Next() {
		r, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployments: %w", err)
	}
	return results, nil
}

func (s *SQLiteStore) RecordRollback(ctx context.Context, event RollbackEvent) error {
	if event.ID == "" {
		event.ID = platform.NewID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rollbacks (id, from_id, to_id, recorded_at) VALUES (?, ?, ?, ?)`,
		event.ID, event.FromID, event.ToID, event.RecordedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert rollback %s -> %s: %w", event.FromID, event.ToID, err)
	}

	s.logger.Info().Str("from", event.FromID).Str("to", event.ToID).Msg("recorded rollback")
	return nil
}

func (s *SQLiteStore) ListRollbacks(ctx context.Context) ([]RollbackEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_id, to_id, recorded_at FROM rollbacks ORDER BY recorded_at`)
	if err != nil {
		return nil, fmt.Errorf("list rollbacks: %w", err)
	}
	defer rows.Close()

	var events []RollbackEvent
	for rows.Next() {
		var (
			e          RollbackEvent
			recordedAt string
		)
		if err := rows.Scan(&e.ID, &e.FromID, &e.ToID, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan rollback: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			e.RecordedAt = t
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rollbacks: %w", err)
	}
	return events, nil
}
