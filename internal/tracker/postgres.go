package tracker

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/taglia21/App-Builder-sub001/internal/model"
	"github.com/taglia21/App-Builder-sub001/internal/platform"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore keeps deployment history in a shared database, for
// installs where several workers record into the same history.
type PostgresStore struct {
	pool        *pgxpool.Pool
	databaseURL string
	logger      zerolog.Logger
}

func NewPostgresStore(ctx context.Context, databaseURL string, logger zerolog.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse tracker db config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create tracker db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping tracker db: %w", err)
	}

	return &PostgresStore{
		pool:        pool,
		databaseURL: databaseURL,
		logger:      logger.With().Str("store", "postgres").Logger(),
	}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Pool exposes the underlying connection pool for instrumentation.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	db, err := sql.Open("pgx", s.databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecordDeployment(ctx context.Context, result model.DeploymentResult) error {
	logs, err := json.Marshal(result.Logs)
	if err != nil {
		return fmt.Errorf("marshal logs: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO deployments (deployment_id, success, provider, environment, timestamp,
		 frontend_url, backend_url, database_url, duration_ms, logs, error_message, rollback_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		result.DeploymentID, result.Success, result.Provider, result.Environment,
		result.Timestamp.UTC(),
		result.FrontendURL, result.BackendURL, result.DatabaseURL,
		result.Duration.Milliseconds(), logs, result.ErrorMessage, result.RollbackID,
	)
	if err != nil {
		return fmt.Errorf("insert deployment %s: %w", result.DeploymentID, err)
	}

	s.logger.Info().Str("deployment_id", result.DeploymentID).Msg("recorded deployment")
	return nil
}

func (s *PostgresStore) GetDeployment(ctx context.Context, deploymentID string) (*model.DeploymentResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT deployment_id, success, provider, environment, timestamp,
		 frontend_url, backend_url, database_url, duration_ms, logs, error_message, rollback_id
		 FROM deployments WHERE deployment_id = $1`, deploymentID)

	var (
		r          model.DeploymentResult
		durationMS int64
		logs       []byte
	)
	err := row.Scan(&r.DeploymentID, &r.Success, &r.Provider, &r.Environment, &r.Timestamp,
		&r.FrontendURL, &r.BackendURL, &r.DatabaseURL, &durationMS, &logs, &r.ErrorMessage, &r.RollbackID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get deployment %s: %w", deploymentID, err)
	}

	r.Duration = time.Duration(durationMS) * time.Millisecond
	if len(logs) > 0 {
		_ = json.Unmarshal(logs, &r.Logs)
	}
	return &r, nil
}

func (s *PostgresStore) ListDeployments(ctx context.Context) ([]model.DeploymentResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT deployment_id, success, provider, environment, timestamp,
		 frontend_url, backend_url, database_url, duration_ms, logs, error_message, rollback_id
		 FROM deployments ORDER BY timestamp`)
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	var results []model.DeploymentResult
	for rows.Next() {
		var (
			r          model.DeploymentResult
			durationMS int64
			logs       []byte
		)
		err := rows.Scan(&r.DeploymentID, &r.Success, &r.Provider, &r.Environment, &r.Timestamp,
			&r.FrontendURL, &r.BackendURL, &r.DatabaseURL, &durationMS, &logs, &r.ErrorMessage, &r.RollbackID)
		if err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		if len(logs) > 0 {
			_ = json.Unmarshal(logs, &r.Logs)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployments: %w", err)
	}
	return results, nil
}

func (s *PostgresStore) RecordRollback(ctx context.Context, event RollbackEvent) error {
	if event.ID == "" {
		event.ID = platform.NewID()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO rollbacks (id, from_id, to_id, recorded_at) VALUES ($1, $2, $3, $4)`,
		event.ID, event.FromID, event.ToID, event.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert rollback %s -> %s: %w", event.FromID, event.ToID, err)
	}

	s.logger.Info().Str("from", event.FromID).Str("to", event.ToID).Msg("recorded rollback")
	return nil
}

func (s *PostgresStore) ListRollbacks(ctx context.Context) ([]RollbackEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, from_id, to_id, recorded_at FROM rollbacks ORDER BY recorded_at`)
	if err != nil {
		return nil, fmt.Errorf("list rollbacks: %w", err)
	}
	defer rows.Close()

	var events []RollbackEvent
	for rows.Next() {
		var e RollbackEvent
		if err := rows.Scan(&e.ID, &e.FromID, &e.ToID, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan rollback: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rollbacks: %w", err)
	}
	return events, nil
}
