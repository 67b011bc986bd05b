package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/taglia21/App-Builder-sub001/internal/cost"
	"github.com/taglia21/App-Builder-sub001/internal/engine"
	"github.com/taglia21/App-Builder-sub001/internal/github"
	"github.com/taglia21/App-Builder-sub001/internal/health"
	"github.com/taglia21/App-Builder-sub001/internal/metrics"
	"github.com/taglia21/App-Builder-sub001/internal/model"
	"github.com/taglia21/App-Builder-sub001/internal/provider"
	"github.com/taglia21/App-Builder-sub001/internal/secrets"
	"github.com/taglia21/App-Builder-sub001/internal/tracker"
)

// ErrNotFound is returned for project ids with no recorded pipeline.
var ErrNotFound = errors.New("project not found")

// Options configures which provider serves each half of the stack.
type Options struct {
	FrontendProvider string
	BackendProvider  string
}

func (o Options) withDefaults() Options {
	if o.FrontendProvider == "" {
		o.FrontendProvider = model.ProviderVercel
	}
	if o.BackendProvider == "" {
		o.BackendProvider = model.ProviderRender
	}
	return o
}

// Orchestrator runs the multi-stage deployment pipeline and keeps its
// state queryable. Stages run strictly in order; a failed stage aborts
// the stages after it.
type Orchestrator struct {
	opts     Options
	engine   *engine.Engine
	registry *provider.Registry
	repos    github.RepositoryHost
	secrets  *secrets.Manager
	health   *health.Suite
	cost     *cost.Estimator
	history  tracker.Store
	rollback *tracker.RollbackManager
	store    SummaryStore
	events   *Broadcaster
	validate *validator.Validate
	locks    *projectLocks
	logger   zerolog.Logger
}

func New(
	opts Options,
	eng *engine.Engine,
	registry *provider.Registry,
	repos github.RepositoryHost,
	history tracker.Store,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		opts:     opts.withDefaults(),
		engine:   eng,
		registry: registry,
		repos:    repos,
		secrets:  secrets.NewManager(logger),
		health:   health.NewSuite(),
		cost:     cost.NewEstimator(),
		history:  history,
		rollback: tracker.NewRollbackManager(history),
		store:    NewMemoryStore(),
		events:   NewBroadcaster(),
		validate: validator.New(),
		locks:    newProjectLocks(),
		logger:   logger.With().Str("component", "orchestrator").Logger(),
	}
}

// Events exposes the stage event stream.
func (o *Orchestrator) Events() *Broadcaster {
	return o.events
}

// SetHealthSuite swaps the verification suite, mainly for tests that need
// a custom HTTP client.
func (o *Orchestrator) SetHealthSuite(suite *health.Suite) {
	o.health = suite
}

// ShouldRun reports whether a stage participates in the pipeline for the
// given plan. Environment config and verification always run; the first
// three stages are gated by their plan toggles, and a deploy stage also
// needs its source path.
func ShouldRun(stage model.Stage, plan model.DeploymentPlan) bool {
	switch stage {
	case model.StageGitHubRepo:
		return plan.CreateRepo
	case model.StageFrontendDeploy:
		return plan.DeployFrontend && plan.FrontendPath != ""
	case model.StageBackendDeploy:
		return plan.DeployBackend && plan.BackendPath != ""
	default:
		return true
	}
}

// Begin validates the plan and registers a fresh in-progress summary.
func (o *Orchestrator) Begin(plan model.DeploymentPlan) (model.DeploymentSummary, error) {
	if err := o.validate.Struct(plan); err != nil {
		return model.DeploymentSummary{}, fmt.Errorf("invalid deployment plan: %w", err)
	}

	summary := model.DeploymentSummary{
		ProjectID:   plan.ProjectID,
		ProjectName: plan.ProjectName,
		Status:      model.StatusInProgress,
		StartedAt:   time.Now().UTC(),
	}
	o.store.Put(summary)
	return summary, nil
}

// Deploy runs the full pipeline for the plan. Runs for the same project
// id are serialized; the returned summary reflects the final state. The
// error is non-nil only when the plan itself is invalid.
func (o *Orchestrator) Deploy(ctx context.Context, plan model.DeploymentPlan) (model.DeploymentSummary, error) {
	lock := o.locks.lock(plan.ProjectID)
	defer lock.Unlock()

	if _, err := o.Begin(plan); err != nil {
		return model.DeploymentSummary{}, err
	}

	o.logger.Info().
		Str("project_id", plan.ProjectID).
		Str("environment", plan.Environment).
		Msg("starting deployment pipeline")

	failed := false
	for _, stage := range model.StageOrder {
		if !ShouldRun(stage, plan) {
			continue
		}
		result, err := o.RunStage(ctx, stage, plan)
		if err != nil {
			return model.DeploymentSummary{}, err
		}
		if result.Status == model.StatusFailed {
			o.logger.Error().
				Str("project_id", plan.ProjectID).
				Str("stage", string(stage)).
				Str("error", result.Error).
				Msg("stage failed, aborting pipeline")
			failed = true
			break
		}
	}

	return o.Finalize(plan.ProjectID, failed)
}

// RunStage executes one pipeline stage and records its result on the
// project summary. Stage failures are reported through the result status,
// not the error.
func (o *Orchestrator) RunStage(ctx context.Context, stage model.Stage, plan model.DeploymentPlan) (model.StageResult, error) {
	summary, ok := o.store.Get(plan.ProjectID)
	if !ok {
		return model.StageResult{}, fmt.Errorf("run stage %s: %w", stage, ErrNotFound)
	}

	result := model.StageResult{
		Stage:     stage,
		Status:    model.StatusInProgress,
		StartedAt: time.Now().UTC(),
	}
	o.events.publish(StageEvent{ProjectID: plan.ProjectID, Result: result})

	data, message, err := o.executeStage(ctx, stage, plan, &summary)

	completed := time.Now().UTC()
	result.CompletedAt = &completed
	result.Data = data
	result.Message = message
	if err != nil {
		result.Status = model.StatusFailed
		result.Error = err.Error()
	} else {
		result.Status = model.StatusSuccess
	}

	summary.Stages = append(summary.Stages, result)
	o.store.Put(summary)
	o.events.publish(StageEvent{ProjectID: plan.ProjectID, Result: result})
	metrics.ObserveStage(string(stage), result.Status == model.StatusSuccess, completed.Sub(result.StartedAt))
	return result, nil
}

// Finalize closes out the pipeline and returns the final summary.
func (o *Orchestrator) Finalize(projectID string, failed bool) (model.DeploymentSummary, error) {
	summary, ok := o.store.Get(projectID)
	if !ok {
		return model.DeploymentSummary{}, ErrNotFound
	}

	completed := time.Now().UTC()
	summary.CompletedAt = &completed
	if failed {
		summary.Status = model.StatusFailed
	} else {
		summary.Status = model.StatusSuccess
	}
	o.store.Put(summary)

	o.logger.Info().
		Str("project_id", projectID).
		Str("status", string(summary.Status)).
		Msg("pipeline finished")
	return summary, nil
}

// Status returns the current summary for a project.
func (o *Orchestrator) Status(projectID string) (model.DeploymentSummary, error) {
	summary, ok := o.store.Get(projectID)
	if !ok {
		return model.DeploymentSummary{}, ErrNotFound
	}
	return summary, nil
}

// List returns all known project summaries.
func (o *Orchestrator) List() []model.DeploymentSummary {
	return o.store.List()
}

// EstimateCost prices the plan per active provider.
func (o *Orchestrator) EstimateCost(plan model.DeploymentPlan) []model.CostEstimate {
	var estimates []model.CostEstimate
	if plan.DeployFrontend {
		estimates = append(estimates, o.cost.Estimate(model.DeploymentConfig{
			Provider:    o.opts.FrontendProvider,
			Environment: plan.Environment,
		}))
	}
	if plan.DeployBackend {
		estimates = append(estimates, o.cost.Estimate(model.DeploymentConfig{
			Provider:    o.opts.BackendProvider,
			Environment: plan.Environment,
		}))
	}
	return estimates
}

// Rollback reverts a project's provider deployments. toVersion, when set,
// must name a recorded successful deployment. History is never rewritten;
// the rollback is recorded as a new audit event and the summary status
// becomes rolled_back.
func (o *Orchestrator) Rollback(ctx context.Context, projectID, toVersion string) (model.DeploymentSummary, error) {
	lock := o.locks.lock(projectID)
	defer lock.Unlock()

	summary, ok := o.store.Get(projectID)
	if !ok {
		return model.DeploymentSummary{}, fmt.Errorf("rollback %s: %w", projectID, ErrNotFound)
	}

	if toVersion != "" {
		allowed, err := o.rollback.CanRollback(ctx, toVersion)
		if err != nil {
			return summary, fmt.Errorf("check rollback target %s: %w", toVersion, err)
		}
		if !allowed {
			return summary, fmt.Errorf("deployment %s is not a valid rollback target", toVersion)
		}
	}

	targets := []struct {
		providerName string
		deploymentID string
	}{
		{o.opts.FrontendProvider, summary.FrontendDeploymentID},
		{o.opts.BackendProvider, summary.BackendDeploymentID},
	}

	rolledBack := 0
	for _, t := range targets {
		if t.deploymentID == "" {
			continue
		}
		p, ok := o.registry.New(t.providerName)
		if !ok {
			continue
		}
		done, err := p.Rollback(ctx, t.deploymentID, toVersion)
		if err != nil {
			return summary, fmt.Errorf("rollback %s on %s: %w", t.deploymentID, t.providerName, err)
		}
		if done {
			if err := o.rollback.RecordRollback(ctx, t.deploymentID, toVersion); err != nil {
				o.logger.Error().Err(err).Msg("record rollback audit entry")
			}
			rolledBack++
		}
	}

	// A summary with no recorded deployment ids rolls back vacuously:
	// there is nothing to undo, but the project is still marked.
	summary.Status = model.StatusRolledBack
	o.store.Put(summary)
	metrics.ObserveRollback()

	o.logger.Info().
		Str("project_id", projectID).
		Int("deployments", rolledBack).
		Msg("rollback complete")
	return summary, nil
}
