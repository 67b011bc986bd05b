package activity

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"

	"github.com/taglia21/App-Builder-sub001/internal/model"
	"github.com/taglia21/App-Builder-sub001/internal/orchestrator"
)

// Deployment contains the pipeline activities. Stage sequencing lives in
// the workflow; each activity runs exactly one orchestrator operation.
type Deployment struct {
	orch *orchestrator.Orchestrator
}

// NewDeployment creates a new Deployment activity struct.
func NewDeployment(orch *orchestrator.Orchestrator) *Deployment {
	return &Deployment{orch: orch}
}

// StageParams holds parameters for the RunStage activity.
type StageParams struct {
	Stage model.Stage          `json:"stage"`
	Plan  model.DeploymentPlan `json:"plan"`
}

// FinalizeParams holds parameters for the FinalizePipeline activity.
type FinalizeParams struct {
	ProjectID string `json:"project_id"`
	Failed    bool   `json:"failed"`
}

// RollbackParams holds parameters for the RollbackDeployment activity.
type RollbackParams struct {
	ProjectID string `json:"project_id"`
	ToVersion string `json:"to_version"`
}

// BeginPipeline validates the plan and registers the in-progress summary.
// An invalid plan is a caller mistake and never retried.
func (a *Deployment) BeginPipeline(ctx context.Context, plan model.DeploymentPlan) error {
	if _, err := a.orch.Begin(plan); err != nil {
		return temporal.NewNonRetryableApplicationError("invalid deployment plan", "INVALID_PLAN", err)
	}
	return nil
}

// RunStage executes a single pipeline stage. Stage failures are carried in
// the result status; the returned error is reserved for infrastructure
// problems.
func (a *Deployment) RunStage(ctx context.Context, params StageParams) (model.StageResult, error) {
	result, err := a.orch.RunStage(ctx, params.Stage, params.Plan)
	if errors.Is(err, orchestrator.ErrNotFound) {
		return model.StageResult{}, temporal.NewNonRetryableApplicationError("pipeline not started", "NOT_FOUND", err)
	}
	return result, err
}

// FinalizePipeline closes out the run and returns the final summary.
func (a *Deployment) FinalizePipeline(ctx context.Context, params FinalizeParams) (model.DeploymentSummary, error) {
	return a.orch.Finalize(params.ProjectID, params.Failed)
}

// RollbackDeployment reverts a project's deployments.
func (a *Deployment) RollbackDeployment(ctx context.Context, params RollbackParams) (model.DeploymentSummary, error) {
	summary, err := a.orch.Rollback(ctx, params.ProjectID, params.ToVersion)
	if errors.Is(err, orchestrator.ErrNotFound) {
		return summary, temporal.NewNonRetryableApplicationError("project not found", "NOT_FOUND", err)
	}
	return summary, err
}
