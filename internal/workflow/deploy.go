package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/taglia21/App-Builder-sub001/internal/activity"
	"github.com/taglia21/App-Builder-sub001/internal/model"
	"github.com/taglia21/App-Builder-sub001/internal/orchestrator"
)

// DeployProjectWorkflow runs the deployment pipeline for one project.
// Stages execute strictly in order and a failed stage aborts the stages
// after it. Deploy stages are not retried: a half-finished provider
// deploy is not safe to repeat blindly.
func DeployProjectWorkflow(ctx workflow.Context, plan model.DeploymentPlan) (model.DeploymentSummary, error) {
	logger := workflow.GetLogger(ctx)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	err := workflow.ExecuteActivity(ctx, "BeginPipeline", plan).Get(ctx, nil)
	if err != nil {
		return model.DeploymentSummary{}, err
	}

	failed := false
	for _, stage := range model.StageOrder {
		if !orchestrator.ShouldRun(stage, plan) {
			continue
		}

		var result model.StageResult
		err := workflow.ExecuteActivity(ctx, "RunStage", activity.StageParams{
			Stage: stage,
			Plan:  plan,
		}).Get(ctx, &result)
		if err != nil {
			logger.Error("stage activity failed", "stage", stage, "error", err)
			failed = true
			break
		}
		if result.Status == model.StatusFailed {
			logger.Error("stage failed", "stage", stage, "error", result.Error)
			failed = true
			break
		}
	}

	var summary model.DeploymentSummary
	err = workflow.ExecuteActivity(ctx, "FinalizePipeline", activity.FinalizeParams{
		ProjectID: plan.ProjectID,
		Failed:    failed,
	}).Get(ctx, &summary)
	if err != nil {
		return model.DeploymentSummary{}, err
	}
	return summary, nil
}

// RollbackDeploymentWorkflow reverts a project to a previously recorded
// deployment.
func RollbackDeploymentWorkflow(ctx workflow.Context, params activity.RollbackParams) (model.DeploymentSummary, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    3,
			InitialInterval:    2 * time.Second,
			MaximumInterval:    30 * time.Second,
			BackoffCoefficient: 2.0,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var summary model.DeploymentSummary
	err := workflow.ExecuteActivity(ctx, "RollbackDeployment", params).Get(ctx, &summary)
	if err != nil {
		return model.DeploymentSummary{}, err
	}
	return summary, nil
}
