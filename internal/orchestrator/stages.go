package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/taglia21/App-Builder-sub001/internal/cicd"
	"github.com/taglia21/App-Builder-sub001/internal/metrics"
	"github.com/taglia21/App-Builder-sub001/internal/model"
)

func (o *Orchestrator) executeStage(ctx context.Context, stage model.Stage, plan model.DeploymentPlan, summary *model.DeploymentSummary) (map[string]any, string, error) {
	switch stage {
	case model.StageGitHubRepo:
		return o.createRepoStage(ctx, plan, summary)
	case model.StageFrontendDeploy:
		return o.deployFrontendStage(ctx, plan, summary)
	case model.StageBackendDeploy:
		return o.deployBackendStage(ctx, plan, summary)
	case model.StageEnvironmentConfig:
		return o.configureEnvironmentStage(ctx, plan, summary)
	case model.StageVerification:
		return o.verifyStage(ctx, summary)
	default:
		return nil, "", fmt.Errorf("unknown stage %q", stage)
	}
}

func (o *Orchestrator) createRepoStage(ctx context.Context, plan model.DeploymentPlan, summary *model.DeploymentSummary) (map[string]any, string, error) {
	if o.repos == nil {
		return nil, "", errors.New("repository host not configured")
	}

	repo, err := o.repos.CreateRepository(ctx, plan.ProjectName, plan.RepoPrivate,
		fmt.Sprintf("Generated application %s", plan.ProjectName))
	if err != nil {
		return nil, "", fmt.Errorf("create repository: %w", err)
	}

	summary.RepoFullName = repo.FullName
	summary.RepoURL = repo.HTMLURL

	// Each source tree lands under its own directory so the generated CI
	// manifest's working-directory entries resolve.
	uploads := []struct {
		local  string
		remote string
	}{
		{plan.FrontendPath, "frontend"},
		{plan.BackendPath, "backend"},
	}

	uploaded := 0
	for _, u := range uploads {
		if u.local == "" {
			continue
		}
		n, err := o.repos.UploadDirectory(ctx, repo.FullName, u.local, u.remote, "Initial commit")
		if err != nil {
			return nil, "", fmt.Errorf("upload %s: %w", u.local, err)
		}
		uploaded += n
	}

	manifest, err := cicd.GenerateGitHubActions(plan.ProjectName)
	if err != nil {
		return nil, "", fmt.Errorf("generate ci workflow: %w", err)
	}
	if err := o.repos.UploadFile(ctx, repo.FullName, cicd.WorkflowPath, manifest, "Add CI workflow"); err != nil {
		return nil, "", err
	}
	uploaded++

	data := map[string]any{
		"full_name": repo.FullName,
		"html_url":  repo.HTMLURL,
		"clone_url": repo.CloneURL,
	}
	return data, fmt.Sprintf("created %s, uploaded %d files", repo.FullName, uploaded), nil
}

func (o *Orchestrator) deployFrontendStage(ctx context.Context, plan model.DeploymentPlan, summary *model.DeploymentSummary) (map[string]any, string, error) {
	cfg := model.DeploymentConfig{
		Provider:    o.opts.FrontendProvider,
		Environment: plan.Environment,
	}

	result, err := o.engine.Deploy(ctx, plan.FrontendPath, cfg, plan.EnvironmentVariables)
	if err != nil {
		return nil, "", err
	}
	o.recordDeployment(ctx, result)
	if !result.Success {
		return nil, "", fmt.Errorf("frontend deploy failed: %s", result.ErrorMessage)
	}

	summary.FrontendURL = result.FrontendURL
	summary.FrontendDeploymentID = result.DeploymentID

	data := map[string]any{
		"deployment_id": result.DeploymentID,
		"url":           result.FrontendURL,
		"logs":          result.Logs,
	}

	if plan.CustomDomain != "" {
		if p, ok := o.registry.New(o.opts.FrontendProvider); ok {
			configured, err := p.SetupCustomDomain(ctx, result.DeploymentID, plan.CustomDomain)
			if err != nil {
				o.logger.Warn().Err(err).Str("domain", plan.CustomDomain).Msg("custom domain setup failed")
			}
			data["custom_domain"] = configured
		}
	}

	return data, fmt.Sprintf("frontend live at %s", result.FrontendURL), nil
}

func (o *Orchestrator) deployBackendStage(ctx context.Context, plan model.DeploymentPlan, summary *model.DeploymentSummary) (map[string]any, string, error) {
	cfg := model.DeploymentConfig{
		Provider:    o.opts.BackendProvider,
		Environment: plan.Environment,
	}

	result, err := o.engine.Deploy(ctx, plan.BackendPath, cfg, plan.EnvironmentVariables)
	if err != nil {
		return nil, "", err
	}
	o.recordDeployment(ctx, result)
	if !result.Success {
		return nil, "", fmt.Errorf("backend deploy failed: %s", result.ErrorMessage)
	}

	summary.BackendURL = result.BackendURL
	summary.BackendDeploymentID = result.DeploymentID

	data := map[string]any{
		"deployment_id": result.DeploymentID,
		"url":           result.BackendURL,
		"logs":          result.Logs,
	}
	if result.DatabaseURL != "" {
		data["database_url"] = result.DatabaseURL
	}
	return data, fmt.Sprintf("backend live at %s", result.BackendURL), nil
}

func (o *Orchestrator) configureEnvironmentStage(ctx context.Context, plan model.DeploymentPlan, summary *model.DeploymentSummary) (map[string]any, string, error) {
	prepared := o.secrets.Prepare(plan.EnvironmentVariables)

	message := fmt.Sprintf("prepared %d environment variables", len(prepared))
	if o.repos != nil && summary.RepoFullName != "" {
		// Secret store failures are noted but do not fail the stage; the
		// services themselves already received their variables at deploy
		// time.
		if err := o.repos.SetSecrets(ctx, summary.RepoFullName, prepared); err != nil {
			o.logger.Warn().Err(err).Msg("storing repository secrets failed")
			message = fmt.Sprintf("%s, secret store unavailable", message)
		}
	}

	data := map[string]any{"configured": len(prepared)}
	if summary.FrontendURL != "" && summary.BackendURL != "" {
		// Record that the frontend was pointed at the deployed backend.
		data["backend_url"] = summary.BackendURL
		message = fmt.Sprintf("%s, frontend linked to %s", message, summary.BackendURL)
	}
	return data, message, nil
}

func (o *Orchestrator) verifyStage(ctx context.Context, summary *model.DeploymentSummary) (map[string]any, string, error) {
	report := o.health.Verify(ctx, summary.FrontendURL, summary.BackendURL)

	data := map[string]any{"checks": report.Checks}
	if !report.AllPass {
		return data, "", fmt.Errorf("verification failed: %d checks failing", report.FailedChecks())
	}
	return data, fmt.Sprintf("%d checks passed", len(report.Checks)), nil
}

func (o *Orchestrator) recordDeployment(ctx context.Context, result model.DeploymentResult) {
	if o.history == nil {
		return
	}
	if err := o.history.RecordDeployment(ctx, result); err != nil {
		o.logger.Error().Err(err).Str("deployment_id", result.DeploymentID).Msg("record deployment")
	}
	metrics.ObserveDeployment(result.Provider, result.Success)
}
