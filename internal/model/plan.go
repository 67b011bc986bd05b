package model

import (
	"time"
)

// DeploymentPlan describes one full pipeline run for a project.
type DeploymentPlan struct {
	ProjectID   string `json:"project_id" validate:"required"`
	ProjectName string `json:"project_name" validate:"required"`
	Environment string `json:"environment" validate:"required,oneof=development staging production"`

	// Source code locations produced by the code generator.
	FrontendPath string `json:"frontend_path,omitempty"`
	BackendPath  string `json:"backend_path,omitempty"`

	// Per-stage toggles. Environment config and verification always run.
	DeployFrontend bool `json:"deploy_frontend"`
	DeployBackend  bool `json:"deploy_backend"`
	CreateRepo     bool `json:"create_repo"`

	RepoPrivate bool `json:"repo_private"`

	EnvironmentVariables map[string]string `json:"environment_variables,omitempty"`

	CustomDomain string `json:"custom_domain,omitempty"`
}

// StageResult records the outcome of a single pipeline stage.
// When Status is failed, Error is always non-empty.
type StageResult struct {
	Stage       Stage          `json:"stage"`
	Status      Status         `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Message     string         `json:"message,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// DeploymentSummary is the aggregate state of one project's deployment.
type DeploymentSummary struct {
	ProjectID   string     `json:"project_id"`
	ProjectName string     `json:"project_name"`
	Status      Status     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	RepoURL     string `json:"repo_url,omitempty"`
	FrontendURL string `json:"frontend_url,omitempty"`
	BackendURL  string `json:"backend_url,omitempty"`

	Stages []StageResult `json:"stages"`

	// Identifiers needed for rollback.
	RepoFullName         string `json:"repo_full_name,omitempty"`
	FrontendDeploymentID string `json:"frontend_deployment_id,omitempty"`
	BackendDeploymentID  string `json:"backend_deployment_id,omitempty"`
}

// StageFor returns the recorded result for the given stage, or nil if the
// stage never ran.
func (s *DeploymentSummary) StageFor(stage Stage) *StageResult {
	for i := range s.Stages {
		if s.Stages[i].Stage == stage {
			return &s.Stages[i]
		}
	}
	return nil
}
