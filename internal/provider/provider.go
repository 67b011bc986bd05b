package provider

import (
	"context"

	"github.com/taglia21/App-Builder-sub001/internal/model"
)

// Provider is the contract every hosting provider implements. Callers must
// not depend on provider-specific behavior outside the returned results.
type Provider interface {
	// Name returns the registry name of the provider.
	Name() string

	// CheckPrerequisites reports named readiness checks, e.g.
	// {"cli_installed": true, "auth_token_present": false}.
	CheckPrerequisites(ctx context.Context) map[string]bool

	// ValidateConfig performs syntactic validation of the configuration.
	ValidateConfig(cfg model.DeploymentConfig) (bool, string)

	// Deploy executes the deployment of the codebase rooted at codebasePath.
	Deploy(ctx context.Context, codebasePath string, cfg model.DeploymentConfig, secrets map[string]string) (model.DeploymentResult, error)

	// VerifyDeployment runs health checks on a completed deployment.
	VerifyDeployment(ctx context.Context, deploymentID string) (model.VerificationReport, error)

	// Rollback reverts a deployment to a previous state.
	Rollback(ctx context.Context, deploymentID, rollbackToID string) (bool, error)

	// EstimateCost projects the monthly cost for this configuration.
	EstimateCost(cfg model.DeploymentConfig) model.CostEstimate

	// SetupCustomDomain configures a custom domain for the deployment.
	SetupCustomDomain(ctx context.Context, deploymentID, domain string) (bool, error)
}

// Base supplies default implementations for the optional operations.
// Embed it in providers that have no pricing model or domain support.
type Base struct{}

// EstimateCost returns a zero/unknown estimate. Providers with a known
// pricing model override this.
func (Base) EstimateCost(cfg model.DeploymentConfig) model.CostEstimate {
	return model.CostEstimate{
		Provider:     cfg.Provider,
		TotalMonthly: 0.0,
		Breakdown:    map[string]float64{"base": 0.0},
		Currency:     "USD",
	}
}

// SetupCustomDomain reports the operation as unsupported.
func (Base) SetupCustomDomain(ctx context.Context, deploymentID, domain string) (bool, error) {
	return false, nil
}
