package engine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taglia21/App-Builder-sub001/internal/model"
	"github.com/taglia21/App-Builder-sub001/internal/provider"
)

// Deployment ids used for structured failures. Callers can branch on these
// without parsing error text.
const (
	FailureUnknownProvider = "error"
	FailurePrerequisites   = "prereq_fail"
	FailureException       = "exception"
)

// Engine is the single-provider deploy front door: prerequisite check,
// deploy, optional post-deploy verification. Provider failures never
// propagate to the caller; they are converted into failed results.
type Engine struct {
	registry *provider.Registry
	logger   zerolog.Logger
}

func New(registry *provider.Registry, logger zerolog.Logger) *Engine {
	return &Engine{
		registry: registry,
		logger:   logger.With().Str("component", "engine").Logger(),
	}
}

// DetectAvailableProviders reports which providers are locally usable.
func (e *Engine) DetectAvailableProviders() map[string]bool {
	return provider.DetectAvailable()
}

// Deploy deploys the codebase at codebasePath using the provider named in
// cfg. The returned error is non-nil only when codebasePath does not exist
// (it satisfies errors.Is(err, os.ErrNotExist)); every other failure mode is
// reported through the result.
func (e *Engine) Deploy(ctx context.Context, codebasePath string, cfg model.DeploymentConfig, secrets map[string]string) (model.DeploymentResult, error) {
	if _, err := os.Stat(codebasePath); err != nil {
		return model.DeploymentResult{}, fmt.Errorf("codebase path %s: %w", codebasePath, err)
	}

	p, ok := e.registry.New(cfg.Provider)
	if !ok {
		return e.failure(cfg, FailureUnknownProvider,
			fmt.Sprintf("provider %q not supported or not registered", cfg.Provider)), nil
	}

	e.logger.Info().
		Str("provider", cfg.Provider).
		Str("environment", cfg.Environment).
		Msg("starting deployment")

	prereqs := p.CheckPrerequisites(ctx)
	if missing := missingChecks(prereqs); len(missing) > 0 {
		return e.failure(cfg, FailurePrerequisites,
			"prerequisites missing: "+strings.Join(missing, ", ")), nil
	}

	result, err := guardedDeploy(ctx, p, codebasePath, cfg, secrets)
	if err != nil {
		e.logger.Error().Err(err).Str("provider", cfg.Provider).Msg("deployment failed")
		return e.failure(cfg, FailureException, err.Error()), nil
	}

	if result.Success && cfg.HealthCheckEnabled {
		e.logger.Info().Msg("running post-deployment health checks")
		report, err := guardedVerify(ctx, p, result.DeploymentID)
		if err != nil {
			result.ErrorMessage = fmt.Sprintf("health check error: %s", err)
		} else if !report.AllPass {
			// The deploy itself worked; verification is advisory at this
			// layer and only annotates the result.
			e.logger.Warn().Msg("deployment succeeded but health checks failed")
			result.ErrorMessage = fmt.Sprintf("health check failures: %d", report.FailedChecks())
		}
	}

	return result, nil
}

// guardedDeploy converts provider panics into errors so that no provider
// misbehavior can escape the engine.
func guardedDeploy(ctx context.Context, p provider.Provider, codebasePath string, cfg model.DeploymentConfig, secrets map[string]string) (result model.DeploymentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return p.Deploy(ctx, codebasePath, cfg, secrets)
}

// guardedVerify gives post-deploy verification the same panic guard as
// the deploy call itself.
func guardedVerify(ctx context.Context, p provider.Provider, deploymentID string) (report model.VerificationReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return p.VerifyDeployment(ctx, deploymentID)
}

func missingChecks(prereqs map[string]bool) []string {
	var missing []string
	for name, ok := range prereqs {
		if !ok {
			missing = append(missing, name)
		}
	}
	// Map iteration order is random; keep the message deterministic.
	sort.Strings(missing)
	return missing
}

func (e *Engine) failure(cfg model.DeploymentConfig, deploymentID, message string) model.DeploymentResult {
	return model.DeploymentResult{
		Success:      false,
		DeploymentID: deploymentID,
		Timestamp:    time.Now().UTC(),
		Provider:     cfg.Provider,
		Environment:  cfg.Environment,
		ErrorMessage: message,
	}
}
