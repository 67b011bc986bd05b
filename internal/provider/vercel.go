package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/taglia21/App-Builder-sub001/internal/model"
	"github.com/taglia21/App-Builder-sub001/internal/platform"
)

// VercelManifestFile is the fixed manifest filename at the codebase root.
// The filename and keys are part of the provider contract.
const VercelManifestFile = "vercel.json"

// vercelManifest is the build configuration written to vercel.json.
type vercelManifest struct {
	BuildCommand   string   `json:"buildCommand"`
	InstallCommand string   `json:"installCommand"`
	Framework      string   `json:"framework"`
	Regions        []string `json:"regions"`
}

// Vercel deploys frontend codebases (Next.js) to the vercel platform.
// The network protocol is abstracted away; the deploy call writes the
// manifest and fabricates the platform response.
type Vercel struct {
	Base
	token  string
	logger zerolog.Logger
}

func NewVercel(token string, logger zerolog.Logger) *Vercel {
	return &Vercel{
		token:  token,
		logger: logger.With().Str("provider", model.ProviderVercel).Logger(),
	}
}

func (v *Vercel) Name() string { return model.ProviderVercel }

func (v *Vercel) CheckPrerequisites(ctx context.Context) map[string]bool {
	// The CLI is never shelled out to directly; the detector handles real
	// PATH probing. Token presence is the effective gate.
	return map[string]bool{
		"cli_installed":      true,
		"auth_token_present": v.token != "",
	}
}

func (v *Vercel) ValidateConfig(cfg model.DeploymentConfig) (bool, string) {
	if cfg.Provider != model.ProviderVercel {
		return false, fmt.Sprintf("provider must be %q", model.ProviderVercel)
	}
	return true, ""
}

func (v *Vercel) Deploy(ctx context.Context, codebasePath string, cfg model.DeploymentConfig, secrets map[string]string) (model.DeploymentResult, error) {
	start := time.Now()
	v.logger.Info().Str("path", codebasePath).Msg("initializing vercel deployment")

	if err := v.writeManifest(codebasePath, cfg); err != nil {
		return model.DeploymentResult{}, err
	}

	v.logger.Info().Int("count", len(secrets)).Msg("syncing secrets to vercel")

	deploymentID := platform.NewDeploymentID(model.ProviderVercel)
	project := filepath.Base(codebasePath)

	return model.DeploymentResult{
		Success:      true,
		DeploymentID: deploymentID,
		Timestamp:    time.Now().UTC(),
		Provider:     cfg.Provider,
		Environment:  cfg.Environment,
		FrontendURL:  fmt.Sprintf("https://%s.vercel.app", project),
		Logs:         []string{"Building...", "Optimizing...", "Done."},
		Duration:     time.Since(start),
	}, nil
}

func (v *Vercel) VerifyDeployment(ctx context.Context, deploymentID string) (model.VerificationReport, error) {
	return model.NewVerificationReport([]model.VerificationCheck{
		{Name: "Frontend Accessible", Passed: true, Latency: 120 * time.Millisecond},
		{Name: "SSL Valid", Passed: true},
	}), nil
}

func (v *Vercel) Rollback(ctx context.Context, deploymentID, rollbackToID string) (bool, error) {
	v.logger.Info().
		Str("deployment_id", deploymentID).
		Str("rollback_to", rollbackToID).
		Msg("rolling back vercel deployment")
	return true, nil
}

func (v *Vercel) EstimateCost(cfg model.DeploymentConfig) model.CostEstimate {
	return model.CostEstimate{
		Provider:     cfg.Provider,
		TotalMonthly: 20.0,
		Breakdown:    map[string]float64{"pro_plan": 20.0},
		Currency:     "USD",
	}
}

func (v *Vercel) writeManifest(codebasePath string, cfg model.DeploymentConfig) error {
	manifest := vercelManifest{
		BuildCommand:   "npm run build",
		InstallCommand: "npm ci",
		Framework:      "nextjs",
		Regions:        []string{cfg.Region},
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal vercel manifest: %w", err)
	}

	path := filepath.Join(codebasePath, VercelManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", VercelManifestFile, err)
	}

	v.logger.Info().Str("path", path).Msg("generated vercel manifest")
	return nil
}
