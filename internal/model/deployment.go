package model

import (
	"time"
)

// DeploymentConfig holds the settings for a single deployment attempt.
// It is never mutated once handed to the engine.
type DeploymentConfig struct {
	Provider    string `json:"provider" validate:"required,oneof=vercel render railway fly_io aws digitalocean netlify"`
	Environment string `json:"environment" validate:"required,oneof=development staging production"`
	Region      string `json:"region"`

	// Feature flags.
	AutoDeployOnPush   bool `json:"auto_deploy_on_push"`
	HealthCheckEnabled bool `json:"health_check_enabled"`
	MonitoringEnabled  bool `json:"monitoring_enabled"`

	// CostLimitMonthly caps the acceptable monthly spend in USD. Nil means
	// no limit.
	CostLimitMonthly *float64 `json:"cost_limit_monthly,omitempty"`

	// ExtraSettings is passed through to the provider untouched.
	ExtraSettings map[string]any `json:"extra_settings,omitempty"`
}

// DeploymentResult is the outcome of one provider deploy call.
// When Success is false, ErrorMessage is always non-empty.
type DeploymentResult struct {
	Success      bool      `json:"success" db:"success"`
	DeploymentID string    `json:"deployment_id" db:"deployment_id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	Provider     string    `json:"provider" db:"provider"`
	Environment  string    `json:"environment" db:"environment"`

	FrontendURL string `json:"frontend_url,omitempty" db:"frontend_url"`
	BackendURL  string `json:"backend_url,omitempty" db:"backend_url"`
	DatabaseURL string `json:"database_url,omitempty" db:"database_url"`

	Duration time.Duration `json:"duration" db:"duration"`

	Logs         []string `json:"logs,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty" db:"error_message"`

	RollbackID string `json:"rollback_id,omitempty" db:"rollback_id"`
}

// VerificationCheck is the result of a single health check.
type VerificationCheck struct {
	Name    string        `json:"name"`
	Passed  bool          `json:"passed"`
	Details string        `json:"details,omitempty"`
	Latency time.Duration `json:"latency"`
}

// VerificationReport aggregates independent health checks.
type VerificationReport struct {
	AllPass   bool                `json:"all_pass"`
	Checks    []VerificationCheck `json:"checks"`
	Timestamp time.Time           `json:"timestamp"`
}

// NewVerificationReport builds a report whose AllPass is the conjunction of
// all checks. A report over zero checks is vacuously passing.
func NewVerificationReport(checks []VerificationCheck) VerificationReport {
	allPass := true
	for _, c := range checks {
		if !c.Passed {
			allPass = false
			break
		}
	}
	return VerificationReport{
		AllPass:   allPass,
		Checks:    checks,
		Timestamp: time.Now().UTC(),
	}
}

// FailedChecks returns how many checks in the report did not pass.
func (r VerificationReport) FailedChecks() int {
	n := 0
	for _, c := range r.Checks {
		if !c.Passed {
			n++
		}
	}
	return n
}

// CostEstimate is a static monthly cost projection for one provider.
type CostEstimate struct {
	Provider     string             `json:"provider"`
	TotalMonthly float64            `json:"total_monthly"`
	Breakdown    map[string]float64 `json:"breakdown"`
	Currency     string             `json:"currency"`
	IsWarning    bool               `json:"is_warning"`
}
