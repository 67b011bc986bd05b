package model

// Status is the lifecycle state of a deployment or one of its stages.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusRolledBack Status = "rolled_back"
)

// Stage identifies one step of the deployment pipeline.
type Stage string

const (
	StageGitHubRepo        Stage = "github_repo"
	StageFrontendDeploy    Stage = "frontend_deploy"
	StageBackendDeploy     Stage = "backend_deploy"
	StageEnvironmentConfig Stage = "environment_config"
	StageVerification      Stage = "verification"
)

// StageOrder is the fixed execution order of the pipeline. A stage never
// starts before the previous one has completed.
var StageOrder = []Stage{
	StageGitHubRepo,
	StageFrontendDeploy,
	StageBackendDeploy,
	StageEnvironmentConfig,
	StageVerification,
}

// Supported hosting providers.
const (
	ProviderVercel       = "vercel"
	ProviderRender       = "render"
	ProviderRailway      = "railway"
	ProviderFlyIO        = "fly_io"
	ProviderAWS          = "aws"
	ProviderDigitalOcean = "digitalocean"
	ProviderNetlify      = "netlify"
)

// Deployment environments.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)
