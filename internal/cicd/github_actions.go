package cicd

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// WorkflowPath is the repository path the generated workflow is uploaded to.
const WorkflowPath = ".github/workflows/ci.yml"

// GenerateGitHubActions renders the CI/CD workflow attached to every new
// project repository: a test job on pushes and pull requests, and a deploy
// job gated on the main branch.
func GenerateGitHubActions(projectName string) ([]byte, error) {
	workflow := map[string]any{
		"name": "CI/CD",
		"on": map[string]any{
			"push":         map[string]any{"branches": []string{"main"}},
			"pull_request": map[string]any{"branches": []string{"main"}},
		},
		"jobs": map[string]any{
			"test": map[string]any{
				"runs-on": "ubuntu-latest",
				"steps": []map[string]any{
					{"uses": "actions/checkout@v4"},
					{
						"name": "Setup Node.js",
						"uses": "actions/setup-node@v4",
						"with": map[string]any{
							"node-version":          "20",
							"cache":                 "npm",
							"cache-dependency-path": "frontend/package-lock.json",
						},
					},
					{
						"name":              "Install frontend dependencies",
						"working-directory": "frontend",
						"run":               "npm ci",
					},
					{
						"name":              "Run frontend tests",
						"working-directory": "frontend",
						"run":               "npm test -- --passWithNoTests",
					},
					{
						"name":              "Build frontend",
						"working-directory": "frontend",
						"run":               "npm run build",
					},
				},
			},
			"deploy": map[string]any{
				"needs":   "test",
				"if":      "github.ref == 'refs/heads/main' && github.event_name == 'push'",
				"runs-on": "ubuntu-latest",
				"steps": []map[string]any{
					{"uses": "actions/checkout@v4"},
					{
						"name": "Deploy to Vercel",
						"uses": "amondnet/vercel-action@v20",
						"with": map[string]any{
							"vercel-token":      "${{ secrets.VERCEL_TOKEN }}",
							"vercel-org-id":     "${{ secrets.VERCEL_ORG_ID }}",
							"vercel-project-id": "${{ secrets.VERCEL_PROJECT_ID }}",
							"working-directory": "frontend",
						},
					},
				},
			},
		},
	}

	data, err := yaml.Marshal(workflow)
	if err != nil {
		return nil, fmt.Errorf("marshal workflow for %s: %w", projectName, err)
	}
	return data, nil
}
