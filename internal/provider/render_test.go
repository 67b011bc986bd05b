package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/taglia21/App-Builder-sub001/internal/model"
)

func TestRender_CheckPrerequisites(t *testing.T) {
	withKey := NewRender("key_123", zerolog.Nop())
	assert.True(t, withKey.CheckPrerequisites(context.Background())["api_key_present"])

	withoutKey := NewRender("", zerolog.Nop())
	assert.False(t, withoutKey.CheckPrerequisites(context.Background())["api_key_present"])
}

func TestRender_ValidateConfig(t *testing.T) {
	r := NewRender("key", zerolog.Nop())

	ok, msg := r.ValidateConfig(testConfig(model.ProviderRender))
	assert.True(t, ok)
	assert.Empty(t, msg)

	ok, msg = r.ValidateConfig(testConfig(model.ProviderVercel))
	assert.False(t, ok)
	assert.Contains(t, msg, "render")
}

func TestRender_Deploy_WritesManifest(t *testing.T) {
	dir := t.TempDir()
	r := NewRender("key", zerolog.Nop())

	result, err := r.Deploy(context.Background(), dir, testConfig(model.ProviderRender), nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Contains(t, result.DeploymentID, "dpl_render_")
	assert.Equal(t, "https://"+filepath.Base(dir)+"-api.onrender.com", result.BackendURL)
	assert.NotEmpty(t, result.DatabaseURL)
	assert.Empty(t, result.FrontendURL)

	data, err := os.ReadFile(filepath.Join(dir, RenderManifestFile))
	require.NoError(t, err)

	var manifest struct {
		Services []map[string]any `yaml:"services"`
	}
	require.NoError(t, yaml.Unmarshal(data, &manifest))
	require.Len(t, manifest.Services, 2)

	web := manifest.Services[0]
	assert.Equal(t, "web", web["type"])
	assert.Equal(t, filepath.Base(dir)+"-api", web["name"])
	assert.Equal(t, "python", web["runtime"])
	assert.NotEmpty(t, web["buildCommand"])
	assert.NotEmpty(t, web["startCommand"])

	db := manifest.Services[1]
	assert.Equal(t, "pserv", db["type"])
	assert.Equal(t, "postgres", db["name"])
}

func TestRender_EstimateCost(t *testing.T) {
	r := NewRender("key", zerolog.Nop())
	est := r.EstimateCost(testConfig(model.ProviderRender))

	assert.Equal(t, 24.0, est.TotalMonthly)
	assert.Equal(t, map[string]float64{
		"web_service":      7.0,
		"worker":           7.0,
		"postgres_managed": 7.0,
		"redis_managed":    3.0,
	}, est.Breakdown)
}

func TestRender_VerifyDeployment(t *testing.T) {
	r := NewRender("key", zerolog.Nop())
	report, err := r.VerifyDeployment(context.Background(), "dpl_render_x")
	require.NoError(t, err)
	assert.True(t, report.AllPass)
	assert.NotEmpty(t, report.Checks)
}
