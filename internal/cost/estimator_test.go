package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taglia21/App-Builder-sub001/internal/model"
)

func TestEstimate_Vercel(t *testing.T) {
	e := NewEstimator()
	est := e.Estimate(model.DeploymentConfig{Provider: model.ProviderVercel})

	assert.Equal(t, 20.0, est.TotalMonthly)
	assert.Equal(t, map[string]float64{"pro_plan": 20.0}, est.Breakdown)
	assert.Equal(t, "USD", est.Currency)
	assert.False(t, est.IsWarning)
}

func TestEstimate_Render(t *testing.T) {
	e := NewEstimator()
	est := e.Estimate(model.DeploymentConfig{Provider: model.ProviderRender})

	assert.Equal(t, 24.0, est.TotalMonthly)
	assert.Equal(t, 7.0, est.Breakdown["web_service"])
	assert.Equal(t, 7.0, est.Breakdown["worker"])
	assert.Equal(t, 7.0, est.Breakdown["postgres_managed"])
	assert.Equal(t, 3.0, est.Breakdown["redis_managed"])
}

func TestEstimate_UnknownProvider(t *testing.T) {
	e := NewEstimator()
	est := e.Estimate(model.DeploymentConfig{Provider: "heroku"})

	assert.Equal(t, 0.0, est.TotalMonthly)
	assert.Empty(t, est.Breakdown)
}

func TestEstimate_Pure(t *testing.T) {
	e := NewEstimator()
	cfg := model.DeploymentConfig{Provider: model.ProviderRender, Region: "oregon"}

	first := e.Estimate(cfg)
	second := e.Estimate(cfg)
	assert.Equal(t, first, second)
}

func TestEstimate_CostLimitWarning(t *testing.T) {
	e := NewEstimator()

	limit := 10.0
	est := e.Estimate(model.DeploymentConfig{Provider: model.ProviderRender, CostLimitMonthly: &limit})
	assert.True(t, est.IsWarning)

	generous := 100.0
	est = e.Estimate(model.DeploymentConfig{Provider: model.ProviderRender, CostLimitMonthly: &generous})
	assert.False(t, est.IsWarning)
}
