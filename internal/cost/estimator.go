package cost

import (
	"github.com/taglia21/App-Builder-sub001/internal/model"
)

// Estimator projects monthly hosting costs from a static per-provider table.
// Estimate is pure: the same config always yields the same estimate, and an
// unrecognized provider yields a zero total with an empty breakdown.
type Estimator struct{}

func NewEstimator() *Estimator {
	return &Estimator{}
}

func (e *Estimator) Estimate(cfg model.DeploymentConfig) model.CostEstimate {
	var est model.CostEstimate

	switch cfg.Provider {
	case model.ProviderVercel:
		est = model.CostEstimate{
			Provider:     cfg.Provider,
			TotalMonthly: 20.0,
			Breakdown:    map[string]float64{"pro_plan": 20.0},
			Currency:     "USD",
		}
	case model.ProviderRender:
		est = model.CostEstimate{
			Provider:     cfg.Provider,
			TotalMonthly: 24.0,
			Breakdown: map[string]float64{
				"web_service":      7.0,
				"worker":           7.0,
				"postgres_managed": 7.0,
				"redis_managed":    3.0,
			},
			Currency: "USD",
		}
	default:
		est = model.CostEstimate{
			Provider:     cfg.Provider,
			TotalMonthly: 0.0,
			Breakdown:    map[string]float64{},
			Currency:     "USD",
		}
	}

	if cfg.CostLimitMonthly != nil && est.TotalMonthly > *cfg.CostLimitMonthly {
		est.IsWarning = true
	}

	return est
}
