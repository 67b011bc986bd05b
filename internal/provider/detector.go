package provider

import (
	"os"
	"os/exec"

	"github.com/taglia21/App-Builder-sub001/internal/model"
)

// DetectAvailable probes the local environment for usable providers: CLI
// binaries on PATH and credential environment variables. The result is
// advisory only and never gates an actual deploy; calling it has no side
// effects.
func DetectAvailable() map[string]bool {
	return map[string]bool{
		model.ProviderVercel:  cliInstalled("vercel"),
		model.ProviderFlyIO:   cliInstalled("flyctl"),
		model.ProviderAWS:     cliInstalled("aws"),
		model.ProviderRender:  envSet("RENDER_API_KEY"),
		model.ProviderRailway: envSet("RAILWAY_TOKEN"),
	}
}

func cliInstalled(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}
