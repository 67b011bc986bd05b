package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taglia21/App-Builder-sub001/internal/model"
)

// checkTimeout bounds every individual HTTP probe.
const checkTimeout = 10 * time.Second

// Suite runs post-deployment verification against the URLs a deployment
// produced. Checks are mutually independent and run concurrently; the report
// lists them in a fixed order regardless of completion order.
type Suite struct {
	client *http.Client
}

func NewSuite() *Suite {
	return &Suite{client: &http.Client{Timeout: checkTimeout}}
}

// NewSuiteWithClient is used by tests to inject a client.
func NewSuiteWithClient(client *http.Client) *Suite {
	return &Suite{client: client}
}

// Verify probes the given URLs. Either URL may be empty, in which case its
// checks are skipped. A report over zero checks passes vacuously.
func (s *Suite) Verify(ctx context.Context, frontendURL, backendURL string) model.VerificationReport {
	type slot struct {
		run func(context.Context) model.VerificationCheck
	}

	var slots []slot
	if frontendURL != "" {
		slots = append(slots,
			slot{func(ctx context.Context) model.VerificationCheck {
				return s.checkURL(ctx, "Frontend Accessible", frontendURL)
			}},
			slot{func(ctx context.Context) model.VerificationCheck {
				return checkTransportSecurity("Frontend SSL", frontendURL)
			}},
		)
	}
	if backendURL != "" {
		slots = append(slots,
			slot{func(ctx context.Context) model.VerificationCheck {
				return s.checkURL(ctx, "Backend Accessible", backendURL+"/health")
			}},
			slot{func(ctx context.Context) model.VerificationCheck {
				return checkTransportSecurity("Backend SSL", backendURL)
			}},
			slot{func(ctx context.Context) model.VerificationCheck {
				return s.checkAPIHealth(ctx, backendURL)
			}},
		)
	}

	checks := make([]model.VerificationCheck, len(slots))
	g, gctx := errgroup.WithContext(ctx)
	for i, sl := range slots {
		i, sl := i, sl
		g.Go(func() error {
			checks[i] = sl.run(gctx)
			return nil
		})
	}
	_ = g.Wait()

	return model.NewVerificationReport(checks)
}

// checkURL passes iff the response status is in [200, 400).
func (s *Suite) checkURL(ctx context.Context, name, url string) model.VerificationCheck {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.VerificationCheck{Name: name, Passed: false, Details: err.Error()}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return model.VerificationCheck{Name: name, Passed: false, Details: err.Error()}
	}
	defer resp.Body.Close()

	return model.VerificationCheck{
		Name:    name,
		Passed:  resp.StatusCode >= 200 && resp.StatusCode < 400,
		Details: fmt.Sprintf("Status: %d", resp.StatusCode),
		Latency: time.Since(start),
	}
}

// checkTransportSecurity is a shallow scheme check, not certificate
// validation.
func checkTransportSecurity(name, url string) model.VerificationCheck {
	if !strings.HasPrefix(url, "https") {
		return model.VerificationCheck{Name: name, Passed: false, Details: "Not using HTTPS"}
	}
	return model.VerificationCheck{Name: name, Passed: true, Details: "HTTPS Enabled"}
}

// checkAPIHealth queries the standard /health endpoint and inspects its JSON
// body. Any network or parse failure is itself a failed check.
func (s *Suite) checkAPIHealth(ctx context.Context, backendURL string) model.VerificationCheck {
	const name = "API Health & DB"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, backendURL+"/health", nil)
	if err != nil {
		return model.VerificationCheck{Name: name, Passed: false, Details: err.Error()}
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return model.VerificationCheck{Name: name, Passed: false, Details: fmt.Sprintf("Failed to query health: %s", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.VerificationCheck{Name: name, Passed: false, Details: fmt.Sprintf("Status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.VerificationCheck{Name: name, Passed: false, Details: fmt.Sprintf("Failed to query health: %s", err)}
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.VerificationCheck{Name: name, Passed: false, Details: fmt.Sprintf("Failed to query health: %s", err)}
	}

	passed := payload["status"] == "ok" || payload["db"] == "ok"
	return model.VerificationCheck{
		Name:    name,
		Passed:  passed,
		Details: fmt.Sprintf("Response: %s", body),
		Latency: time.Since(start),
	}
}
