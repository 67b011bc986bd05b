package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taglia21/App-Builder-sub001/internal/model"
)

func checkByName(t *testing.T, report model.VerificationReport, name string) model.VerificationCheck {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found in report", name)
	return model.VerificationCheck{}
}

func TestVerify_NoURLs_VacuousPass(t *testing.T) {
	s := NewSuite()
	report := s.Verify(context.Background(), "", "")
	assert.True(t, report.AllPass)
	assert.Empty(t, report.Checks)
}

func TestVerify_FrontendOnly(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSuiteWithClient(server.Client())
	report := s.Verify(context.Background(), server.URL, "")

	require.Len(t, report.Checks, 2)
	assert.True(t, report.AllPass)
	assert.Equal(t, "Frontend Accessible", report.Checks[0].Name)
	assert.Equal(t, "Frontend SSL", report.Checks[1].Name)
	assert.Contains(t, report.Checks[0].Details, "200")
}

func TestVerify_BackendHealthy(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok","db":"ok"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := NewSuiteWithClient(server.Client())
	report := s.Verify(context.Background(), "", server.URL)

	require.Len(t, report.Checks, 3)
	assert.True(t, report.AllPass)
	assert.True(t, checkByName(t, report, "API Health & DB").Passed)
}

func TestVerify_BackendDBOnly(t *testing.T) {
	// {"db":"ok"} alone is enough for the dependency check.
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"db":"ok"}`))
	}))
	defer server.Close()

	s := NewSuiteWithClient(server.Client())
	report := s.Verify(context.Background(), "", server.URL)
	assert.True(t, checkByName(t, report, "API Health & DB").Passed)
}

func TestVerify_BackendUnhealthyBody(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"degraded","db":"down"}`))
	}))
	defer server.Close()

	s := NewSuiteWithClient(server.Client())
	report := s.Verify(context.Background(), "", server.URL)

	assert.False(t, report.AllPass)
	apiCheck := checkByName(t, report, "API Health & DB")
	assert.False(t, apiCheck.Passed)
	assert.Contains(t, apiCheck.Details, "degraded")
	// Reachability still passes: the endpoint answered 200.
	assert.True(t, checkByName(t, report, "Backend Accessible").Passed)
}

func TestVerify_MalformedHealthBody(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	s := NewSuiteWithClient(server.Client())
	report := s.Verify(context.Background(), "", server.URL)

	apiCheck := checkByName(t, report, "API Health & DB")
	assert.False(t, apiCheck.Passed)
	assert.Contains(t, apiCheck.Details, "Failed to query health")
}

func TestVerify_ServerError(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewSuiteWithClient(server.Client())
	report := s.Verify(context.Background(), server.URL, "")

	assert.False(t, report.AllPass)
	fe := checkByName(t, report, "Frontend Accessible")
	assert.False(t, fe.Passed)
	assert.Contains(t, fe.Details, "500")
}

func TestVerify_TransportSecurity_PlainHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	s := NewSuiteWithClient(server.Client())
	report := s.Verify(context.Background(), server.URL, "")

	assert.False(t, report.AllPass)
	ssl := checkByName(t, report, "Frontend SSL")
	assert.False(t, ssl.Passed)
	assert.Equal(t, "Not using HTTPS", ssl.Details)
}

func TestVerify_UnreachableBackend(t *testing.T) {
	s := NewSuite()
	report := s.Verify(context.Background(), "", "https://127.0.0.1:1")

	assert.False(t, report.AllPass)
	api := checkByName(t, report, "API Health & DB")
	assert.False(t, api.Passed)
	assert.NotEmpty(t, api.Details)
	// The scheme check is independent of reachability.
	assert.True(t, checkByName(t, report, "Backend SSL").Passed)
}
