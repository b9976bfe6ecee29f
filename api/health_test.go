package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/advayc/visits/internal/secrets"
)

func TestHealthHealthy(t *testing.T) {
	st := newFakeStore(t, nil)
	ts := newTestServer(t, workingVault(), st, false)

	rec, body := do(t, ts, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
	components, ok := body["components"].(map[string]any)
	if !ok {
		t.Fatalf("components missing: %v", body)
	}
	if components["keyvault"] != "healthy" || components["function"] != "healthy" {
		t.Errorf("components = %v", components)
	}
	if body["timestamp"] != "2024-05-01T12:00:00Z" {
		t.Errorf("timestamp = %v", body["timestamp"])
	}
	if body["message"] == "" {
		t.Error("expected a message")
	}
	assertCORS(t, rec, "GET, OPTIONS")
	if st.calls() != 0 {
		t.Error("health check should not touch the counter store")
	}
	if got := testutil.ToFloat64(ts.metrics.VaultProbes.WithLabelValues("healthy")); got != 1 {
		t.Errorf("healthy probes = %v, want 1", got)
	}
}

func TestHealthDegraded(t *testing.T) {
	opener := &countingOpener{vault: secrets.StaticVault{}}
	ts := newTestServer(t, opener, newFakeStore(t, nil), false)

	rec, body := do(t, ts, http.MethodGet, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for a degraded report", rec.Code)
	}
	if body["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", body["status"])
	}
	components := body["components"].(map[string]any)
	if components["keyvault"] != "unhealthy" {
		t.Errorf("keyvault = %v, want unhealthy", components["keyvault"])
	}
	if components["function"] != "healthy" {
		t.Errorf("function = %v, want healthy", components["function"])
	}
}

func TestHealthCredentialFailure(t *testing.T) {
	tests := []struct {
		name      string
		dev       bool
		wantError string
	}{
		{"production", false, "Please try again later"},
		{"development", true, `retrieve secret "cosmos-connection-string" from ` + testVaultURL + `: no managed identity endpoint`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := &countingOpener{err: errors.New("no managed identity endpoint")}
			ts := newTestServer(t, opener, newFakeStore(t, nil), tt.dev)

			rec, body := do(t, ts, http.MethodGet, "/health")
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", rec.Code)
			}
			if body["status"] != "unhealthy" {
				t.Errorf("status = %v, want unhealthy", body["status"])
			}
			if body["message"] != "Health check failed" {
				t.Errorf("message = %v", body["message"])
			}
			if body["error"] != tt.wantError {
				t.Errorf("error = %q, want %q", body["error"], tt.wantError)
			}
			if _, ok := body["components"]; ok {
				t.Error("unhealthy report should not list components")
			}
			assertCORS(t, rec, "GET, OPTIONS")
		})
	}
}

func TestHealthProbesEveryRequest(t *testing.T) {
	opener := workingVault()
	ts := newTestServer(t, opener, newFakeStore(t, nil), false)

	do(t, ts, http.MethodGet, "/health")
	do(t, ts, http.MethodGet, "/health")
	if got := opener.opens.Load(); got != 2 {
		t.Errorf("vault opened %d times, want 2", got)
	}
}
