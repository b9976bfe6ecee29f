package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

type healthComponents struct {
	KeyVault string `json:"keyvault"`
	Function string `json:"function"`
}

type healthBody struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Components *healthComponents `json:"components,omitempty"`
	Error      string            `json:"error,omitempty"`
	Timestamp  string            `json:"timestamp,omitempty"`
}

// getHealth probes the key vault by fetching the connection secret once.
// A failed probe degrades the report but is still a 200; only a failure to
// acquire the credential at all is a 503.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.log.Info("Health check requested.")
	setCORS(w.Header(), healthRoute)

	ctx := r.Context()
	binding, err := s.resolver.Open(ctx, "")
	if err != nil {
		s.log.Error("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, healthBody{
			Status:  statusUnhealthy,
			Message: "Health check failed",
			Error:   s.details(err),
		})
		return
	}

	body := healthBody{
		Status:     statusHealthy,
		Message:    "Azure Resume API is running",
		Components: &healthComponents{KeyVault: statusHealthy, Function: statusHealthy},
	}
	if _, err := binding.ConnectionSecret(ctx); err != nil {
		s.log.Warn("Key vault probe failed", zap.String("vault", binding.URL), zap.Error(err))
		body.Status = statusDegraded
		body.Message = "Azure Resume API is running with degraded components"
		body.Components.KeyVault = statusUnhealthy
	}
	if s.metrics != nil {
		s.metrics.ObserveProbe(body.Components.KeyVault == statusHealthy)
	}
	body.Timestamp = s.now().UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, body)
}
