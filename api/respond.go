package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	apierrors "github.com/advayc/visits/internal/errors"
	"github.com/advayc/visits/internal/middleware"
)

const (
	allowHeaders     = "Content-Type, Authorization"
	preflightMaxAge  = 86400
	genericErrorText = "Please try again later"
)

func setCORS(h http.Header, rt route) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", rt.methods)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
}

// preflight answers OPTIONS without touching any backend.
func preflight(rt route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORS(w.Header(), rt)
		w.Header().Set("Access-Control-Max-Age", strconv.Itoa(preflightMaxAge))
		w.WriteHeader(http.StatusOK)
	}
}

// JSON response helpers
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type countBody struct {
	Count int64 `json:"count"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// details returns err's text in development and a generic message otherwise.
func (s *Server) details(err error) string {
	if s.development {
		return err.Error()
	}
	return genericErrorText
}

// writeError reports a visitor failure with a status derived from its kind.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apierrors.StatusCode(err)
	s.log.Error("Error in visitor counter",
		zap.Error(err),
		zap.Int("status", status),
		zap.String("request_id", middleware.RequestID(r.Context())),
	)
	setCORS(w.Header(), visitorRoute)
	writeJSON(w, status, errorBody{Error: "Internal server error", Details: s.details(err)})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if rt := routeOf(r); rt != nil {
		setCORS(w.Header(), *rt)
	}
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
}
