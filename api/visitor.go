package api

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	apierrors "github.com/advayc/visits/internal/errors"
	"github.com/advayc/visits/internal/store"
)

type countFunc func(ctx context.Context, st store.Store) (int64, error)

// getVisitor returns the current count, creating the record at zero if absent.
func (s *Server) getVisitor(w http.ResponseWriter, r *http.Request) {
	s.serveCount(w, r, s.currentCount)
}

// postVisitor increments the count and returns the new value.
func (s *Server) postVisitor(w http.ResponseWriter, r *http.Request) {
	s.serveCount(w, r, s.increment)
}

func (s *Server) serveCount(w http.ResponseWriter, r *http.Request, fn countFunc) {
	s.log.Info("Visitor counter function processed a request.", zap.String("method", r.Method))

	ctx := r.Context()
	st, err := s.conn.get(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	count, err := fn(ctx, st)
	if err != nil {
		if apierrors.KindOf(err) == apierrors.KindUnauthorized {
			// The connection secret may have been rotated.
			s.conn.invalidate(st)
		}
		s.writeError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.VisitorCount.Set(float64(count))
	}
	setCORS(w.Header(), visitorRoute)
	writeJSON(w, http.StatusOK, countBody{Count: count})
}

func (s *Server) currentCount(ctx context.Context, st store.Store) (int64, error) {
	rec, err := st.ReadCounter(ctx)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Info("Counter document not found, creating new one", zap.Error(err))
		if err := st.CreateCounter(ctx, 0); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Count, nil
}

// increment is a plain read followed by an unconditional replace. Two
// concurrent calls can both read N and both write N+1.
func (s *Server) increment(ctx context.Context, st store.Store) (int64, error) {
	rec, err := st.ReadCounter(ctx)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Info("Counter document not found, creating new one", zap.Error(err))
		if err := st.CreateCounter(ctx, 1); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	rec.Count++
	if err := st.ReplaceCounter(ctx, rec); err != nil {
		return 0, err
	}
	return rec.Count, nil
}
