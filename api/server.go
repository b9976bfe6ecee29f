package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/advayc/visits/internal/metrics"
	"github.com/advayc/visits/internal/middleware"
	"github.com/advayc/visits/internal/secrets"
	"github.com/advayc/visits/internal/store"
)

// Options configures a Server.
type Options struct {
	Resolver  *secrets.Resolver
	OpenStore store.Opener

	// Development puts real error text in responses.
	Development bool

	Logger  *zap.Logger
	Metrics *metrics.Metrics // optional
	Now     func() time.Time
}

// Server serves /visitor and /health. The same routes are also mounted
// under /api, which is where Azure Functions forwards them.
type Server struct {
	resolver    *secrets.Resolver
	conn        *connection
	development bool
	log         *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time

	handler http.Handler
	// owned is released by Close after the connection.
	owned io.Closer
}

type route struct {
	path    string
	methods string // Access-Control-Allow-Methods
}

var (
	visitorRoute = route{path: "/visitor", methods: "GET, POST, OPTIONS"}
	healthRoute  = route{path: "/health", methods: "GET, OPTIONS"}
)

// routeOf returns the route r addresses, or nil.
func routeOf(r *http.Request) *route {
	p := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api"), "/")
	switch p {
	case visitorRoute.path:
		return &visitorRoute
	case healthRoute.path:
		return &healthRoute
	}
	return nil
}

func routeLabel(r *http.Request) string {
	if rt := routeOf(r); rt != nil {
		return rt.path
	}
	return "other"
}

// New builds a Server. Nothing is contacted until the first request.
func New(opts Options) *Server {
	s := &Server{
		resolver:    opts.Resolver,
		conn:        &connection{resolver: opts.Resolver, open: opts.OpenStore},
		development: opts.Development,
		log:         opts.Logger,
		metrics:     opts.Metrics,
		now:         opts.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}

	router := httprouter.New()
	router.HandleOPTIONS = false
	router.HandleMethodNotAllowed = true
	router.MethodNotAllowed = http.HandlerFunc(s.methodNotAllowed)
	router.NotFound = http.HandlerFunc(notFound)

	for _, prefix := range []string{"", "/api"} {
		router.HandlerFunc(http.MethodGet, prefix+visitorRoute.path, s.getVisitor)
		router.HandlerFunc(http.MethodPost, prefix+visitorRoute.path, s.postVisitor)
		router.HandlerFunc(http.MethodOptions, prefix+visitorRoute.path, preflight(visitorRoute))

		router.HandlerFunc(http.MethodGet, prefix+healthRoute.path, s.getHealth)
		router.HandlerFunc(http.MethodOptions, prefix+healthRoute.path, preflight(healthRoute))
	}

	s.handler = middleware.WithRequestID(middleware.Observe(s.log, s.metrics, routeLabel)(router))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close releases the cached store connection and any backend the server owns.
func (s *Server) Close() error {
	err := s.conn.close()
	if s.owned != nil {
		err = errors.Join(err, s.owned.Close())
		s.owned = nil
	}
	return err
}
