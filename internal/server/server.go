// Package server serves a graph store over HTTP.
//
// The JSON routes mirror the data service the web client was written
// against: graph count, single graphs by rank index, random graphs and
// occurrence matrices. The SVG routes render server side through the same
// graph view the CLI uses, and /ws hosts one interactive view per
// connection so a thin client can forward clicks and draw the returned
// scene snapshots.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/tsa-lab/tsaview/pkg/buildinfo"
	"github.com/tsa-lab/tsaview/pkg/cache"
	"github.com/tsa-lab/tsaview/pkg/store"
)

// Options configures a Server. Zero values fall back to the defaults below.
type Options struct {
	Addr            string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Width and Height size rendered views when a request does not.
	Width  float64
	Height float64

	// Color pins the accent color. Empty rotates the palette per render.
	Color string

	// Animate gives WebSocket sessions a timed animator, so snapshots carry
	// transitions for the client to play.
	Animate bool

	// CacheTTL is how long rendered artifacts stay cached.
	CacheTTL time.Duration

	// MaxMessageSize caps an incoming WebSocket message in bytes. Larger
	// messages close the session.
	MaxMessageSize int64
}

const (
	defaultAddr            = ":8080"
	defaultWidth           = 800
	defaultHeight          = 600
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxMessageSize  = 1 << 20
)

func (o Options) withDefaults() Options {
	if o.Addr == "" {
		o.Addr = defaultAddr
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = defaultShutdownTimeout
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = cache.ArtifactTTL
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = defaultMaxMessageSize
	}
	return o
}

// Server serves one graph store.
type Server struct {
	opts   Options
	store  store.Store
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
	router chi.Router

	sessions atomic.Int64
}

// New creates a server over st. A nil cache disables artifact caching and
// a nil logger discards output.
func New(st store.Store, c cache.Cache, logger *log.Logger, opts Options) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		opts:   opts.withDefaults(),
		store:  st,
		cache:  c,
		keyer:  cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Get().CacheScope()),
		logger: logger,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the HTTP handler with every route registered.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/num-graphs", s.handleNumGraphs)
		r.Get("/graph/random", s.handleRandomGraph)
		r.Get("/graph/{n}", s.handleGraph)
		r.Get("/graph/{n}/svg", s.handleGraphSVG)
		r.Get("/occ-mat/{topx}", s.handleOccurrenceMatrix)
		r.Get("/prevalence/{topx}/svg", s.handlePrevalenceSVG)
	})

	r.Get("/ws", s.handleSession)
	return r
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.opts.Addr, "store", s.store.ID())
		if err := srv.ListenAndServe(); !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
