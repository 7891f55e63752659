package bench

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/AnatoleLucet/reactive"
	"github.com/AnatoleLucet/reactive/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Server runs benches on demand on a single runtime and exposes their results
// and the runtime's metrics over HTTP.
// The runtime's event loop must be running (see Runtime.Run): benches are
// posted to it so that they run on the loop goroutine.
type Server struct {
	rt     *reactive.Runtime
	cfg    config.Config
	reg    *prometheus.Registry
	logger zerolog.Logger

	runs     prometheus.Counter
	failures prometheus.Counter

	mu   sync.Mutex
	last *Stats
}

type result struct {
	stats Stats
	err   error
}

// NewServer creates a server whose runtime metrics are registered on reg.
func NewServer(rt *reactive.Runtime, cfg config.Config, reg *prometheus.Registry, logger zerolog.Logger) *Server {
	factory := promauto.With(reg)

	return &Server{
		rt:     rt,
		cfg:    cfg,
		reg:    reg,
		logger: logger,

		runs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reactive",
			Subsystem: "bench",
			Name:      "runs_total",
			Help:      "Total number of bench runs",
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reactive",
			Subsystem: "bench",
			Name:      "failures_total",
			Help:      "Total number of failed bench runs",
		}),
	}
}

// Run runs one bench on the server's runtime and waits for its result.
func (s *Server) Run(ctx context.Context, cfg config.Config) (Stats, error) {
	done := make(chan result, 1)

	s.rt.Post(func() {
		stats, err := Run(ctx, s.rt, cfg)
		done <- result{stats, err}
	})

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}

	s.runs.Inc()
	if res.err != nil {
		s.failures.Inc()
		return res.stats, res.err
	}

	s.mu.Lock()
	s.last = &res.stats
	s.mu.Unlock()

	return res.stats, nil
}

// Last returns the stats of the last successful run.
func (s *Server) Last() (Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return Stats{}, false
	}

	return *s.last, true
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, ok := s.Last()
		if !ok {
			writeJSONError(w, http.StatusNotFound, "no bench has run yet")
			return
		}

		writeJSON(w, http.StatusOK, stats)
	})

	r.Post("/run", func(w http.ResponseWriter, r *http.Request) {
		cfg, err := s.requestConfig(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		z := s.logger.Info().Str("scenario", cfg.Scenario).Int("size", cfg.Size).Int("writes", cfg.Writes)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Msg("bench start")

		stats, err := s.Run(r.Context(), cfg)
		if err != nil {
			s.logger.Error().Err(err).Msg("bench failed")
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		s.logger.Info().Dur("elapsed", stats.Elapsed).Int("runs", stats.Runs).Msg("bench end")
		writeJSON(w, http.StatusOK, stats)
	})

	r.Get("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}).ServeHTTP)

	return r
}

// requestConfig applies the scenario, size and writes query parameters to the server's config.
func (s *Server) requestConfig(r *http.Request) (config.Config, error) {
	cfg := s.cfg
	q := r.URL.Query()

	if v := q.Get("scenario"); v != "" {
		cfg.Scenario = v
	}

	for name, dst := range map[string]*int{"size": &cfg.Size, "writes": &cfg.Writes} {
		v := q.Get(name)
		if v == "" {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, xerrors.Errorf("invalid %s %q", name, v)
		}
		*dst = n
	}

	return cfg, cfg.Validate()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
		"code":  status,
	})
}
