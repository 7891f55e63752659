package bench

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnatoleLucet/reactive"
	"github.com/AnatoleLucet/reactive/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	rt := reactive.NewRuntime(reactive.WithLogger(zerolog.Nop()), reactive.WithRegisterer(reg))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go rt.Run(ctx)

	return NewServer(rt, config.Default(), reg, zerolog.Nop()).Handler()
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))

	return w
}

func TestServer(t *testing.T) {
	t.Run("healthz", func(t *testing.T) {
		w := serve(newTestServer(t), http.MethodGet, "/healthz")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("run and stats", func(t *testing.T) {
		h := newTestServer(t)

		w := serve(h, http.MethodGet, "/stats")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = serve(h, http.MethodPost, "/run?scenario=fanout&size=3&writes=2")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var stats Stats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, "fanout", stats.Scenario)
		assert.Equal(t, 6, stats.Runs)

		w = serve(h, http.MethodGet, "/stats")
		require.Equal(t, http.StatusOK, w.Code)

		var last Stats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &last))
		assert.Equal(t, stats, last)
	})

	t.Run("bad requests", func(t *testing.T) {
		h := newTestServer(t)

		for _, target := range []string{"/run?size=abc", "/run?scenario=star", "/run?writes=-1"} {
			w := serve(h, http.MethodPost, target)
			assert.Equal(t, http.StatusBadRequest, w.Code, target)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		}
	})

	t.Run("metrics", func(t *testing.T) {
		h := newTestServer(t)

		w := serve(h, http.MethodPost, "/run?scenario=chain&size=2&writes=3")
		require.Equal(t, http.StatusOK, w.Code)

		w = serve(h, http.MethodGet, "/metrics")
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		assert.Contains(t, body, "reactive_bench_runs_total 1")
		assert.Contains(t, body, "reactive_scheduler_flushes_total 3")
	})
}
