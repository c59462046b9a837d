package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/spyro-labs/spyro-relayer/core"
	"github.com/spyro-labs/spyro-relayer/log"
)

const shutdownTimeout = 5 * time.Second

// APIServer exposes the results of the running relayer over HTTP.
type APIServer struct {
	results *ResultCache
	metrics http.Handler
	router  chi.Router
}

type Option func(*APIServer)

// WithMetrics serves h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(srv *APIServer) {
		srv.metrics = h
	}
}

// NewAPIServer serves the results held by results. A nil results cache leaves only
// the routes added by opts, which is how the metrics endpoint runs without the API.
func NewAPIServer(results *ResultCache, opts ...Option) *APIServer {
	srv := &APIServer{results: results}
	for _, opt := range opts {
		opt(srv)
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if results != nil {
		r.Get("/healthz", srv.healthz)
		r.Route("/results", func(r chi.Router) {
			r.Get("/", srv.listResults)
			r.Get("/{chain}/{emitter}/{sequence}", srv.getResult)
		})
	}
	if srv.metrics != nil {
		r.Method(http.MethodGet, "/metrics", srv.metrics)
	}
	srv.router = r
	return srv
}

func (srv *APIServer) Handler() http.Handler {
	return otelhttp.NewHandler(srv.router, "srly-api")
}

// Start serves the API on listenAddress until ctx is done.
func (srv *APIServer) Start(ctx context.Context, listenAddress string) error {
	logger := log.GetLogger().WithModule("server")
	hs := &http.Server{
		Addr:              listenAddress,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "API server listening", "addr", listenAddress)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "API server on %s stopped", listenAddress)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "failed to shut down the API server")
		}
		return nil
	}
}

func (srv *APIServer) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"results": srv.results.Len(),
	})
}

func (srv *APIServer) listResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", s))
			return
		}
		limit = n
	}
	status := core.Status(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, srv.results.Results(status, limit))
}

func (srv *APIServer) getResult(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseMessageID(fmt.Sprintf("%s/%s/%s",
		chi.URLParam(r, "chain"), chi.URLParam(r, "emitter"), chi.URLParam(r, "sequence")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, ok := srv.results.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no result for message %s", id))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetLogger().WithModule("server").Error("failed to write response", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
