package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/webcast/pkg/session"
)

// stateReporter is the part of a Session the health check reads.
type stateReporter interface {
	State() session.State
}

// adminRouter serves Prometheus metrics and a health check for the session.
func adminRouter(gatherer prometheus.Gatherer, sess stateReporter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		state := sess.State()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if state != session.StateOpen {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		fmt.Fprintln(w, state)
	})

	return r
}
