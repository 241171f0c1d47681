// Package api serves the artifacts stored by the driver runs over HTTP.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vocdoni/proof-artifacts/log"
	"github.com/vocdoni/proof-artifacts/storage"
)

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Storage *storage.Storage
}

// API type represents the read only API HTTP server.
type API struct {
	router  *chi.Mux
	storage *storage.Storage
}

// New creates a new API instance with the given configuration. The API is
// served by passing its Router to an HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Storage == nil {
		return nil, fmt.Errorf("missing storage instance")
	}
	a := &API{
		storage: conf.Storage,
	}
	a.initRouter()
	return a, nil
}

// Router returns the chi router of the API.
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	handlers := []struct {
		endpoint string
		handler  http.HandlerFunc
	}{
		{PingEndpoint, func(w http.ResponseWriter, _ *http.Request) { httpWriteOK(w) }},
		{TargetsEndpoint, a.targets},
		{TargetArtifactsEndpoint, a.targetArtifacts},
		{TargetRawArtifactsEndpoint, a.targetRawArtifacts},
		{RunsEndpoint, a.runs},
		{RunEndpoint, a.run},
		{RunArtifactsEndpoint, a.runArtifacts},
	}
	for _, h := range handlers {
		log.Infow("register handler", "endpoint", h.endpoint, "method", "GET")
		a.router.Get(h.endpoint, h.handler)
	}
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.Timeout(45 * time.Second))

	a.registerHandlers()
}
