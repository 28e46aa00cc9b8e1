// Package api is the headless JSON API: training and EDA without uploads or accounts.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	wire "tabml/adapters/api"
	"tabml/app"
	"tabml/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App serves the headless API on a chi router
type App struct {
	router   *chi.Mux
	training *app.TrainingService
	eda      *app.EDAService
}

// NewApp creates the router with middleware and routes registered
func NewApp(training *app.TrainingService, eda *app.EDAService) *App {
	a := &App{
		router:   chi.NewRouter(),
		training: training,
		eda:      eda,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the API routes
func (a *App) setupRoutes() {
	a.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.router.Route("/api", func(r chi.Router) {
		r.Post("/train", a.handleTrain)
		r.Get("/eda", a.handleEDA)
	})
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req wire.TrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.InvalidInput("Invalid request body: "+err.Error()))
		return
	}

	result, err := a.training.Train(r.Context(), req.ToDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.NewTrainResponse(req, result))
}

func (a *App) handleEDA(w http.ResponseWriter, r *http.Request) {
	report, err := a.eda.Analyze(r.Context(), r.URL.Query().Get("filename"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := wire.NewErrorResponse(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s failed (request %s): %v", r.Method, r.URL.Path, middleware.GetReqID(r.Context()), err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}
