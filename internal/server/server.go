// Package server serves the persisted events file over HTTP for browser clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/filter"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/logger"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/storage"
)

const shutdownTimeout = 5 * time.Second

type handler struct {
	store *storage.Storage
}

// NewRouter returns the HTTP routes for the events file held by store.
// The file is re-read on every request so a new scrape is visible at once.
func NewRouter(store *storage.Storage) http.Handler {
	h := &handler{store: store}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Options("/events", h.preflight)
	r.Get("/events", h.events)
	r.Post("/events", h.events)
	r.Options("/events/{id}", h.preflight)
	r.Get("/events/{id}", h.event)

	return r
}

// cors allows any origin, the calendar page embedding the data is hosted elsewhere
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		next.ServeHTTP(w, r)
	})
}

func (h *handler) preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *handler) events(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	f, err := filter.Criteria{
		Titles:       query["title"],
		Locations:    query["location"],
		Organizers:   query["organizer"],
		Dates:        query.Get("dates"),
		WeekendsOnly: query.Get("weekends") == "true" || query.Get("weekends") == "1",
	}.Build(time.Now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "Invalid filter",
			Message: err.Error(),
		})
		return
	}

	events, err := h.store.Load()
	if err != nil {
		logger.Error("Error in events handler", logger.Fields{"path": h.store.Path()}, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "Failed to fetch events data",
			Message: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, f.Apply(events))
}

func (h *handler) event(w http.ResponseWriter, r *http.Request) {
	evt, err := h.store.GetEventByID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{
			Error:   "Event not found",
			Message: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, evt)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		logger.Warn("Error writing response", logger.Fields{"error": err.Error()})
	}
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving events", logger.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("Server stopped", nil)
		return nil
	}
}
