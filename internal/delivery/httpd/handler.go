package httpd

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/appgenerator/waitlist-service/internal/middleware"
	"github.com/appgenerator/waitlist-service/internal/service"
	"github.com/appgenerator/waitlist-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	waitlistService service.WaitlistService
	documentService service.DocumentService
	db              Pinger
	adminToken      string
	logger          zerolog.Logger
	now             func() time.Time
}

func NewHandler(
	waitlistService service.WaitlistService,
	documentService service.DocumentService,
	db Pinger,
	adminToken string,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		waitlistService: waitlistService,
		documentService: documentService,
		db:              db,
		adminToken:      adminToken,
		logger:          logger,
		now:             time.Now,
	}
}

// WithClock replaces the wall clock used for week keys and ETAs.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/waitlist", func(r chi.Router) {
			r.Post("/submissions", h.Submit)
			r.Get("/submissions", h.GetSubmissionByEmail)
			r.Get("/status", h.GetStatus)
			r.Get("/eta", h.GetETA)
			r.Get("/documents", h.ListDocuments)
		})

		api.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(h.adminToken, h.logger))
			r.Put("/cap", h.UpdateCap)
			r.Get("/submissions", h.ListSubmissions)
			r.Put("/submissions/{id}/status", h.UpdateSubmissionStatus)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "waitlist-service",
		"timestamp": h.now().UTC(),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error().Err(err).Msg("Health check: database unreachable")
			response["status"] = "unhealthy"
			response["database"] = "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, response)
			return
		}
		response["database"] = "ok"
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, "Submission not found")
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "status must be one of pending, processing, completed")
	case errors.Is(err, service.ErrInvalidCap):
		writeError(w, http.StatusBadRequest, "invalid_cap")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.requestLogger(r).Error().Err(err).Str("path", r.URL.Path).Msg("Service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// requestLogger prefers the request-scoped logger set by ContextLogger.
func (h *Handler) requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.logger
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	utils.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	utils.WriteError(w, status, message)
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
