package httpd

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/appgenerator/waitlist-service/pkg/utils"
)

// Submit answers 200 for both outcomes; a rejection is a normal result.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := utils.ReadJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	result, err := h.waitlistService.Submit(r.Context(), &req, h.now())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.waitlistService.GetStatus(r.Context(), h.now())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) GetSubmissionByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if strings.TrimSpace(email) == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	sub, err := h.waitlistService.GetByEmail(r.Context(), email)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) GetETA(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(r.URL.Query().Get("position"))
	if err != nil || position < 1 {
		writeError(w, http.StatusBadRequest, "position must be a positive integer")
		return
	}

	resp, err := h.waitlistService.ETA(position, h.now())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	resp, err := h.documentService.ListDocuments(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
