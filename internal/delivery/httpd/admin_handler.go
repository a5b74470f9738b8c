package httpd

import (
	"net/http"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/appgenerator/waitlist-service/pkg/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) UpdateSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	var req models.UpdateStatusRequest
	if err := utils.ReadJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sub, err := h.waitlistService.UpdateStatus(r.Context(), id, req.Status, req.AppURL, h.now())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, sub)
}

func (h *Handler) UpdateCap(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCapRequest
	if err := utils.ReadJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.waitlistService.UpdateCap(r.Context(), req.Cap, h.now())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, resp)
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 20)

	filter := models.ListSubmissionsFilter{
		WeekKey: r.URL.Query().Get("week"),
		Status:  r.URL.Query().Get("status"),
	}

	resp, err := h.waitlistService.ListSubmissions(r.Context(), filter, page, limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, resp)
}
