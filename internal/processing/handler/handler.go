// Package handler exposes the read side of the processing job registry.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gazette/internal/processing/models"
	id "gazette/pkg/domain"
	"gazette/pkg/platform/httputil"
	"gazette/pkg/requestcontext"
)

// Service defines the job status reads the handler needs.
type Service interface {
	Get(ctx context.Context, jobID id.JobID) (*models.JobStatus, error)
}

// Handler wires job status endpoints to the processing service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the processing routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/processing/jobs/{id}", h.handleGetJob)
}

// handleGetJob handles GET /processing/jobs/{id}.
func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := id.ParseJobID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	job, err := h.service.Get(ctx, jobID)
	if err != nil {
		h.logger.ErrorContext(ctx, "job status lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"job_id", jobID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, job)
}
