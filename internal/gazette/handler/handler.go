// Package handler wires the gazette engine's operations onto HTTP.
// Handlers stay thin: decode, call the service, map the coded error.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"gazette/internal/gazette/linker"
	"gazette/internal/gazette/models"
	"gazette/internal/gazette/service"
	"gazette/internal/platform/middleware"
	id "gazette/pkg/domain"
	dErrors "gazette/pkg/domain-errors"
	"gazette/pkg/platform/httputil"
	"gazette/pkg/requestcontext"
)

// Service defines the interface for gazette engine operations.
type Service interface {
	VerifySequence(ctx context.Context, issueNumber string, noticeType models.NoticeType) (*models.SequenceReport, error)
	ReportMissing(ctx context.Context, issueNumber, startItem, endItem string, noticeType models.NoticeType, note string) (*models.CaptureGapReport, error)
	CheckDuplicates(ctx context.Context, issueNumber, itemNumber string) (*models.DuplicateReport, error)
	CrossReference(ctx context.Context, issueNumber string, personID *id.PersonID) (*models.CrossReferenceReport, error)
	LinkIdentityFamily(ctx context.Context, in linker.FamilyInput) (*models.LinkResult, error)
	GetFamily(ctx context.Context, key id.LinkageKey) (*models.IdentityFamily, error)
	GetFamilyByMember(ctx context.Context, recordID id.RecordID) (*models.IdentityFamily, error)
	UpdateMaster(ctx context.Context, key id.LinkageKey, shared models.SharedAttributes) (*models.IdentityFamily, error)
	MarkVerified(ctx context.Context, recordID id.RecordID, note string) (*models.GazetteRecord, error)
	ReconcileItemNumber(ctx context.Context, recordID id.RecordID, corrected string) (*models.GazetteRecord, error)
}

var _ Service = (*service.Service)(nil)

// Handler wires gazette endpoints to the engine service.
type Handler struct {
	service   Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

// New constructs a gazette handler with its dependencies.
func New(svc Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		service:   svc,
		logger:    logger,
		validator: validator,
	}
}

// Register mounts the gazette routes. Verification reports are read-only
// and stay open; linking, master updates, and verification actions require
// an authenticated reviewer.
func (h *Handler) Register(r chi.Router) {
	r.Get("/gazette/issues/{issue}/sequence", h.handleVerifySequence)
	r.Post("/gazette/issues/{issue}/missing-report", h.handleReportMissing)
	r.Get("/gazette/issues/{issue}/duplicates", h.handleCheckDuplicates)
	r.Get("/gazette/issues/{issue}/cross-reference", h.handleCrossReference)
	r.Get("/gazette/families/{key}", h.handleGetFamily)
	r.Get("/gazette/records/{id}/family", h.handleGetFamilyByMember)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Post("/gazette/families", h.handleLinkFamily)
		r.Patch("/gazette/families/{key}/master", h.handleUpdateMaster)
		r.Post("/gazette/records/{id}/verify", h.handleVerify)
		r.Patch("/gazette/records/{id}/item-number", h.handleReconcileItem)
	})
}

// handleVerifySequence handles GET /gazette/issues/{issue}/sequence.
func (h *Handler) handleVerifySequence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.service.VerifySequence(ctx, issueParam(r), models.NoticeType(r.URL.Query().Get("notice_type")))
	if err != nil {
		h.writeError(ctx, w, "sequence verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// handleReportMissing handles POST /gazette/issues/{issue}/missing-report.
func (h *Handler) handleReportMissing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[MissingReportRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	report, err := h.service.ReportMissing(ctx, issueParam(r),
		req.StartItemNumber, req.EndItemNumber,
		models.NoticeType(req.NoticeType), req.Note)
	if err != nil {
		h.writeError(ctx, w, "missing-range report failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// handleCheckDuplicates handles GET /gazette/issues/{issue}/duplicates.
func (h *Handler) handleCheckDuplicates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.service.CheckDuplicates(ctx, issueParam(r), r.URL.Query().Get("item_number"))
	if err != nil {
		h.writeError(ctx, w, "duplicate check failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// handleCrossReference handles GET /gazette/issues/{issue}/cross-reference.
func (h *Handler) handleCrossReference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var personID *id.PersonID
	if raw := r.URL.Query().Get("person_id"); raw != "" {
		pid, err := id.ParsePersonID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		personID = &pid
	}

	report, err := h.service.CrossReference(ctx, issueParam(r), personID)
	if err != nil {
		h.writeError(ctx, w, "cross-reference failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// handleLinkFamily handles POST /gazette/families.
func (h *Handler) handleLinkFamily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[LinkFamilyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.LinkIdentityFamily(ctx, req.ParsedInput())
	if err != nil {
		h.writeError(ctx, w, "family link failed", err)
		return
	}

	h.logger.InfoContext(ctx, "family link handled",
		"request_id", requestID,
		"linkage_key", result.LinkageKey.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// handleGetFamily handles GET /gazette/families/{key}.
func (h *Handler) handleGetFamily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, err := keyParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	family, err := h.service.GetFamily(ctx, key)
	if err != nil {
		h.writeError(ctx, w, "family lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFamily(family))
}

// handleGetFamilyByMember handles GET /gazette/records/{id}/family.
func (h *Handler) handleGetFamilyByMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	family, err := h.service.GetFamilyByMember(ctx, recordID)
	if err != nil {
		h.writeError(ctx, w, "family lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFamily(family))
}

// handleUpdateMaster handles PATCH /gazette/families/{key}/master.
func (h *Handler) handleUpdateMaster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	key, err := keyParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateMasterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	family, err := h.service.UpdateMaster(ctx, key, req.SharedAttributes())
	if err != nil {
		h.writeError(ctx, w, "master update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFamily(family))
}

// handleVerify handles POST /gazette/records/{id}/verify.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.MarkVerified(ctx, recordID, req.Note)
	if err != nil {
		h.writeError(ctx, w, "verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// handleReconcileItem handles PATCH /gazette/records/{id}/item-number.
func (h *Handler) handleReconcileItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ReconcileItemRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.ReconcileItemNumber(ctx, recordID, req.ItemNumber)
	if err != nil {
		h.writeError(ctx, w, "item number reconciliation failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func issueParam(r *http.Request) string {
	return chi.URLParam(r, "issue")
}

// keyParam extracts and unescapes the linkage key path segment. Keys are
// plain slugs today, but unescaping keeps the route robust if a source
// slug ever carries an escaped character.
func keyParam(r *http.Request) (id.LinkageKey, error) {
	raw := chi.URLParam(r, "key")
	key, err := url.PathUnescape(raw)
	if err != nil || key == "" {
		return "", dErrors.New(dErrors.CodeValidation, "linkage key is required")
	}
	return id.LinkageKey(key), nil
}
