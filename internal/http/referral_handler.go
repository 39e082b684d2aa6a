package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/domain"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/repository"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/service"
)

const maxBodyBytes = 1 << 20

type ReferralHandler struct {
	svc    *service.ReferralService
	logger *zap.Logger
}

func NewReferralHandler(svc *service.ReferralService, logger *zap.Logger) *ReferralHandler {
	return &ReferralHandler{svc: svc, logger: logger}
}

// Submit handles POST /referrals from the public form.
func (h *ReferralHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub domain.NewReferral
	if err := readBodyJSON(r, maxBodyBytes, &sub); err != nil {
		writeJSON(w, http.StatusBadRequest, fail(KindValidation, "invalid request body"))
		return
	}

	rec, err := h.svc.Submit(r.Context(), sub)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// FetchAll handles GET /referrals for the admin dashboard. The full
// collection is returned; status filtering happens client-side.
func (h *ReferralHandler) FetchAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.FetchAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if records == nil {
		records = []domain.Referral{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ApplyUpdate handles PATCH /referrals. The body carries the target id
// plus the fields to merge.
func (h *ReferralHandler) ApplyUpdate(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, fail(KindValidation, "invalid request body"))
		return
	}

	id, _ := payload["id"].(string)
	delete(payload, "id")

	rec, err := h.svc.ApplyUpdate(r.Context(), id, payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Stats handles GET /referrals/stats.
func (h *ReferralHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeError maps service/store errors onto the HTTP taxonomy. No error
// is retried; every failure is terminal for its request.
func (h *ReferralHandler) writeError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest,
			fail(KindValidation, verr.Error(), verr.Fields...))
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound,
			fail(KindNotFound, "referral not found"))
	case errors.Is(err, repository.ErrInvalidPatch):
		writeJSON(w, http.StatusBadRequest,
			fail(KindInvalidPatch, err.Error()))
	default:
		h.logger.Error("storage failure", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError,
			fail(KindStorage, "storage failure"))
	}
}
