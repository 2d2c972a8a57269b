package shift

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, startParam, endParam string) ([]*Shift, error)
	Create(ctx context.Context, actor *session.Identity, dto ShiftDTO) (*Shift, error)
	Update(ctx context.Context, actor *session.Identity, id string, dto ShiftDTO) (*Shift, error)
	Delete(ctx context.Context, actor *session.Identity, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// ListShifts handles GET /shifts?start_at=&end_at=
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shifts, err := h.Service.List(r.Context(), q.Get("start_at"), q.Get("end_at"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ShiftsResponse{Shifts: shifts})
}

// CreateShift handles POST /shifts
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthorized)
		return
	}

	var dto ShiftDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	s, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, s)
}

// UpdateShift handles PUT /shifts/{id}
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthorized)
		return
	}

	var dto ShiftDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	s, err := h.Service.Update(r.Context(), actor, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, s)
}

// DeleteShift handles DELETE /shifts/{id}
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthorized)
		return
	}

	if err := h.Service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteNoContent(w)
}
