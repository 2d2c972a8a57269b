package audit

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, rawLimit string) ([]*Log, error)
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

// ListLogs handles GET /audit-logs?limit=N
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Service.List(r.Context(), r.URL.Query().Get("limit"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, LogsResponse{Logs: logs})
}
