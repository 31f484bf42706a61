package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/credit-approval/internal/http/respond"
)

// Pinger reports whether backing storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports uptime and storage reachability.
type HealthHandler struct {
	startedAt time.Time
	storage   Pinger
}

// NewHealthHandler creates a health endpoint handler. storage may be nil.
func NewHealthHandler(startedAt time.Time, storage Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, storage: storage}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body := map[string]string{
		"status":  "ok",
		"storage": "ok",
		"uptime":  time.Since(h.startedAt).Truncate(time.Second).String(),
	}
	if h.storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.storage.Ping(ctx); err != nil {
			body["status"], body["storage"] = "degraded", "unreachable"
			respond.JSON(w, http.StatusServiceUnavailable, "storage unreachable", body)
			return
		}
	}
	respond.JSON(w, http.StatusOK, "ok", body)
}
