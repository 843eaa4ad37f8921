package handler

import (
	"net/http"
	"time"
)

type statusResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Status は GET /api/status を処理する（ストアへの ping を含む）
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	now := time.Now().Format(time.RFC3339)
	if err := h.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{
			Status:    "unhealthy",
			Message:   "store unreachable",
			Timestamp: now,
		})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:    "ok",
		Message:   "API is running",
		Timestamp: now,
	})
}
