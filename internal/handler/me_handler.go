package handler

import (
	"net/http"

	"github.com/mquernel/portfolio/backend/pkg/auth"
)

// MeHandler は現在の認証済みユーザー情報を返すハンドラ
type MeHandler struct{}

// NewMeHandler は MeHandler を生成する
func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

type meResponse struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Me は GET /api/me を処理する
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	roles := id.Roles
	if roles == nil {
		roles = []string{}
	}
	writeJSON(w, http.StatusOK, meResponse{ID: id.ID, Email: id.Email, Roles: roles})
}
