package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mquernel/portfolio/backend/internal/model"
	"github.com/mquernel/portfolio/backend/internal/service"
	"github.com/mquernel/portfolio/backend/pkg/auth"
)

// maxBodyBytes caps the contact payload; a full 5000-rune message fits easily.
const maxBodyBytes = 64 << 10

const (
	msgSent        = "Votre message a été envoyé avec succès"
	msgSavedOnly   = "Votre message a été enregistré (email non envoyé)"
	msgEmailFailed = "L'email de notification n'a pas pu être envoyé"
	msgServerError = "Une erreur est survenue lors de l'envoi du message"
)

// clientMessages maps validation kinds to the message shown to the visitor.
var clientMessages = map[service.ErrorKind]string{
	service.KindMalformedRequest:   "Données JSON invalides",
	service.KindMissingField:       "Tous les champs sont requis",
	service.KindInvalidEmail:       "Email invalide",
	service.KindInvalidSenderData:  "Données invalides pour l'expéditeur",
	service.KindInvalidMessageData: "Données invalides pour le message",
}

// ContactHandler handles contact form submission and operator listing.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

type submitResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SenderID     int64  `json:"sender_id"`
	MessageID    int64  `json:"message_id"`
	EmailWarning string `json:"email_warning,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	sub, err := service.DecodeSubmission(r.Body)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	result, err := h.contactService.Submit(r.Context(), sub)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	resp := submitResponse{
		Success:   true,
		Message:   msgSent,
		SenderID:  result.SenderID,
		MessageID: result.MessageID,
	}
	if !result.Notified() {
		resp.Message = msgSavedOnly
		resp.EmailWarning = msgEmailFailed
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *ContactHandler) writeSubmitError(w http.ResponseWriter, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		slog.Error("unexpected contact error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgServerError, Details: "unexpected failure"})
		return
	}
	if msg, ok := clientMessages[se.Kind]; ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgServerError, Details: se.Detail})
}

type listResponse struct {
	Messages []*model.MessageView `json:"messages"`
}

// List handles GET /api/messages (ROLE_ADMIN only).
// Supports query params: limit (1-100, default 20), offset.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if !id.HasRole(auth.RoleAdmin) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	opts := model.MessageListOptions{Limit: 20}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			opts.Limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	messages, err := h.contactService.List(r.Context(), opts)
	if err != nil {
		slog.Error("listing messages failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed")
		return
	}

	// Return [] not null for empty lists
	if messages == nil {
		messages = []*model.MessageView{}
	}
	writeJSON(w, http.StatusOK, listResponse{Messages: messages})
}
