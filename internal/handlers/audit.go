package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kgrierson/stronghold/internal/models"
	pkghttp "github.com/kgrierson/stronghold/pkg/http"
)

// AuditServiceInterface defines the interface for audit trail queries
type AuditServiceInterface interface {
	GetAccountTrail(ctx context.Context, accountID int64, limit, offset int) ([]*models.SecurityEvent, error)
}

// AuditHandler handles security event trail HTTP requests
type AuditHandler struct {
	service AuditServiceInterface
	session SessionInterface
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditServiceInterface, session SessionInterface) *AuditHandler {
	return &AuditHandler{
		service: service,
		session: session,
	}
}

// SecurityEventResponse represents a security event in HTTP responses
type SecurityEventResponse struct {
	ID        string `json:"id"`
	AccountID int64  `json:"account_id"`
	EventType string `json:"event_type"`
	Details   string `json:"details"`
	CreatedAt string `json:"created_at"`
}

// GetAccountTrail retrieves the security event trail for an account.
// Administrator access required.
func (h *AuditHandler) GetAccountTrail(w http.ResponseWriter, r *http.Request) {
	if h.session.CurrentUser() == nil {
		pkghttp.WriteUnauthorized(w, "Not logged in")
		return
	}
	if !h.session.HasRequiredAccess(models.AccessLevelAdministrator) {
		pkghttp.WriteForbidden(w, "Administrator access required")
		return
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || accountID <= 0 {
		pkghttp.WriteBadRequest(w, "Invalid account id")
		return
	}

	limit := 50
	offset := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	events, err := h.service.GetAccountTrail(r.Context(), accountID, limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	response := make([]*SecurityEventResponse, len(events))
	for i, event := range events {
		response[i] = &SecurityEventResponse{
			ID:        event.ID.String(),
			AccountID: event.AccountID,
			EventType: event.EventType,
			Details:   event.Details,
			CreatedAt: event.CreatedAt.Format(time.RFC3339),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"events": response,
		"limit":  limit,
		"offset": offset,
	})
}
