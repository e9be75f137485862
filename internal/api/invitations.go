package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zalar/inventar/internal/model"
	"github.com/zalar/inventar/internal/store"
)

// InvitationsHandler handles invitation administration endpoints.
type InvitationsHandler struct {
	DB *sql.DB
}

type createInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// List handles GET /api/invitations.
func (h *InvitationsHandler) List(w http.ResponseWriter, r *http.Request) {
	invitations, err := store.ListInvitations(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if invitations == nil {
		invitations = []model.Invitation{}
	}
	jsonResponse(w, http.StatusOK, invitations)
}

// Create handles POST /api/invitations.
func (h *InvitationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Role == "" {
		req.Role = model.RoleUser
	}

	claims := GetClaims(r.Context())
	invitation, err := store.CreateInvitation(r.Context(), h.DB, req.Email, req.Role, &claims.UserID)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("invitation created", "by", claims.Username,
		"email", invitation.Email, "role", invitation.Role)
	jsonResponse(w, http.StatusCreated, invitation)
}

// Delete handles DELETE /api/invitations/{id} (revocation).
func (h *InvitationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid invitation id")
		return
	}

	if err := store.DeleteInvitation(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "invitation revoked"})
}
