package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/zalar/inventar/internal/metrics"
	"github.com/zalar/inventar/internal/model"
	"github.com/zalar/inventar/internal/store"
)

// MovementsHandler handles the movement log and checkout/checkin endpoints.
type MovementsHandler struct {
	DB *sql.DB
}

type checkoutRequest struct {
	ItemID         int64      `json:"item_id"`
	Quantity       int        `json:"quantity"`
	HandledBy      string     `json:"handled_by"`
	ExpectedReturn *time.Time `json:"expected_return,omitempty"`
}

// Checkout handles POST /api/movements/checkout.
func (h *MovementsHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id required")
		return
	}

	claims := GetClaims(r.Context())
	if req.HandledBy == "" {
		req.HandledBy = claims.Username
	}

	movement, err := store.Checkout(r.Context(), h.DB, req.ItemID, req.HandledBy,
		req.Quantity, req.ExpectedReturn, &claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInsufficientStock):
			metrics.CheckoutFailures.WithLabelValues("insufficient_stock").Inc()
		case errors.Is(err, model.ErrInvalidInput):
			metrics.CheckoutFailures.WithLabelValues("invalid_input").Inc()
		}
		storeError(w, err)
		return
	}

	metrics.MovementsTotal.WithLabelValues(movement.Type).Inc()
	slog.Info("checkout", "user", claims.Username, "item", movement.ItemName,
		"quantity", movement.Quantity, "status", movement.Status, "handler", movement.HandledBy)
	jsonResponse(w, http.StatusCreated, movement)
}

// CheckIn handles POST /api/movements/{id}/checkin.
func (h *MovementsHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	claims := GetClaims(r.Context())
	movement, err := store.CheckIn(r.Context(), h.DB, id, &claims.UserID)
	if err != nil {
		storeError(w, err)
		return
	}

	metrics.MovementsTotal.WithLabelValues(model.MovementIn).Inc()
	slog.Info("checkin", "user", claims.Username, "item", movement.ItemName,
		"quantity", movement.Quantity)
	jsonResponse(w, http.StatusOK, movement)
}

// List handles GET /api/movements, newest first, overdue overlay applied.
func (h *MovementsHandler) List(w http.ResponseWriter, r *http.Request) {
	var itemID int64
	if v := r.URL.Query().Get("item_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid item_id")
			return
		}
		itemID = id
	}

	movements, err := store.ListMovements(r.Context(), h.DB, itemID, r.URL.Query().Get("type"))
	if err != nil {
		storeError(w, err)
		return
	}

	now := time.Now()
	for i := range movements {
		movements[i].Status = movements[i].EffectiveStatus(now)
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	jsonResponse(w, http.StatusOK, movements)
}

// ListOverdue handles GET /api/movements/overdue.
func (h *MovementsHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	movements, err := store.ListOverdue(r.Context(), h.DB, now)
	if err != nil {
		storeError(w, err)
		return
	}

	for i := range movements {
		movements[i].Status = movements[i].EffectiveStatus(now)
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	jsonResponse(w, http.StatusOK, movements)
}

// Clear handles DELETE /api/movements: wipes the whole log. Admin only,
// enforced by the router.
func (h *MovementsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := store.ClearMovements(r.Context(), h.DB); err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Warn("movement log cleared", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "movement log cleared"})
}
