package api

import (
	"database/sql"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/zalar/inventar/internal/store"
)

// ReportsHandler handles the reporting and export endpoints.
type ReportsHandler struct {
	DB *sql.DB
}

// Summary handles GET /api/reports/summary.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := store.GetSummary(r.Context(), h.DB, time.Now())
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, summary)
}

// ExportMovements handles GET /api/reports/movements.csv: the full movement
// log as CSV, newest first, with the overdue overlay applied.
func (h *ReportsHandler) ExportMovements(w http.ResponseWriter, r *http.Request) {
	movements, err := store.ListMovements(r.Context(), h.DB, 0, "")
	if err != nil {
		storeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="movements.csv"`)

	now := time.Now()
	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "date", "type", "item", "quantity", "handled_by",
		"expected_return", "actual_return", "status"})

	for _, m := range movements {
		expected, actual := "", ""
		if m.ExpectedReturn != nil {
			expected = m.ExpectedReturn.Format(time.DateOnly)
		}
		if m.ActualReturn != nil {
			actual = m.ActualReturn.Format(time.DateTime)
		}
		cw.Write([]string{
			strconv.FormatInt(m.ID, 10),
			m.CreatedAt.Format(time.DateTime),
			m.Type,
			m.ItemName,
			strconv.Itoa(m.Quantity),
			m.HandledBy,
			expected,
			actual,
			m.EffectiveStatus(now),
		})
	}
	cw.Flush()
}
