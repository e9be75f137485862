package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zalar/inventar/internal/model"
)

// GetSummary computes the aggregate inventory report. Overdue loans are
// counted with the same read-time rule the movement listing uses.
func GetSummary(ctx context.Context, db *sql.DB, now time.Time) (*model.Summary, error) {
	s := &model.Summary{}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(status = ?), 0),
		        COALESCE(SUM(status = ?), 0),
		        COALESCE(SUM(status = ?), 0)
		 FROM items WHERE deleted_at IS NULL`,
		model.ItemStatusInStock, model.ItemStatusLowStock, model.ItemStatusOutOfStock,
	).Scan(&s.TotalItems, &s.InStock, &s.LowStock, &s.OutOfStock)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movements WHERE type = ? AND status IN (?, ?)`,
		model.MovementOut, model.MovementOnLoan, model.MovementOverdue,
	).Scan(&s.OpenLoans)
	if err != nil {
		return nil, fmt.Errorf("counting open loans: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movements
		 WHERE type = ? AND status IN (?, ?) AND expected_return IS NOT NULL AND expected_return < ?`,
		model.MovementOut, model.MovementOnLoan, model.MovementOverdue, now,
	).Scan(&s.OverdueLoans)
	if err != nil {
		return nil, fmt.Errorf("counting overdue loans: %w", err)
	}

	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movements`).Scan(&s.Movements)
	if err != nil {
		return nil, fmt.Errorf("counting movements: %w", err)
	}

	return s, nil
}
