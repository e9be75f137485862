package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zalar/inventar/internal/model"
)

// Checkout records an outgoing movement and decrements the item's stock in a
// single transaction. Consumable items are consumed outright; everything
// else becomes a loan and requires an expected return date.
func Checkout(ctx context.Context, db *sql.DB, itemID int64, handledBy string, quantity int, expectedReturn *time.Time, recordedBy *int64) (*model.Movement, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", model.ErrInvalidInput)
	}
	if handledBy == "" {
		return nil, fmt.Errorf("%w: handler name required", model.ErrInvalidInput)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var name, category string
	var available int
	err = tx.QueryRowContext(ctx,
		`SELECT name, category, quantity FROM items WHERE id = ? AND deleted_at IS NULL`,
		itemID,
	).Scan(&name, &category, &available)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", itemID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	if available < quantity {
		return nil, fmt.Errorf("%w: have %d, need %d", model.ErrInsufficientStock, available, quantity)
	}

	// Consumables never come back: the movement is terminal and carries no
	// return date. Loans need to know when the item is due back.
	status := model.MovementOnLoan
	if model.IsConsumable(category) {
		status = model.MovementConsumed
		expectedReturn = nil
	} else if expectedReturn == nil {
		return nil, fmt.Errorf("%w: expected return date required for %s items", model.ErrInvalidInput, category)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO movements (type, item_id, item_name, quantity, handled_by, expected_return, status, recorded_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		model.MovementOut, itemID, name, quantity, handledBy, expectedReturn, status, recordedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("recording movement: %w", err)
	}

	// Guarded decrement: the quantity check is repeated in the UPDATE so a
	// concurrent checkout cannot slip between the read and the write.
	res, err := tx.ExecContext(ctx,
		`UPDATE items SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND quantity >= ?`,
		quantity, itemID, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("decrementing stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("decrementing stock: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: stock changed concurrently", model.ErrInsufficientStock)
	}

	if err := recomputeItemStatus(ctx, tx, itemID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing checkout: %w", err)
	}

	movementID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting movement id: %w", err)
	}
	return GetMovement(ctx, db, movementID)
}

// CheckIn returns a loaned-out movement: the movement is marked returned, a
// compensating incoming movement keeps the audit trail symmetric, and the
// item's stock and status are restored. All in one transaction.
func CheckIn(ctx context.Context, db *sql.DB, movementID int64, recordedBy *int64) (*model.Movement, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	m := &model.Movement{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, type, item_id, item_name, quantity, handled_by, status FROM movements WHERE id = ?`,
		movementID,
	).Scan(&m.ID, &m.Type, &m.ItemID, &m.ItemName, &m.Quantity, &m.HandledBy, &m.Status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("movement %d: %w", movementID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting movement: %w", err)
	}

	if m.Type != model.MovementOut || !m.Open() {
		return nil, fmt.Errorf("%w: movement %d is %s, not an open loan", model.ErrInvalidState, movementID, m.Status)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE movements SET status = ?, actual_return = CURRENT_TIMESTAMP WHERE id = ?`,
		model.MovementReturned, movementID,
	)
	if err != nil {
		return nil, fmt.Errorf("marking movement returned: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO movements (type, item_id, item_name, quantity, handled_by, status, recorded_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		model.MovementIn, m.ItemID, m.ItemName, m.Quantity, m.HandledBy, model.MovementReturned, recordedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("recording return movement: %w", err)
	}

	// Restore stock even if the item was soft-deleted in the meantime: the
	// row survives deletion and the quantity invariant must keep holding.
	_, err = tx.ExecContext(ctx,
		`UPDATE items SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		m.Quantity, m.ItemID,
	)
	if err != nil {
		return nil, fmt.Errorf("restoring stock: %w", err)
	}

	if err := recomputeItemStatus(ctx, tx, m.ItemID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing checkin: %w", err)
	}

	return GetMovement(ctx, db, movementID)
}

// AddItem creates an item together with the incoming movement that accounts
// for its initial stock, so every unit on hand traces back to a movement.
func AddItem(ctx context.Context, db *sql.DB, name, category string, quantity int, handledBy string, recordedBy *int64) (*model.Item, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name required", model.ErrInvalidInput)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", model.ErrInvalidInput)
	}
	if category == "" {
		category = model.CategoryTool
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (name, category, quantity, status) VALUES (?, ?, ?, ?)`,
		name, category, quantity, model.DeriveStatus(quantity, category),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}
	itemID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	if quantity > 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO movements (type, item_id, item_name, quantity, handled_by, status, recorded_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			model.MovementIn, itemID, name, quantity, handledBy, model.MovementReturned, recordedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("recording initial stock movement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item creation: %w", err)
	}

	return GetItem(ctx, db, itemID)
}

// Restock adds stock to an existing item and records the incoming movement.
func Restock(ctx context.Context, db *sql.DB, itemID int64, quantity int, handledBy string, recordedBy *int64) (*model.Movement, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", model.ErrInvalidInput)
	}
	if handledBy == "" {
		return nil, fmt.Errorf("%w: handler name required", model.ErrInvalidInput)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var name string
	err = tx.QueryRowContext(ctx,
		`SELECT name FROM items WHERE id = ? AND deleted_at IS NULL`, itemID,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", itemID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO movements (type, item_id, item_name, quantity, handled_by, status, recorded_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		model.MovementIn, itemID, name, quantity, handledBy, model.MovementReturned, recordedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("recording stock movement: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		quantity, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("incrementing stock: %w", err)
	}

	if err := recomputeItemStatus(ctx, tx, itemID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing restock: %w", err)
	}

	movementID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting movement id: %w", err)
	}
	return GetMovement(ctx, db, movementID)
}

// GetMovement returns a movement by ID.
func GetMovement(ctx context.Context, db *sql.DB, id int64) (*model.Movement, error) {
	m := &model.Movement{}
	err := db.QueryRowContext(ctx,
		`SELECT id, type, item_id, item_name, quantity, handled_by, expected_return, actual_return, status, created_at, recorded_by
		 FROM movements WHERE id = ?`, id,
	).Scan(&m.ID, &m.Type, &m.ItemID, &m.ItemName, &m.Quantity, &m.HandledBy,
		&m.ExpectedReturn, &m.ActualReturn, &m.Status, &m.CreatedAt, &m.RecordedBy)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("movement %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting movement: %w", err)
	}
	return m, nil
}

// ListMovements returns movements newest first, optionally filtered by item
// or type.
func ListMovements(ctx context.Context, db *sql.DB, itemID int64, movementType string) ([]model.Movement, error) {
	query := `SELECT id, type, item_id, item_name, quantity, handled_by, expected_return, actual_return, status, created_at, recorded_by
	          FROM movements WHERE 1=1`
	var args []any

	if itemID > 0 {
		query += ` AND item_id = ?`
		args = append(args, itemID)
	}
	if movementType != "" {
		query += ` AND type = ?`
		args = append(args, movementType)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	return scanMovements(rows)
}

// ListOverdue returns open loans whose expected return date is before now.
func ListOverdue(ctx context.Context, db *sql.DB, now time.Time) ([]model.Movement, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, type, item_id, item_name, quantity, handled_by, expected_return, actual_return, status, created_at, recorded_by
		 FROM movements
		 WHERE type = ? AND status IN (?, ?) AND expected_return IS NOT NULL AND expected_return < ?
		 ORDER BY expected_return`,
		model.MovementOut, model.MovementOnLoan, model.MovementOverdue, now,
	)
	if err != nil {
		return nil, fmt.Errorf("listing overdue movements: %w", err)
	}
	defer rows.Close()

	return scanMovements(rows)
}

// ClearMovements irreversibly deletes the whole movement log. Items are not
// touched. Role enforcement happens at the API gate.
func ClearMovements(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `DELETE FROM movements`)
	if err != nil {
		return fmt.Errorf("clearing movement log: %w", err)
	}
	return nil
}

// recomputeItemStatus rewrites an item's status from its current quantity
// and category inside an ongoing transaction.
func recomputeItemStatus(ctx context.Context, tx *sql.Tx, itemID int64) error {
	var quantity int
	var category string
	err := tx.QueryRowContext(ctx,
		`SELECT quantity, category FROM items WHERE id = ?`, itemID,
	).Scan(&quantity, &category)
	if err != nil {
		return fmt.Errorf("reading item for status recompute: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET status = ? WHERE id = ?`,
		model.DeriveStatus(quantity, category), itemID,
	)
	if err != nil {
		return fmt.Errorf("recomputing item status: %w", err)
	}
	return nil
}

func scanMovements(rows *sql.Rows) ([]model.Movement, error) {
	var movements []model.Movement
	for rows.Next() {
		var m model.Movement
		if err := rows.Scan(&m.ID, &m.Type, &m.ItemID, &m.ItemName, &m.Quantity, &m.HandledBy,
			&m.ExpectedReturn, &m.ActualReturn, &m.Status, &m.CreatedAt, &m.RecordedBy); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
