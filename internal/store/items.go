package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zalar/inventar/internal/model"
)

// CreateItem creates a new item with its status derived from quantity and
// category. Most callers want AddItem (movements.go) instead, which also
// records the initial stock movement.
func CreateItem(ctx context.Context, db *sql.DB, name, category string, quantity int) (*model.Item, error) {
	if err := validateItemFields(name, quantity); err != nil {
		return nil, err
	}
	if category == "" {
		category = model.CategoryTool
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, category, quantity, status) VALUES (?, ?, ?, ?)`,
		name, category, quantity, model.DeriveStatus(quantity, category),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, including soft-deleted ones (for history).
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	var imageMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, category, quantity, image_mime, status, created_at, updated_at, deleted_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Category, &item.Quantity, &imageMime, &item.Status,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.ImageMime = imageMime.String
	return item, nil
}

// ListItems returns all non-deleted items, optionally filtered by category
// or status.
func ListItems(ctx context.Context, db *sql.DB, category, status string) ([]model.Item, error) {
	query := `SELECT id, name, category, quantity, image_mime, status, created_at, updated_at, deleted_at
	          FROM items WHERE deleted_at IS NULL`
	var args []any

	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var imageMime sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Quantity, &imageMime,
			&item.Status, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.ImageMime = imageMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem applies a partial update: nil fields keep their stored value.
// The status is recomputed from the effective quantity and category, and the
// merge happens inside a transaction so a concurrent update cannot interleave
// between the read and the write.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, name, category *string, quantity *int) (*model.Item, error) {
	if name != nil && *name == "" {
		return nil, fmt.Errorf("%w: name required", model.ErrInvalidInput)
	}
	if quantity != nil && *quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", model.ErrInvalidInput)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var curName, curCategory string
	var curQuantity int
	err = tx.QueryRowContext(ctx,
		`SELECT name, category, quantity FROM items WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&curName, &curCategory, &curQuantity)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	if name != nil {
		curName = *name
	}
	if category != nil {
		curCategory = *category
		if curCategory == "" {
			curCategory = model.CategoryTool
		}
	}
	if quantity != nil {
		curQuantity = *quantity
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, quantity = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		curName, curCategory, curQuantity, model.DeriveStatus(curQuantity, curCategory), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item update: %w", err)
	}

	return GetItem(ctx, db, id)
}

// DeleteItem soft-deletes an item. Movement history is left untouched.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("item %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

func validateItemFields(name string, quantity int) error {
	if name == "" {
		return fmt.Errorf("%w: name required", model.ErrInvalidInput)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", model.ErrInvalidInput)
	}
	return nil
}
