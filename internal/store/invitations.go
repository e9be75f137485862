package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zalar/inventar/internal/model"
)

// CreateInvitation issues a single-use registration invitation carrying the
// role the registered user will get. The token is an unguessable UUID.
func CreateInvitation(ctx context.Context, db *sql.DB, email, role string, createdBy *int64) (*model.Invitation, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email required", model.ErrInvalidInput)
	}
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, role)
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(model.InvitationExpiry)

	result, err := db.ExecContext(ctx,
		`INSERT INTO invitations (email, role, token, expires_at, created_by) VALUES (?, ?, ?, ?, ?)`,
		email, role, token, expiresAt, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating invitation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting invitation id: %w", err)
	}

	return GetInvitation(ctx, db, id)
}

// GetInvitation returns an invitation by ID.
func GetInvitation(ctx context.Context, db *sql.DB, id int64) (*model.Invitation, error) {
	inv := &model.Invitation{}
	err := db.QueryRowContext(ctx,
		`SELECT id, email, role, token, expires_at, used_at, created_at, created_by
		 FROM invitations WHERE id = ?`, id,
	).Scan(&inv.ID, &inv.Email, &inv.Role, &inv.Token, &inv.ExpiresAt, &inv.UsedAt, &inv.CreatedAt, &inv.CreatedBy)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invitation %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting invitation: %w", err)
	}
	return inv, nil
}

// ListInvitations returns all invitations, newest first.
func ListInvitations(ctx context.Context, db *sql.DB) ([]model.Invitation, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, email, role, token, expires_at, used_at, created_at, created_by
		 FROM invitations ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}
	defer rows.Close()

	var invitations []model.Invitation
	for rows.Next() {
		var inv model.Invitation
		if err := rows.Scan(&inv.ID, &inv.Email, &inv.Role, &inv.Token, &inv.ExpiresAt,
			&inv.UsedAt, &inv.CreatedAt, &inv.CreatedBy); err != nil {
			return nil, fmt.Errorf("scanning invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// DeleteInvitation revokes an unused invitation.
func DeleteInvitation(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting invitation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invitation %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// RedeemInvitation creates a user from a valid invitation token and marks
// the invitation used, in one transaction. The guarded update on used_at
// makes a token single-use even under concurrent redemption attempts.
func RedeemInvitation(ctx context.Context, db *sql.DB, token, username, passwordHash string) (*model.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username required", model.ErrInvalidInput)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	inv := &model.Invitation{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, email, role, token, expires_at, used_at FROM invitations WHERE token = ?`,
		token,
	).Scan(&inv.ID, &inv.Email, &inv.Role, &inv.Token, &inv.ExpiresAt, &inv.UsedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invitation token: %w", model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting invitation: %w", err)
	}

	if !inv.Redeemable(time.Now()) {
		return nil, fmt.Errorf("%w: invitation already used or expired", model.ErrInvalidState)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE invitations SET used_at = CURRENT_TIMESTAMP WHERE id = ? AND used_at IS NULL`,
		inv.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("marking invitation used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("marking invitation used: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: invitation already used", model.ErrInvalidState)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, inv.Role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user from invitation: %w", err)
	}
	userID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing registration: %w", err)
	}

	return GetUser(ctx, db, userID)
}
