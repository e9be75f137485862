package model

import "time"

// Invitation represents a single-use, role-carrying registration token.
type Invitation struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy *int64     `json:"created_by,omitempty"`
}

// InvitationExpiry is the default invitation lifetime.
const InvitationExpiry = 7 * 24 * time.Hour

// Redeemable reports whether the invitation can still be used at time now.
func (i *Invitation) Redeemable(now time.Time) bool {
	return i.UsedAt == nil && now.Before(i.ExpiresAt)
}
