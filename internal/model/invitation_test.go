package model

import (
	"testing"
	"time"
)

func TestInvitationRedeemable(t *testing.T) {
	now := time.Now()
	used := now.Add(-time.Hour)

	tests := []struct {
		name      string
		expiresAt time.Time
		usedAt    *time.Time
		want      bool
	}{
		{"fresh invitation", now.Add(time.Hour), nil, true},
		{"expired invitation", now.Add(-time.Hour), nil, false},
		{"used invitation", now.Add(time.Hour), &used, false},
		{"used and expired", now.Add(-time.Hour), &used, false},
	}

	for _, tt := range tests {
		inv := &Invitation{ExpiresAt: tt.expiresAt, UsedAt: tt.usedAt}
		if got := inv.Redeemable(now); got != tt.want {
			t.Errorf("%s: Redeemable = %v, want %v", tt.name, got, tt.want)
		}
	}
}
