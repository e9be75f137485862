package model

import (
	"errors"
	"testing"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		minimum string
		want    bool
	}{
		{"admin meets admin", RoleAdmin, RoleAdmin, true},
		{"admin meets manager", RoleAdmin, RoleManager, true},
		{"admin meets user", RoleAdmin, RoleUser, true},
		{"manager below admin", RoleManager, RoleAdmin, false},
		{"manager meets manager", RoleManager, RoleManager, true},
		{"manager meets user", RoleManager, RoleUser, true},
		{"user below admin", RoleUser, RoleAdmin, false},
		{"user below manager", RoleUser, RoleManager, false},
		{"user meets user", RoleUser, RoleUser, true},
		// Anything outside the hierarchy is denied, on either side of the
		// comparison, so a mistyped gate can never open a route.
		{"unknown caller role", "superuser", RoleUser, false},
		{"unknown required role", RoleAdmin, "superuser", false},
		{"empty caller role", "", RoleUser, false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		if got := RoleAtLeast(tt.role, tt.minimum); got != tt.want {
			t.Errorf("%s: RoleAtLeast(%q, %q) = %v, want %v", tt.name, tt.role, tt.minimum, got, tt.want)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleManager, RoleUser} {
		if !ValidRole(role) {
			t.Errorf("expected %q to be a valid role", role)
		}
	}
	for _, role := range []string{"", "superuser", "Admin"} {
		if ValidRole(role) {
			t.Errorf("expected %q to be rejected", role)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	for _, password := range []string{"", "short", "1234567"} {
		if err := ValidatePassword(password); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ValidatePassword(%q): expected ErrInvalidInput, got %v", password, err)
		}
	}
	for _, password := range []string{"12345678", "correcthorse"} {
		if err := ValidatePassword(password); err != nil {
			t.Errorf("ValidatePassword(%q): unexpected error %v", password, err)
		}
	}
}
