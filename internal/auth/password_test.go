package auth

import (
	"errors"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r$ecret")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if hash == "Sup3r$ecret" {
		t.Error("Expected hash to differ from the plain password")
	}

	if !VerifyPassword(hash, "Sup3r$ecret") {
		t.Error("Expected correct password to verify")
	}
	if VerifyPassword(hash, "wrong-password") {
		t.Error("Expected wrong password to fail verification")
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Sup3r$ecret", nil},
		{"too short", "S3$a", ErrPasswordTooShort},
		{"no uppercase", "sup3r$ecret", ErrPasswordNoUpper},
		{"no lowercase", "SUP3R$ECRET", ErrPasswordNoLower},
		{"no number", "Super$ecret", ErrPasswordNoNumber},
		{"no special char", "Sup3rSecret", ErrPasswordNoSpecialChar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePasswordStrength(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}
