package auth_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"summarist/internal/auth"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !auth.CheckPasswordHash("password123", hash) {
		t.Error("correct password should verify")
	}
	if auth.CheckPasswordHash("wrongpassword", hash) {
		t.Error("wrong password should not verify")
	}
	if auth.CheckPasswordHash("password123", "not-a-hash") {
		t.Error("garbage hash should not verify")
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name@example.com", "x+tag@sub.domain.org"}
	for _, email := range valid {
		if err := auth.ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}

	invalid := []string{"", "   ", "plainaddress", "@no-local.com", "a@b@c.com", "Name <a@b.co>"}
	for _, email := range invalid {
		if err := auth.ValidateEmail(email); err != auth.ErrInvalidEmail {
			t.Errorf("ValidateEmail(%q) = %v, want ErrInvalidEmail", email, err)
		}
	}
}

func TestValidateRegistration(t *testing.T) {
	t.Run("Valid Input Passes", func(t *testing.T) {
		if err := auth.ValidateRegistration("a@b.co", "secret1", "secret1"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("Email Is Checked First", func(t *testing.T) {
		err := auth.ValidateRegistration("bad", "x", "y")
		if err != auth.ErrInvalidEmail {
			t.Errorf("expected ErrInvalidEmail, got %v", err)
		}
	})

	t.Run("Short Password", func(t *testing.T) {
		err := auth.ValidateRegistration("a@b.co", "12345", "12345")
		if err != auth.ErrPasswordTooShort {
			t.Errorf("expected ErrPasswordTooShort, got %v", err)
		}
	})

	t.Run("Mismatched Confirmation", func(t *testing.T) {
		err := auth.ValidateRegistration("a@b.co", "secret1", "secret2")
		if err != auth.ErrPasswordMismatch {
			t.Errorf("expected ErrPasswordMismatch, got %v", err)
		}
	})
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"Nil Passes Through", nil, nil},
		{"Known Sentinel Passes Through", auth.ErrInvalidCredentials, auth.ErrInvalidCredentials},
		{"No Rows Is User Not Found", sql.ErrNoRows, auth.ErrUserNotFound},
		{"Wrapped No Rows", fmt.Errorf("lookup: %w", sql.ErrNoRows), auth.ErrUserNotFound},
		{"Unique Violation Is Email In Use", errors.New("UNIQUE constraint failed: users.email"), auth.ErrEmailInUse},
		{"Anything Else Is Unknown", errors.New("disk on fire"), auth.ErrUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := auth.Classify(tc.in); got != tc.want {
				t.Errorf("Classify(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
