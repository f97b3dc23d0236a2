package service

import (
	"errors"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register("alice@example.com", "correct-horse-battery", "Alice")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == "" {
		t.Error("registered user has no id")
	}
	if user.CredentialHash == "correct-horse-battery" {
		t.Error("credential stored in plain text")
	}
	if user.HasFamily() {
		t.Error("new user should start unaffiliated")
	}

	sess, loggedIn, err := env.auth.Login("alice@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("logged in user = %q, want %q", loggedIn.ID, user.ID)
	}

	resolved, err := env.auth.ResolveSession(sess.Token)
	if err != nil {
		t.Fatalf("ResolveSession() error = %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("resolved user = %q, want %q", resolved.ID, user.ID)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
	}{
		{"invalid email", "not-an-email", "correct-horse-battery", "Alice"},
		{"short password", "alice@example.com", "short", "Alice"},
		{"blank name", "alice@example.com", "correct-horse-battery", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.auth.Register(tt.email, tt.password, tt.userName); err == nil {
				t.Error("Register() should fail")
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.auth.Register("alice@example.com", "correct-horse-battery", "Alice"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := env.auth.Register("alice@example.com", "another-password-1", "Alice Again"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.auth.Register("alice@example.com", "correct-horse-battery", "Alice"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("wrong password", func(t *testing.T) {
		if _, _, err := env.auth.Login("alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, _, err := env.auth.Login("nobody@example.com", "correct-horse-battery"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})
}
