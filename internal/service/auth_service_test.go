package service

import (
	"errors"
	"testing"
	"time"
)

func newAuthFixture() (*fakeUserStore, *AuthService) {
	users := newFakeUserStore()
	return users, NewAuthService(users, time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	_, svc := newAuthFixture()

	user, err := svc.Register("alice@example.com", "supersecret", "Alice")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PasswordHash == "" || user.PasswordHash == "supersecret" {
		t.Error("password stored unhashed")
	}

	session, loggedIn, err := svc.Login("alice@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("logged in as user %d, want %d", loggedIn.ID, user.ID)
	}
	if session.ID == "" {
		t.Error("session has no id")
	}

	if _, _, err := svc.Login("alice@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture()

	if _, err := svc.Register("alice@example.com", "supersecret", "Alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register("alice@example.com", "othersecret", "Alice Two"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginRejectsOAuthOnlyAccount(t *testing.T) {
	users, svc := newAuthFixture()

	// OAuth accounts have no password hash
	if _, err := users.CreateOAuthUser("linked@example.com", "Lin", "", "linkedin", "sub-1"); err != nil {
		t.Fatalf("CreateOAuthUser failed: %v", err)
	}

	if _, _, err := svc.Login("linked@example.com", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestOAuthLoginCreatesAccountOnFirstSignIn(t *testing.T) {
	_, svc := newAuthFixture()

	session, user, err := svc.OAuthLogin("linkedin", "sub-1", "new@example.com", "Newman", "")
	if err != nil {
		t.Fatalf("OAuthLogin failed: %v", err)
	}
	if user.OAuthProvider != "linkedin" || user.OAuthSubject != "sub-1" {
		t.Errorf("identity not stored: %+v", user)
	}
	if user.ImageURL == "" {
		t.Error("expected placeholder avatar when the provider sends none")
	}
	if session.UserID != user.ID {
		t.Error("session not bound to the new account")
	}
}

func TestOAuthLoginLinksExistingEmailAccount(t *testing.T) {
	_, svc := newAuthFixture()

	registered, err := svc.Register("alice@example.com", "supersecret", "Alice")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, linked, err := svc.OAuthLogin("linkedin", "sub-9", "alice@example.com", "Alice", "https://img.example/a.png")
	if err != nil {
		t.Fatalf("OAuthLogin failed: %v", err)
	}
	if linked.ID != registered.ID {
		t.Fatalf("oauth sign-in created a second account: %d vs %d", linked.ID, registered.ID)
	}

	// Subsequent sign-ins resolve by subject
	_, again, err := svc.OAuthLogin("linkedin", "sub-9", "alice@example.com", "Alice", "")
	if err != nil {
		t.Fatalf("second OAuthLogin failed: %v", err)
	}
	if again.ID != registered.ID {
		t.Error("repeat oauth sign-in did not resolve to the linked account")
	}
}

func TestValidateSession(t *testing.T) {
	users, svc := newAuthFixture()

	user, err := svc.Register("alice@example.com", "supersecret", "Alice")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	session, _, err := svc.Login("alice@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	got, err := svc.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("validated as user %d, want %d", got.ID, user.ID)
	}

	if _, err := svc.ValidateSession("no-such-session"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	// Expired sessions are rejected and removed
	users.sessions[session.ID].ExpiresAt = time.Now().Add(-time.Minute)
	if _, err := svc.ValidateSession(session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, ok := users.sessions[session.ID]; ok {
		t.Error("expired session not cleaned up")
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	users, svc := newAuthFixture()

	if _, err := svc.Register("alice@example.com", "supersecret", "Alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	session, _, err := svc.Login("alice@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.Logout(session.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, ok := users.sessions[session.ID]; ok {
		t.Error("session survived logout")
	}
}
