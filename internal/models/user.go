package models

import "time"

// User represents an account in the system. Accounts are created either by
// email/password registration or on first OAuth sign-in.
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	Name          string
	ImageURL      string
	OAuthProvider string
	OAuthSubject  string
	ShowInGlobal  bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
