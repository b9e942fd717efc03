package service

import (
	"errors"
	"fmt"
	"time"

	"puzzleclash/internal/models"
	"puzzleclash/internal/security"
	"puzzleclash/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// Default avatar shown when the identity provider returns no picture
const defaultAvatarURL = "https://cdn-icons-png.flaticon.com/512/174/174857.png"

// UserStore defines the persistence operations AuthService needs
type UserStore interface {
	CreateUser(email, passwordHash, name string) (*models.User, error)
	CreateOAuthUser(email, name, imageURL, provider, subject string) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByOAuth(provider, subject string) (*models.User, error)
	LinkOAuthIdentity(userID int64, provider, subject, imageURL string) error
	SetShowInGlobal(userID int64, show bool) error
	CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error)
	GetSession(sessionID string) (*models.Session, error)
	DeleteSession(sessionID string) error
	DeleteExpiredSessions() error
}

// AuthService handles authentication business logic
type AuthService struct {
	users           UserStore
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		users:           users,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new local account
func (s *AuthService) Register(email, password, name string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existingUser, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a local account and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// OAuthLogin signs a user in from a verified OAuth identity, creating the
// account on first sign-in. An existing account with the same email is
// linked to the identity rather than duplicated — the provider's email is
// trusted as unique.
func (s *AuthService) OAuthLogin(provider, subject, email, name, imageURL string) (*models.Session, *models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}
	if imageURL == "" {
		imageURL = defaultAvatarURL
	}

	user, err := s.users.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up oauth identity: %w", err)
	}

	if user == nil {
		// Fall back to linking by email before creating a fresh account
		user, err = s.users.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up user by email: %w", err)
		}
		if user != nil {
			if err := s.users.LinkOAuthIdentity(user.ID, provider, subject, imageURL); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth identity: %w", err)
			}
		} else {
			user, err = s.users.CreateOAuthUser(email, name, imageURL, provider, subject)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
		}
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.users.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		// Clean up expired session
		_ = s.users.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Logout deletes a session
func (s *AuthService) Logout(sessionID string) error {
	return s.users.DeleteSession(sessionID)
}

// SetGlobalVisibility updates the user's global leaderboard opt-in flag
func (s *AuthService) SetGlobalVisibility(userID int64, show bool) error {
	if err := s.users.SetShowInGlobal(userID, show); err != nil {
		return fmt.Errorf("failed to update visibility: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes all expired sessions
func (s *AuthService) CleanupExpiredSessions() error {
	return s.users.DeleteExpiredSessions()
}

func (s *AuthService) createSession(userID int64) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.users.CreateSession(sessionID, userID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}
