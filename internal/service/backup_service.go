package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"puzzleclash/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Users       []UserBackup       `json:"users"`
	Groups      []GroupBackup      `json:"groups"`
	Invitations []InvitationBackup `json:"invitations"`
	Scores      []ScoreBackup      `json:"scores"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	ImageURL      string    `json:"image_url"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	ShowInGlobal  bool      `json:"show_in_global"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GroupBackup represents a group with its memberships
type GroupBackup struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	CreatedBy int64          `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Members   []MemberBackup `json:"members"`
}

// MemberBackup represents one group membership
type MemberBackup struct {
	UserID   int64     `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// InvitationBackup represents an invitation record for backup
type InvitationBackup struct {
	ID         int64     `json:"id"`
	GroupID    int64     `json:"group_id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID *int64    `json:"receiver_id"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScoreBackup represents a score record for backup
type ScoreBackup struct {
	ID         int64     `json:"id"`
	GroupID    int64     `json:"group_id"`
	UserID     int64     `json:"user_id"`
	Game       string    `json:"game"`
	Points     int       `json:"points"`
	TimeTaken  *string   `json:"time_taken"`
	Backtracks *int      `json:"backtracks"`
	Notes      *string   `json:"notes"`
	Date       string    `json:"date"`
	EnteredBy  int64     `json:"entered_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	return s.ExportToWriter(file)
}

// ExportToWriter exports the database as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	log.Println("Starting database export...")

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportGroups(backup); err != nil {
		return fmt.Errorf("failed to export groups: %w", err)
	}
	if err := s.exportInvitations(backup); err != nil {
		return fmt.Errorf("failed to export invitations: %w", err)
	}
	if err := s.exportScores(backup); err != nil {
		return fmt.Errorf("failed to export scores: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d users, %d groups, %d invitations, %d scores",
		len(backup.Users), len(backup.Groups), len(backup.Invitations), len(backup.Scores))

	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importGroups(backup.Groups); err != nil {
		return fmt.Errorf("failed to import groups: %w", err)
	}
	if err := s.importInvitations(backup.Invitations); err != nil {
		return fmt.Errorf("failed to import invitations: %w", err)
	}
	if err := s.importScores(backup.Scores); err != nil {
		return fmt.Errorf("failed to import scores: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, email, password_hash, name, image_url, oauth_provider, oauth_subject, show_in_global, created_at, updated_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.ImageURL, &u.OAuthProvider, &u.OAuthSubject, &u.ShowInGlobal, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportGroups(backup *BackupData) error {
	query := "SELECT id, name, created_by, created_at, updated_at FROM puzzle_groups ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g GroupBackup
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedBy, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return err
		}

		memberQuery := "SELECT user_id, role, joined_at FROM group_members WHERE group_id = ? ORDER BY user_id"
		memberRows, err := s.db.Query(memberQuery, g.ID)
		if err != nil {
			return err
		}

		for memberRows.Next() {
			var m MemberBackup
			if err := memberRows.Scan(&m.UserID, &m.Role, &m.JoinedAt); err != nil {
				memberRows.Close()
				return err
			}
			g.Members = append(g.Members, m)
		}
		memberRows.Close()

		backup.Groups = append(backup.Groups, g)
	}
	return rows.Err()
}

func (s *BackupService) exportInvitations(backup *BackupData) error {
	query := "SELECT id, group_id, sender_id, receiver_id, email, status, created_at, updated_at FROM invitations ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var inv InvitationBackup
		var receiverID sql.NullInt64
		if err := rows.Scan(&inv.ID, &inv.GroupID, &inv.SenderID, &receiverID, &inv.Email, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return err
		}
		if receiverID.Valid {
			inv.ReceiverID = &receiverID.Int64
		}
		backup.Invitations = append(backup.Invitations, inv)
	}
	return rows.Err()
}

func (s *BackupService) exportScores(backup *BackupData) error {
	query := "SELECT id, group_id, user_id, game, points, time_taken, backtracks, notes, date, entered_by, created_at, updated_at FROM scores ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sc ScoreBackup
		var timeTaken, notes sql.NullString
		var backtracks sql.NullInt64
		var date time.Time
		if err := rows.Scan(&sc.ID, &sc.GroupID, &sc.UserID, &sc.Game, &sc.Points, &timeTaken, &backtracks, &notes, &date, &sc.EnteredBy, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return err
		}
		if timeTaken.Valid {
			sc.TimeTaken = &timeTaken.String
		}
		if notes.Valid {
			sc.Notes = &notes.String
		}
		if backtracks.Valid {
			n := int(backtracks.Int64)
			sc.Backtracks = &n
		}
		sc.Date = date.Format("2006-01-02")
		backup.Scores = append(backup.Scores, sc)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		query := "INSERT INTO users (id, email, password_hash, name, image_url, oauth_provider, oauth_subject, show_in_global, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, u.ID, u.Email, u.PasswordHash, u.Name, u.ImageURL, u.OAuthProvider, u.OAuthSubject, u.ShowInGlobal, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importGroups(groups []GroupBackup) error {
	log.Printf("Importing %d groups...", len(groups))
	for _, g := range groups {
		query := "INSERT INTO puzzle_groups (id, name, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, g.ID, g.Name, g.CreatedBy, g.CreatedAt, g.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import group %d: %w", g.ID, err)
		}

		for _, m := range g.Members {
			memberQuery := "INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)"
			_, err := s.db.Exec(memberQuery, g.ID, m.UserID, m.Role, m.JoinedAt)
			if err != nil {
				return fmt.Errorf("failed to import member %d for group %d: %w", m.UserID, g.ID, err)
			}
		}
	}
	return nil
}

func (s *BackupService) importInvitations(invitations []InvitationBackup) error {
	log.Printf("Importing %d invitations...", len(invitations))
	for _, inv := range invitations {
		var receiverID interface{}
		if inv.ReceiverID != nil {
			receiverID = *inv.ReceiverID
		}
		query := "INSERT INTO invitations (id, group_id, sender_id, receiver_id, email, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, inv.ID, inv.GroupID, inv.SenderID, receiverID, inv.Email, inv.Status, inv.CreatedAt, inv.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import invitation %d: %w", inv.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importScores(scores []ScoreBackup) error {
	log.Printf("Importing %d scores...", len(scores))
	for _, sc := range scores {
		var timeTaken, notes interface{}
		if sc.TimeTaken != nil {
			timeTaken = *sc.TimeTaken
		}
		if sc.Notes != nil {
			notes = *sc.Notes
		}
		var backtracks interface{}
		if sc.Backtracks != nil {
			backtracks = *sc.Backtracks
		}
		query := "INSERT INTO scores (id, group_id, user_id, game, points, time_taken, backtracks, notes, date, entered_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, sc.ID, sc.GroupID, sc.UserID, sc.Game, sc.Points, timeTaken, backtracks, notes, sc.Date, sc.EnteredBy, sc.CreatedAt, sc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import score %d: %w", sc.ID, err)
		}
	}
	return nil
}
