package repository

import (
	"database/sql"
	"fmt"

	"puzzleclash/internal/database"
	"puzzleclash/internal/models"
)

// InvitationRepository handles database operations for invitations
type InvitationRepository struct {
	db *database.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *database.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// CreateInvitation creates a pending invitation. receiverID is nil when no
// account with the email exists yet.
func (r *InvitationRepository) CreateInvitation(groupID, senderID int64, receiverID *int64, email string) (*models.Invitation, error) {
	query := `
		INSERT INTO invitations (group_id, sender_id, receiver_id, email)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, groupID, senderID, receiverID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return r.GetInvitationByID(id)
}

// GetInvitationByID retrieves an invitation by ID, or nil if not found
func (r *InvitationRepository) GetInvitationByID(id int64) (*models.Invitation, error) {
	query := `
		SELECT i.id, i.group_id, i.sender_id, i.receiver_id, i.email, i.status,
		       i.created_at, i.updated_at, g.name, u.name
		FROM invitations i
		INNER JOIN puzzle_groups g ON i.group_id = g.id
		INNER JOIN users u ON i.sender_id = u.id
		WHERE i.id = ?
	`
	inv, err := scanInvitation(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// HasPendingInvitation checks for an existing pending invitation for a
// (group, email) pair. The partial unique index is the real guard; this
// lookup exists to produce a friendly error before hitting it.
func (r *InvitationRepository) HasPendingInvitation(groupID int64, email string) (bool, error) {
	query := "SELECT COUNT(*) FROM invitations WHERE group_id = ? AND email = ? AND status = ?"
	var count int
	if err := r.db.QueryRow(query, groupID, email, models.InvitationPending).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check pending invitation: %w", err)
	}
	return count > 0, nil
}

// ClaimPendingByEmail backfills receiver_id on any pending invitation whose
// email matches a signed-in user without a resolved receiver yet. Returns
// the number of claimed invitations.
func (r *InvitationRepository) ClaimPendingByEmail(email string, userID int64) (int64, error) {
	query := `
		UPDATE invitations
		SET receiver_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE email = ? AND receiver_id IS NULL AND status = ?
	`
	result, err := r.db.Exec(query, userID, email, models.InvitationPending)
	if err != nil {
		return 0, fmt.Errorf("failed to claim invitations: %w", err)
	}
	return result.RowsAffected()
}

// GetPendingForReceiver retrieves a user's pending invitations, newest first
func (r *InvitationRepository) GetPendingForReceiver(userID int64) ([]models.Invitation, error) {
	query := `
		SELECT i.id, i.group_id, i.sender_id, i.receiver_id, i.email, i.status,
		       i.created_at, i.updated_at, g.name, u.name
		FROM invitations i
		INNER JOIN puzzle_groups g ON i.group_id = g.id
		INNER JOIN users u ON i.sender_id = u.id
		WHERE i.receiver_id = ? AND i.status = ?
		ORDER BY i.created_at DESC
	`
	rows, err := r.db.Query(query, userID, models.InvitationPending)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

// AcceptInvitation adds the receiver to the group with the member role and
// marks the invitation accepted. Both effects commit together or neither
// does.
func (r *InvitationRepository) AcceptInvitation(inv *models.Invitation) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)"
	if _, err := tx.Exec(query, inv.GroupID, *inv.ReceiverID, models.RoleMember); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	query = "UPDATE invitations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := tx.Exec(query, models.InvitationAccepted, inv.ID); err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeclineInvitation marks the invitation declined
func (r *InvitationRepository) DeclineInvitation(id int64) error {
	query := "UPDATE invitations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, models.InvitationDeclined, id); err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}
	return nil
}

func scanInvitation(row interface{ Scan(...interface{}) error }) (*models.Invitation, error) {
	inv := &models.Invitation{}
	var receiverID sql.NullInt64
	err := row.Scan(
		&inv.ID,
		&inv.GroupID,
		&inv.SenderID,
		&receiverID,
		&inv.Email,
		&inv.Status,
		&inv.CreatedAt,
		&inv.UpdatedAt,
		&inv.GroupName,
		&inv.SenderName,
	)
	if err != nil {
		return nil, err
	}
	if receiverID.Valid {
		inv.ReceiverID = &receiverID.Int64
	}
	return inv, nil
}
