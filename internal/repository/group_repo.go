package repository

import (
	"database/sql"
	"fmt"
	"time"

	"puzzleclash/internal/database"
	"puzzleclash/internal/models"
)

// GroupRepository handles database operations for groups and memberships
type GroupRepository struct {
	db *database.DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *database.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateGroup creates a new group and adds the creator as its admin member.
// Both rows commit together.
func (r *GroupRepository) CreateGroup(name string, creatorUserID int64) (*models.Group, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO puzzle_groups (name, created_by) VALUES (?, ?)"
	groupID, err := tx.ExecReturningID(query, name, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	query = "INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)"
	if _, err := tx.Exec(query, groupID, creatorUserID, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("failed to add creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Group{
		ID:        groupID,
		Name:      name,
		CreatedBy: creatorUserID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetGroupByID retrieves a group by ID, or nil if not found
func (r *GroupRepository) GetGroupByID(groupID int64) (*models.Group, error) {
	query := "SELECT id, name, created_by, created_at, updated_at FROM puzzle_groups WHERE id = ?"
	group := &models.Group{}
	err := r.db.QueryRow(query, groupID).Scan(
		&group.ID,
		&group.Name,
		&group.CreatedBy,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// GetUserGroups retrieves all groups a user belongs to, newest first, with
// member and score counts for the dashboard
func (r *GroupRepository) GetUserGroups(userID int64) ([]models.GroupSummary, error) {
	query := `
		SELECT g.id, g.name, g.created_by, g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id),
		       (SELECT COUNT(*) FROM scores s WHERE s.group_id = g.id)
		FROM puzzle_groups g
		INNER JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = ?
		ORDER BY g.created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var summaries []models.GroupSummary
	for rows.Next() {
		var s models.GroupSummary
		if err := rows.Scan(
			&s.Group.ID, &s.Group.Name, &s.Group.CreatedBy, &s.Group.CreatedAt, &s.Group.UpdatedAt,
			&s.MemberCount, &s.ScoreCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetMember retrieves a user's membership row for a group, or nil if the
// user is not a member
func (r *GroupRepository) GetMember(groupID, userID int64) (*models.GroupMember, error) {
	query := `
		SELECT id, group_id, user_id, role, joined_at
		FROM group_members
		WHERE group_id = ? AND user_id = ?
	`
	member := &models.GroupMember{}
	err := r.db.QueryRow(query, groupID, userID).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return member, nil
}

// GetGroupMembers retrieves all members of a group with their user details,
// oldest membership first
func (r *GroupRepository) GetGroupMembers(groupID int64) ([]models.GroupMember, []models.User, error) {
	query := `
		SELECT gm.id, gm.group_id, gm.user_id, gm.role, gm.joined_at,
		       u.id, u.email, u.name, u.image_url, u.show_in_global, u.created_at
		FROM group_members gm
		INNER JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = ?
		ORDER BY gm.joined_at ASC
	`
	rows, err := r.db.Query(query, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()

	var members []models.GroupMember
	var users []models.User
	for rows.Next() {
		var member models.GroupMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.GroupID, &member.UserID, &member.Role, &member.JoinedAt,
			&user.ID, &user.Email, &user.Name, &user.ImageURL, &user.ShowInGlobal, &user.CreatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, member)
		users = append(users, user)
	}
	return members, users, rows.Err()
}
