package service

import (
	"errors"
	"fmt"

	"puzzleclash/internal/models"
	"puzzleclash/internal/validation"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNotAMember    = errors.New("user is not a member of this group")
	ErrNotAnAdmin    = errors.New("only group admins can do this")
)

// GroupStore defines the persistence operations GroupService needs
type GroupStore interface {
	CreateGroup(name string, creatorUserID int64) (*models.Group, error)
	GetGroupByID(groupID int64) (*models.Group, error)
	GetUserGroups(userID int64) ([]models.GroupSummary, error)
	GetMember(groupID, userID int64) (*models.GroupMember, error)
	GetGroupMembers(groupID int64) ([]models.GroupMember, []models.User, error)
}

// GroupService handles group and membership business logic. Its Verify
// methods are the membership guard every group-scoped operation runs first.
type GroupService struct {
	groups GroupStore
}

// NewGroupService creates a new group service
func NewGroupService(groups GroupStore) *GroupService {
	return &GroupService{groups: groups}
}

// CreateGroup creates a new group with the creator as its admin member
func (s *GroupService) CreateGroup(name string, creatorUserID int64) (*models.Group, error) {
	if err := validation.ValidateGroupName(name); err != nil {
		return nil, err
	}

	group, err := s.groups.CreateGroup(name, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

// GetGroup retrieves a group by ID
func (s *GroupService) GetGroup(groupID int64) (*models.Group, error) {
	group, err := s.groups.GetGroupByID(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetUserGroups retrieves all groups a user belongs to
func (s *GroupService) GetUserGroups(userID int64) ([]models.GroupSummary, error) {
	summaries, err := s.groups.GetUserGroups(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user groups: %w", err)
	}
	return summaries, nil
}

// VerifyMember checks that a user is a member of a group
func (s *GroupService) VerifyMember(groupID, userID int64) error {
	member, err := s.groups.GetMember(groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	if member == nil {
		return ErrNotAMember
	}
	return nil
}

// VerifyAdmin checks that a user holds the admin role in a group
func (s *GroupService) VerifyAdmin(groupID, userID int64) error {
	member, err := s.groups.GetMember(groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	if member == nil {
		return ErrNotAMember
	}
	if !member.IsAdmin() {
		return ErrNotAnAdmin
	}
	return nil
}

// GetGroupMembers retrieves all members of a group with their user details
func (s *GroupService) GetGroupMembers(groupID int64) ([]models.GroupMember, []models.User, error) {
	members, users, err := s.groups.GetGroupMembers(groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get group members: %w", err)
	}
	return members, users, nil
}
