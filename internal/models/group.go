package models

import "time"

// Member roles within a group
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Group represents a private circle of users sharing a leaderboard
type Group struct {
	ID        int64
	Name      string
	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GroupMember represents the relationship between a user and a group
type GroupMember struct {
	ID       int64
	GroupID  int64
	UserID   int64
	Role     string // RoleAdmin or RoleMember
	JoinedAt time.Time
}

// IsAdmin reports whether the member holds the admin role
func (m *GroupMember) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// GroupWithMembers combines a group with its member information
type GroupWithMembers struct {
	Group   Group
	Members []GroupMember
	Users   []User // Associated user details, index-aligned with Members
}

// GroupSummary is a group with its row counts, for the dashboard listing
type GroupSummary struct {
	Group       Group
	MemberCount int
	ScoreCount  int
}
