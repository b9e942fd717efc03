package models

import "time"

// Invitation statuses. Pending is the only non-terminal state.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// Invitation represents an offer of group membership tied to an email
// address. ReceiverID is nil until an account with the matching email
// exists; it is backfilled lazily when that user fetches their invitations.
type Invitation struct {
	ID         int64
	GroupID    int64
	SenderID   int64
	ReceiverID *int64
	Email      string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Populated via JOIN on list reads
	GroupName  string
	SenderName string
}

// IsPending reports whether the invitation can still be acted on
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationPending
}

// IsFor reports whether the invitation is addressed to the given user
func (i *Invitation) IsFor(userID int64) bool {
	return i.ReceiverID != nil && *i.ReceiverID == userID
}
