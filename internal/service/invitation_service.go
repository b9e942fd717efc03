package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"puzzleclash/internal/models"
	"puzzleclash/internal/validation"
)

var (
	ErrAlreadyMember       = errors.New("user is already a member of this group")
	ErrDuplicateInvitation = errors.New("invitation already sent to this email")
	ErrInvalidInvitation   = errors.New("invalid invitation")
	ErrAlreadyProcessed    = errors.New("invitation already processed")
)

// InvitationStore defines the persistence operations InvitationService needs
type InvitationStore interface {
	CreateInvitation(groupID, senderID int64, receiverID *int64, email string) (*models.Invitation, error)
	GetInvitationByID(id int64) (*models.Invitation, error)
	HasPendingInvitation(groupID int64, email string) (bool, error)
	ClaimPendingByEmail(email string, userID int64) (int64, error)
	GetPendingForReceiver(userID int64) ([]models.Invitation, error)
	AcceptInvitation(inv *models.Invitation) error
	DeclineInvitation(id int64) error
}

// InvitationNotifier sends the optional invitation email. Implementations
// must be safe to call when disabled.
type InvitationNotifier interface {
	SendInvitationEmail(ctx context.Context, toEmail, groupName, senderName string) error
}

// InvitationService handles the invitation workflow: pending → accepted or
// pending → declined, both terminal.
type InvitationService struct {
	invitations InvitationStore
	groups      *GroupService
	users       UserStore
	notifier    InvitationNotifier
}

// NewInvitationService creates a new invitation service
func NewInvitationService(invitations InvitationStore, groups *GroupService, users UserStore, notifier InvitationNotifier) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		groups:      groups,
		users:       users,
		notifier:    notifier,
	}
}

// Invite creates a pending invitation for an email address. The sender must
// hold the admin role. If an account with the email already exists, the
// invitation is addressed to it immediately; otherwise the receiver is
// resolved later, when a matching account signs in.
func (s *InvitationService) Invite(ctx context.Context, groupID, senderID int64, email string) (*models.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	if err := s.groups.VerifyAdmin(groupID, senderID); err != nil {
		return nil, err
	}

	var receiverID *int64
	invited, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invited user: %w", err)
	}
	if invited != nil {
		member, err := s.groups.groups.GetMember(groupID, invited.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if member != nil {
			return nil, ErrAlreadyMember
		}
		receiverID = &invited.ID
	}

	hasPending, err := s.invitations.HasPendingInvitation(groupID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitation: %w", err)
	}
	if hasPending {
		return nil, ErrDuplicateInvitation
	}

	invitation, err := s.invitations.CreateInvitation(groupID, senderID, receiverID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	// Notification is best-effort; the invitation stands either way
	if s.notifier != nil {
		if err := s.notifier.SendInvitationEmail(ctx, email, invitation.GroupName, invitation.SenderName); err != nil {
			log.Printf("Failed to send invitation email to %s: %v", email, err)
		}
	}

	return invitation, nil
}

// PendingForUser returns the user's pending invitations. As a side effect,
// any pending invitation addressed to the user's email but not yet resolved
// to an account is claimed for them first (read-triggers-repair).
func (s *InvitationService) PendingForUser(user *models.User) ([]models.Invitation, error) {
	claimed, err := s.invitations.ClaimPendingByEmail(strings.ToLower(user.Email), user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim invitations: %w", err)
	}
	if claimed > 0 {
		log.Printf("Linked %d pending invitation(s) to user %d", claimed, user.ID)
	}

	invitations, err := s.invitations.GetPendingForReceiver(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitations: %w", err)
	}
	return invitations, nil
}

// Accept adds the acting user to the invitation's group with the member
// role and marks the invitation accepted, atomically.
func (s *InvitationService) Accept(invitationID, actorID int64) error {
	inv, err := s.loadFor(invitationID, actorID)
	if err != nil {
		return err
	}

	if err := s.invitations.AcceptInvitation(inv); err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	return nil
}

// Decline marks the invitation declined without creating a membership
func (s *InvitationService) Decline(invitationID, actorID int64) error {
	inv, err := s.loadFor(invitationID, actorID)
	if err != nil {
		return err
	}

	if err := s.invitations.DeclineInvitation(inv.ID); err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}
	return nil
}

// loadFor fetches an invitation and checks the actor may act on it
func (s *InvitationService) loadFor(invitationID, actorID int64) (*models.Invitation, error) {
	inv, err := s.invitations.GetInvitationByID(invitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil || !inv.IsFor(actorID) {
		return nil, ErrInvalidInvitation
	}
	if !inv.IsPending() {
		return nil, ErrAlreadyProcessed
	}
	return inv, nil
}
