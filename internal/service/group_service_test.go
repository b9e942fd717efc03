package service

import (
	"errors"
	"testing"

	"puzzleclash/internal/models"
	"puzzleclash/internal/validation"
)

func TestCreateGroupMakesCreatorAdmin(t *testing.T) {
	users := newFakeUserStore()
	groups := newFakeGroupStore(users)
	svc := NewGroupService(groups)

	creator := users.addUser("alice@example.com", "Alice")

	group, err := svc.CreateGroup("Puzzlers", creator.ID)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	member, err := groups.GetMember(group.ID, creator.ID)
	if err != nil || member == nil {
		t.Fatalf("creator is not a member: %v", err)
	}
	if !member.IsAdmin() {
		t.Errorf("creator role = %q, want admin", member.Role)
	}
}

func TestCreateGroupValidatesName(t *testing.T) {
	users := newFakeUserStore()
	svc := NewGroupService(newFakeGroupStore(users))

	var validationErr validation.ValidationError
	if _, err := svc.CreateGroup("   ", 1); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
}

func TestGetGroupNotFound(t *testing.T) {
	users := newFakeUserStore()
	svc := NewGroupService(newFakeGroupStore(users))

	if _, err := svc.GetGroup(42); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestVerifyMemberAndAdmin(t *testing.T) {
	users := newFakeUserStore()
	groups := newFakeGroupStore(users)
	svc := NewGroupService(groups)

	admin := users.addUser("admin@example.com", "Ada")
	member := users.addUser("member@example.com", "Max")
	outsider := users.addUser("out@example.com", "Olga")

	group, err := groups.CreateGroup("Puzzlers", admin.ID)
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	groups.addMember(group.ID, member.ID, models.RoleMember)

	if err := svc.VerifyMember(group.ID, member.ID); err != nil {
		t.Errorf("VerifyMember rejected a member: %v", err)
	}
	if err := svc.VerifyMember(group.ID, outsider.ID); !errors.Is(err, ErrNotAMember) {
		t.Errorf("expected ErrNotAMember, got %v", err)
	}

	if err := svc.VerifyAdmin(group.ID, admin.ID); err != nil {
		t.Errorf("VerifyAdmin rejected the admin: %v", err)
	}
	if err := svc.VerifyAdmin(group.ID, member.ID); !errors.Is(err, ErrNotAnAdmin) {
		t.Errorf("expected ErrNotAnAdmin for plain member, got %v", err)
	}
	if err := svc.VerifyAdmin(group.ID, outsider.ID); !errors.Is(err, ErrNotAMember) {
		t.Errorf("expected ErrNotAMember for outsider, got %v", err)
	}
}

func TestGetUserGroupsListsMemberships(t *testing.T) {
	users := newFakeUserStore()
	groups := newFakeGroupStore(users)
	svc := NewGroupService(groups)

	alice := users.addUser("alice@example.com", "Alice")
	bob := users.addUser("bob@example.com", "Bob")

	first, _ := groups.CreateGroup("First", alice.ID)
	groups.CreateGroup("Second", bob.ID)
	groups.addMember(first.ID, bob.ID, models.RoleMember)

	summaries, err := svc.GetUserGroups(bob.ID)
	if err != nil {
		t.Fatalf("GetUserGroups failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 groups for Bob, got %d", len(summaries))
	}

	summaries, err = svc.GetUserGroups(alice.ID)
	if err != nil {
		t.Fatalf("GetUserGroups failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 group for Alice, got %d", len(summaries))
	}
	if summaries[0].MemberCount != 2 {
		t.Errorf("member count = %d, want 2", summaries[0].MemberCount)
	}
}
