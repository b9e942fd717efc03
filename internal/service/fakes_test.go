package service

import (
	"context"
	"strings"
	"time"

	"puzzleclash/internal/models"
	"puzzleclash/internal/repository"
)

// In-memory stores backing the service tests. They mirror the repository
// behavior the services rely on: nil for missing rows, one row per
// (group, user, game, date) key, lazy receiver claims.

type fakeUserStore struct {
	users    map[int64]*models.User
	sessions map[string]*models.Session
	nextID   int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    make(map[int64]*models.User),
		sessions: make(map[string]*models.Session),
	}
}

func (s *fakeUserStore) addUser(email, name string) *models.User {
	u := s.mustCreate(email, "", name)
	return u
}

func (s *fakeUserStore) mustCreate(email, passwordHash, name string) *models.User {
	s.nextID++
	u := &models.User{
		ID:           s.nextID,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now(),
	}
	s.users[u.ID] = u
	return u
}

func (s *fakeUserStore) CreateUser(email, passwordHash, name string) (*models.User, error) {
	return s.mustCreate(email, passwordHash, name), nil
}

func (s *fakeUserStore) CreateOAuthUser(email, name, imageURL, provider, subject string) (*models.User, error) {
	u := s.mustCreate(email, "", name)
	u.ImageURL = imageURL
	u.OAuthProvider = provider
	u.OAuthSubject = subject
	return u, nil
}

func (s *fakeUserStore) GetUserByID(id int64) (*models.User, error) {
	return s.users[id], nil
}

func (s *fakeUserStore) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetUserByOAuth(provider, subject string) (*models.User, error) {
	for _, u := range s.users {
		if u.OAuthProvider == provider && u.OAuthSubject == subject {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) LinkOAuthIdentity(userID int64, provider, subject, imageURL string) error {
	if u := s.users[userID]; u != nil {
		u.OAuthProvider = provider
		u.OAuthSubject = subject
		if u.ImageURL == "" {
			u.ImageURL = imageURL
		}
	}
	return nil
}

func (s *fakeUserStore) SetShowInGlobal(userID int64, show bool) error {
	if u := s.users[userID]; u != nil {
		u.ShowInGlobal = show
	}
	return nil
}

func (s *fakeUserStore) GetGlobalOptInUsers() ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.ShowInGlobal {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	sess := &models.Session{ID: sessionID, UserID: userID, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	s.sessions[sessionID] = sess
	return sess, nil
}

func (s *fakeUserStore) GetSession(sessionID string) (*models.Session, error) {
	return s.sessions[sessionID], nil
}

func (s *fakeUserStore) DeleteSession(sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

func (s *fakeUserStore) DeleteExpiredSessions() error {
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
		}
	}
	return nil
}

type fakeGroupStore struct {
	groups  map[int64]*models.Group
	members map[int64][]models.GroupMember
	users   *fakeUserStore
	nextID  int64
}

func newFakeGroupStore(users *fakeUserStore) *fakeGroupStore {
	return &fakeGroupStore{
		groups:  make(map[int64]*models.Group),
		members: make(map[int64][]models.GroupMember),
		users:   users,
	}
}

func (s *fakeGroupStore) CreateGroup(name string, creatorUserID int64) (*models.Group, error) {
	s.nextID++
	g := &models.Group{ID: s.nextID, Name: name, CreatedBy: creatorUserID, CreatedAt: time.Now()}
	s.groups[g.ID] = g
	s.members[g.ID] = []models.GroupMember{
		{ID: s.nextID, GroupID: g.ID, UserID: creatorUserID, Role: models.RoleAdmin, JoinedAt: time.Now()},
	}
	return g, nil
}

func (s *fakeGroupStore) GetGroupByID(groupID int64) (*models.Group, error) {
	return s.groups[groupID], nil
}

func (s *fakeGroupStore) GetUserGroups(userID int64) ([]models.GroupSummary, error) {
	var out []models.GroupSummary
	for groupID, members := range s.members {
		for _, m := range members {
			if m.UserID == userID {
				out = append(out, models.GroupSummary{Group: *s.groups[groupID], MemberCount: len(members)})
			}
		}
	}
	return out, nil
}

func (s *fakeGroupStore) GetMember(groupID, userID int64) (*models.GroupMember, error) {
	for _, m := range s.members[groupID] {
		if m.UserID == userID {
			member := m
			return &member, nil
		}
	}
	return nil, nil
}

func (s *fakeGroupStore) GetGroupMembers(groupID int64) ([]models.GroupMember, []models.User, error) {
	members := s.members[groupID]
	users := make([]models.User, len(members))
	for i, m := range members {
		if u := s.users.users[m.UserID]; u != nil {
			users[i] = *u
		}
	}
	return members, users, nil
}

func (s *fakeGroupStore) addMember(groupID, userID int64, role string) {
	s.members[groupID] = append(s.members[groupID], models.GroupMember{
		GroupID: groupID, UserID: userID, Role: role, JoinedAt: time.Now(),
	})
}

type fakeScoreStore struct {
	scores []models.Score
	nextID int64
}

func (s *fakeScoreStore) InsertScore(score *models.Score) (*models.Score, error) {
	s.nextID++
	stored := *score
	stored.ID = s.nextID
	s.scores = append(s.scores, stored)
	return &stored, nil
}

func (s *fakeScoreStore) HasScore(groupID, userID int64, game string, date time.Time) (bool, error) {
	key := date.Format("2006-01-02")
	for _, sc := range s.scores {
		if sc.GroupID == groupID && sc.UserID == userID && sc.Game == game && sc.DateKey() == key {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeScoreStore) UpsertBulkScores(groupID int64, game string, date time.Time, enteredBy int64, entries []repository.ScoreEntry) error {
	key := date.Format("2006-01-02")
	for _, entry := range entries {
		replaced := false
		for i := range s.scores {
			sc := &s.scores[i]
			if sc.GroupID == groupID && sc.UserID == entry.UserID && sc.Game == game && sc.DateKey() == key {
				sc.Points = entry.Points
				sc.TimeTaken = entry.TimeTaken
				sc.Backtracks = entry.Backtracks
				sc.EnteredBy = enteredBy
				replaced = true
				break
			}
		}
		if !replaced {
			s.nextID++
			s.scores = append(s.scores, models.Score{
				ID: s.nextID, GroupID: groupID, UserID: entry.UserID, Game: game,
				Points: entry.Points, TimeTaken: entry.TimeTaken, Backtracks: entry.Backtracks,
				Date: date, EnteredBy: enteredBy,
			})
		}
	}
	return nil
}

func (s *fakeScoreStore) GetGroupScoresSince(groupID int64, since time.Time) ([]models.Score, error) {
	var out []models.Score
	for _, sc := range s.scores {
		if sc.GroupID == groupID && !sc.Date.Before(since) {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *fakeScoreStore) GetScoresForUsers(userIDs []int64) ([]models.Score, error) {
	wanted := make(map[int64]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	var out []models.Score
	for _, sc := range s.scores {
		if wanted[sc.UserID] {
			out = append(out, sc)
		}
	}
	return out, nil
}

type fakeInvitationStore struct {
	invitations map[int64]*models.Invitation
	groups      *fakeGroupStore
	nextID      int64
}

func newFakeInvitationStore(groups *fakeGroupStore) *fakeInvitationStore {
	return &fakeInvitationStore{
		invitations: make(map[int64]*models.Invitation),
		groups:      groups,
	}
}

func (s *fakeInvitationStore) CreateInvitation(groupID, senderID int64, receiverID *int64, email string) (*models.Invitation, error) {
	s.nextID++
	inv := &models.Invitation{
		ID: s.nextID, GroupID: groupID, SenderID: senderID, ReceiverID: receiverID,
		Email: email, Status: models.InvitationPending, CreatedAt: time.Now(),
	}
	if g := s.groups.groups[groupID]; g != nil {
		inv.GroupName = g.Name
	}
	s.invitations[inv.ID] = inv
	return inv, nil
}

func (s *fakeInvitationStore) GetInvitationByID(id int64) (*models.Invitation, error) {
	return s.invitations[id], nil
}

func (s *fakeInvitationStore) HasPendingInvitation(groupID int64, email string) (bool, error) {
	for _, inv := range s.invitations {
		if inv.GroupID == groupID && inv.Email == email && inv.IsPending() {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeInvitationStore) ClaimPendingByEmail(email string, userID int64) (int64, error) {
	var claimed int64
	for _, inv := range s.invitations {
		if inv.Email == email && inv.ReceiverID == nil && inv.IsPending() {
			id := userID
			inv.ReceiverID = &id
			claimed++
		}
	}
	return claimed, nil
}

func (s *fakeInvitationStore) GetPendingForReceiver(userID int64) ([]models.Invitation, error) {
	var out []models.Invitation
	for _, inv := range s.invitations {
		if inv.IsFor(userID) && inv.IsPending() {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *fakeInvitationStore) AcceptInvitation(inv *models.Invitation) error {
	stored := s.invitations[inv.ID]
	stored.Status = models.InvitationAccepted
	s.groups.addMember(stored.GroupID, *stored.ReceiverID, models.RoleMember)
	return nil
}

func (s *fakeInvitationStore) DeclineInvitation(id int64) error {
	s.invitations[id].Status = models.InvitationDeclined
	return nil
}

type fakeNotifier struct {
	sent []string
}

func (n *fakeNotifier) SendInvitationEmail(ctx context.Context, toEmail, groupName, senderName string) error {
	n.sent = append(n.sent, toEmail)
	return nil
}
