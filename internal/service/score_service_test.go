package service

import (
	"errors"
	"testing"
	"time"

	"puzzleclash/internal/models"
	"puzzleclash/internal/repository"
	"puzzleclash/internal/validation"
)

func testDate(offset int) time.Time {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

type scoreFixture struct {
	users  *fakeUserStore
	groups *fakeGroupStore
	scores *fakeScoreStore
	svc    *ScoreService

	alice   *models.User
	bob     *models.User
	outcast *models.User
	groupID int64
}

func newScoreFixture(t *testing.T, bulkStrict bool) *scoreFixture {
	t.Helper()

	users := newFakeUserStore()
	groups := newFakeGroupStore(users)
	scores := &fakeScoreStore{}

	alice := users.addUser("alice@example.com", "Alice")
	bob := users.addUser("bob@example.com", "Bob")
	outcast := users.addUser("eve@example.com", "Eve")

	group, err := groups.CreateGroup("Puzzlers", alice.ID)
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	groups.addMember(group.ID, bob.ID, models.RoleMember)

	groupService := NewGroupService(groups)
	svc := NewScoreService(scores, groupService, users, bulkStrict, 30)

	return &scoreFixture{
		users: users, groups: groups, scores: scores, svc: svc,
		alice: alice, bob: bob, outcast: outcast, groupID: group.ID,
	}
}

func TestRecordScore(t *testing.T) {
	f := newScoreFixture(t, false)

	score, err := f.svc.RecordScore(f.groupID, f.alice.ID, ScoreInput{
		TargetUserID: f.bob.ID,
		Game:         models.GameZip,
		Points:       1,
		Date:         testDate(0),
	})
	if err != nil {
		t.Fatalf("RecordScore failed: %v", err)
	}
	if score.EnteredBy != f.alice.ID {
		t.Errorf("entered_by = %d, want %d", score.EnteredBy, f.alice.ID)
	}
	if score.UserID != f.bob.ID {
		t.Errorf("user_id = %d, want %d", score.UserID, f.bob.ID)
	}
}

func TestRecordScoreDuplicateDay(t *testing.T) {
	f := newScoreFixture(t, false)

	input := ScoreInput{TargetUserID: f.bob.ID, Game: models.GameZip, Points: 1, Date: testDate(0)}
	if _, err := f.svc.RecordScore(f.groupID, f.alice.ID, input); err != nil {
		t.Fatalf("first RecordScore failed: %v", err)
	}

	if _, err := f.svc.RecordScore(f.groupID, f.alice.ID, input); !errors.Is(err, ErrDuplicateScore) {
		t.Fatalf("expected ErrDuplicateScore, got %v", err)
	}

	// Same player, same day, other game is fine
	input.Game = models.GameQueens
	if _, err := f.svc.RecordScore(f.groupID, f.alice.ID, input); err != nil {
		t.Fatalf("other game on same day failed: %v", err)
	}
}

func TestRecordScoreRejectsNonMembers(t *testing.T) {
	f := newScoreFixture(t, false)

	// Non-member actor
	_, err := f.svc.RecordScore(f.groupID, f.outcast.ID, ScoreInput{
		TargetUserID: f.bob.ID, Game: models.GameZip, Points: 1, Date: testDate(0),
	})
	if !errors.Is(err, ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember for actor, got %v", err)
	}

	// Non-member target
	_, err = f.svc.RecordScore(f.groupID, f.alice.ID, ScoreInput{
		TargetUserID: f.outcast.ID, Game: models.GameZip, Points: 1, Date: testDate(0),
	})
	if !errors.Is(err, ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember for target, got %v", err)
	}

	if len(f.scores.scores) != 0 {
		t.Errorf("rejected submissions left %d rows behind", len(f.scores.scores))
	}
}

func TestRecordScoreValidatesInput(t *testing.T) {
	f := newScoreFixture(t, false)

	var validationErr validation.ValidationError

	_, err := f.svc.RecordScore(f.groupID, f.alice.ID, ScoreInput{
		TargetUserID: f.bob.ID, Game: "SUDOKU", Points: 1, Date: testDate(0),
	})
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for unknown game, got %v", err)
	}

	_, err = f.svc.RecordScore(f.groupID, f.alice.ID, ScoreInput{
		TargetUserID: f.bob.ID, Game: models.GameZip, Points: 2, Date: testDate(0),
	})
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for points outside 0..1, got %v", err)
	}
}

func TestRecordBulkScoresThenResubmitOverwrites(t *testing.T) {
	f := newScoreFixture(t, false)

	entries := []repository.ScoreEntry{
		{UserID: f.alice.ID, Points: 2},
		{UserID: f.bob.ID, Points: 1},
	}
	if err := f.svc.RecordBulkScores(f.groupID, f.alice.ID, models.GameZip, testDate(0), entries); err != nil {
		t.Fatalf("first bulk submit failed: %v", err)
	}

	// Corrected re-submission for the same day
	corrected := []repository.ScoreEntry{
		{UserID: f.alice.ID, Points: 3},
		{UserID: f.bob.ID, Points: 1},
	}
	if err := f.svc.RecordBulkScores(f.groupID, f.alice.ID, models.GameZip, testDate(0), corrected); err != nil {
		t.Fatalf("re-submit failed: %v", err)
	}

	if len(f.scores.scores) != 2 {
		t.Fatalf("expected 2 rows after re-submit, got %d", len(f.scores.scores))
	}
	for _, sc := range f.scores.scores {
		if sc.UserID == f.alice.ID && sc.Points != 3 {
			t.Errorf("Alice's points = %d, want overwritten value 3", sc.Points)
		}
	}
}

func TestRecordBulkScoresRejectsEmptyAndNonMembers(t *testing.T) {
	f := newScoreFixture(t, false)

	if err := f.svc.RecordBulkScores(f.groupID, f.alice.ID, models.GameZip, testDate(0), nil); !errors.Is(err, ErrNoEntries) {
		t.Fatalf("expected ErrNoEntries, got %v", err)
	}

	entries := []repository.ScoreEntry{{UserID: f.outcast.ID, Points: 1}}
	if err := f.svc.RecordBulkScores(f.groupID, f.alice.ID, models.GameZip, testDate(0), entries); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember for non-member entry, got %v", err)
	}

	if err := f.svc.RecordBulkScores(f.groupID, f.outcast.ID, models.GameZip, testDate(0), entries); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember for non-member actor, got %v", err)
	}
}

func TestRecordBulkScoresStrictMode(t *testing.T) {
	f := newScoreFixture(t, true)

	entries := []repository.ScoreEntry{{UserID: f.bob.ID, Points: 5}}
	err := f.svc.RecordBulkScores(f.groupID, f.alice.ID, models.GameZip, testDate(0), entries)

	var validationErr validation.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error in strict mode, got %v", err)
	}
}

func TestRecordBulkScoresOpenModeAllowsCounts(t *testing.T) {
	f := newScoreFixture(t, false)

	entries := []repository.ScoreEntry{{UserID: f.bob.ID, Points: 7}}
	if err := f.svc.RecordBulkScores(f.groupID, f.alice.ID, models.GameZip, testDate(0), entries); err != nil {
		t.Fatalf("open mode rejected accumulated count: %v", err)
	}

	negative := []repository.ScoreEntry{{UserID: f.bob.ID, Points: -1}}
	err := f.svc.RecordBulkScores(f.groupID, f.alice.ID, models.GameZip, testDate(0), negative)
	var validationErr validation.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for negative points, got %v", err)
	}
}

func TestGroupScoresRequiresMembership(t *testing.T) {
	f := newScoreFixture(t, false)

	if _, err := f.svc.GroupScores(f.groupID, f.outcast.ID, 0); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}
}

func TestGroupScoresIsolatedPerGroup(t *testing.T) {
	f := newScoreFixture(t, false)

	// Bob also belongs to a second group with its own scores
	other, err := f.groups.CreateGroup("Other", f.bob.ID)
	if err != nil {
		t.Fatalf("failed to create second group: %v", err)
	}

	if _, err := f.svc.RecordScore(f.groupID, f.alice.ID, ScoreInput{
		TargetUserID: f.bob.ID, Game: models.GameZip, Points: 1, Date: time.Now(),
	}); err != nil {
		t.Fatalf("score in first group failed: %v", err)
	}
	if _, err := f.svc.RecordScore(other.ID, f.bob.ID, ScoreInput{
		TargetUserID: f.bob.ID, Game: models.GameZip, Points: 1, Date: time.Now(),
	}); err != nil {
		t.Fatalf("score in second group failed: %v", err)
	}

	scores, err := f.svc.GroupScores(other.ID, f.bob.ID, 0)
	if err != nil {
		t.Fatalf("GroupScores failed: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected 1 score in second group, got %d", len(scores))
	}
	if scores[0].GroupID != other.ID {
		t.Errorf("score leaked from group %d", scores[0].GroupID)
	}
}

func TestGlobalLeaderboardOnlyOptIns(t *testing.T) {
	f := newScoreFixture(t, false)

	if err := f.users.SetShowInGlobal(f.alice.ID, true); err != nil {
		t.Fatalf("opt-in failed: %v", err)
	}

	if _, err := f.svc.RecordScore(f.groupID, f.alice.ID, ScoreInput{
		TargetUserID: f.alice.ID, Game: models.GameZip, Points: 1, Date: testDate(0),
	}); err != nil {
		t.Fatalf("RecordScore failed: %v", err)
	}
	if _, err := f.svc.RecordScore(f.groupID, f.alice.ID, ScoreInput{
		TargetUserID: f.bob.ID, Game: models.GameZip, Points: 1, Date: testDate(0),
	}); err != nil {
		t.Fatalf("RecordScore failed: %v", err)
	}

	standings, err := f.svc.GlobalLeaderboard()
	if err != nil {
		t.Fatalf("GlobalLeaderboard failed: %v", err)
	}
	if len(standings) != 1 {
		t.Fatalf("expected 1 standing, got %d", len(standings))
	}
	if standings[0].UserID != f.alice.ID {
		t.Errorf("expected Alice on the global board, got user %d", standings[0].UserID)
	}
}
