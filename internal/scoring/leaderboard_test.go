package scoring

import (
	"testing"
	"time"

	"puzzleclash/internal/models"
)

func day(offset int) time.Time {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func score(userID int64, game string, points int, date time.Time) models.Score {
	return models.Score{UserID: userID, Game: game, Points: points, Date: date}
}

func TestLeaderboardSumsPerGame(t *testing.T) {
	roster := []Player{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob"},
	}
	scores := []models.Score{
		score(1, models.GameZip, 1, day(0)),
		score(1, models.GameZip, 1, day(1)),
		score(1, models.GameQueens, 1, day(0)),
		score(2, models.GameZip, 1, day(0)),
	}

	standings := Leaderboard(scores, roster)

	if len(standings) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(standings))
	}
	if standings[0].UserID != 1 {
		t.Fatalf("expected Alice first, got user %d", standings[0].UserID)
	}
	if standings[0].ZipScore != 2 || standings[0].QueensScore != 1 || standings[0].TotalScore != 3 {
		t.Errorf("Alice standings = %+v, want zip 2 queens 1 total 3", standings[0])
	}
	if standings[1].ZipScore != 1 || standings[1].TotalScore != 1 {
		t.Errorf("Bob standings = %+v, want zip 1 total 1", standings[1])
	}
}

func TestLeaderboardTotalIsSumOfGames(t *testing.T) {
	roster := []Player{{ID: 1, Name: "Alice"}}
	scores := []models.Score{
		score(1, models.GameZip, 3, day(0)),
		score(1, models.GameQueens, 4, day(1)),
	}

	standings := Leaderboard(scores, roster)

	if got := standings[0].TotalScore; got != standings[0].ZipScore+standings[0].QueensScore {
		t.Errorf("total %d is not zip+queens", got)
	}
}

func TestLeaderboardIgnoresNonRosterScores(t *testing.T) {
	roster := []Player{{ID: 1, Name: "Alice"}}
	scores := []models.Score{
		score(1, models.GameZip, 1, day(0)),
		score(99, models.GameZip, 5, day(0)),
	}

	standings := Leaderboard(scores, roster)

	if len(standings) != 1 {
		t.Fatalf("expected 1 standing, got %d", len(standings))
	}
	if standings[0].TotalScore != 1 {
		t.Errorf("expected total 1, got %d", standings[0].TotalScore)
	}
}

func TestLeaderboardMembersWithoutScoresAppearWithZero(t *testing.T) {
	roster := []Player{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob"},
	}
	scores := []models.Score{score(1, models.GameZip, 1, day(0))}

	standings := Leaderboard(scores, roster)

	if len(standings) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(standings))
	}
	if standings[1].UserID != 2 || standings[1].TotalScore != 0 {
		t.Errorf("expected Bob with total 0, got %+v", standings[1])
	}
}

func TestLeaderboardTieBreaksByNameThenID(t *testing.T) {
	roster := []Player{
		{ID: 3, Name: "carol"},
		{ID: 2, Name: "Bob"},
		{ID: 5, Name: "bob"},
	}

	standings := Leaderboard(nil, roster)

	// All totals are zero: Bob (id 2) before bob (id 5) before carol
	wantOrder := []int64{2, 5, 3}
	for i, want := range wantOrder {
		if standings[i].UserID != want {
			t.Fatalf("position %d: expected user %d, got %d", i, want, standings[i].UserID)
		}
	}
}

func TestLeaderboardIsDeterministic(t *testing.T) {
	roster := []Player{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob"},
		{ID: 3, Name: "Carol"},
	}
	scores := []models.Score{
		score(1, models.GameZip, 1, day(0)),
		score(2, models.GameQueens, 1, day(0)),
		score(3, models.GameZip, 1, day(1)),
	}

	first := Leaderboard(scores, roster)
	second := Leaderboard(scores, roster)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("recomputation changed order at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestTopByGameRanksBySingleGame(t *testing.T) {
	roster := []Player{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob"},
		{ID: 3, Name: "Carol"},
	}
	scores := []models.Score{
		score(1, models.GameZip, 1, day(0)),
		score(2, models.GameZip, 2, day(0)),
		score(2, models.GameQueens, 1, day(0)),
		score(3, models.GameQueens, 3, day(0)),
	}

	standings := Leaderboard(scores, roster)

	zipTop := TopByGame(standings, models.GameZip, 2)
	if len(zipTop) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(zipTop))
	}
	if zipTop[0].UserID != 2 || zipTop[1].UserID != 1 {
		t.Errorf("zip order = %d, %d; want 2, 1", zipTop[0].UserID, zipTop[1].UserID)
	}

	queensTop := TopByGame(standings, models.GameQueens, 3)
	if queensTop[0].UserID != 3 {
		t.Errorf("expected Carol first for queens, got user %d", queensTop[0].UserID)
	}
}

func TestTopByGameDoesNotMutateInput(t *testing.T) {
	roster := []Player{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob"},
	}
	scores := []models.Score{
		score(2, models.GameQueens, 5, day(0)),
		score(1, models.GameZip, 1, day(0)),
	}

	standings := Leaderboard(scores, roster)
	firstBefore := standings[0].UserID

	TopByGame(standings, models.GameZip, 1)

	if standings[0].UserID != firstBefore {
		t.Error("TopByGame reordered the caller's slice")
	}
}
