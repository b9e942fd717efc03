// Package scoring holds the pure aggregation logic behind the leaderboard
// and trend views. Functions here know nothing about groups or membership;
// callers pre-filter the score rows to the scope they want ranked (one
// group, or the global opt-in pool).
package scoring

import (
	"sort"
	"strings"

	"puzzleclash/internal/models"
)

// Player identifies one user to rank
type Player struct {
	ID       int64
	Name     string
	ImageURL string
}

// Standing is one row of a computed leaderboard
type Standing struct {
	UserID      int64
	UserName    string
	UserImage   string
	ZipScore    int
	QueensScore int
	TotalScore  int
}

// Leaderboard computes per-player ZIP, QUEENS and total point sums over the
// given scores and returns them sorted by total, highest first. Scores for
// users outside the roster are ignored. Ties break by case-insensitive name,
// then by user ID, so recomputation over the same input always yields the
// same order.
func Leaderboard(scores []models.Score, roster []Player) []Standing {
	byUser := make(map[int64]*Standing, len(roster))
	standings := make([]Standing, len(roster))
	for i, p := range roster {
		standings[i] = Standing{UserID: p.ID, UserName: p.Name, UserImage: p.ImageURL}
		byUser[p.ID] = &standings[i]
	}

	for _, s := range scores {
		standing, ok := byUser[s.UserID]
		if !ok {
			continue
		}
		switch s.Game {
		case models.GameZip:
			standing.ZipScore += s.Points
		case models.GameQueens:
			standing.QueensScore += s.Points
		}
	}

	for i := range standings {
		standings[i].TotalScore = standings[i].ZipScore + standings[i].QueensScore
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standingLess(standings[i], standings[j], standings[i].TotalScore, standings[j].TotalScore)
	})

	return standings
}

// TopByGame reorders a copy of standings by a single game's score, highest
// first, and returns at most n rows. Used for the per-game side boards.
func TopByGame(standings []Standing, game string, n int) []Standing {
	ranked := make([]Standing, len(standings))
	copy(ranked, standings)

	sort.SliceStable(ranked, func(i, j int) bool {
		return standingLess(ranked[i], ranked[j], gameScore(ranked[i], game), gameScore(ranked[j], game))
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func gameScore(s Standing, game string) int {
	if game == models.GameQueens {
		return s.QueensScore
	}
	return s.ZipScore
}

// standingLess orders by score descending, then name (case-insensitive),
// then user ID
func standingLess(a, b Standing, scoreA, scoreB int) bool {
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	nameA, nameB := strings.ToLower(a.UserName), strings.ToLower(b.UserName)
	if nameA != nameB {
		return nameA < nameB
	}
	return a.UserID < b.UserID
}
