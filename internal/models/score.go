package models

import "time"

// Game identifiers for the two tracked puzzles
const (
	GameZip    = "ZIP"
	GameQueens = "QUEENS"
)

// ValidGame reports whether game names a tracked puzzle
func ValidGame(game string) bool {
	return game == GameZip || game == GameQueens
}

// Score is one game result for one user, one game, one date, within one
// group. Rows are never edited or deleted through the app; the bulk entry
// path may overwrite a row for the same (group, user, game, date) key.
type Score struct {
	ID         int64
	GroupID    int64
	UserID     int64
	Game       string
	Points     int
	TimeTaken  *string
	Backtracks *int
	Notes      *string
	Date       time.Time
	EnteredBy  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Populated via JOIN on window reads
	UserName  string
	UserImage string
}

// DateKey returns the score's date in YYYY-MM-DD form
func (s *Score) DateKey() string {
	return s.Date.Format("2006-01-02")
}
