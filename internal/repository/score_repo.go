package repository

import (
	"database/sql"
	"fmt"
	"time"

	"puzzleclash/internal/database"
	"puzzleclash/internal/models"
)

// ScoreRepository handles database operations for scores
type ScoreRepository struct {
	db *database.DB
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db *database.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// ScoreEntry is one row of a bulk submission
type ScoreEntry struct {
	UserID     int64
	Points     int
	TimeTaken  *string
	Backtracks *int
}

// InsertScore inserts a single score row
func (r *ScoreRepository) InsertScore(score *models.Score) (*models.Score, error) {
	query := `
		INSERT INTO scores (group_id, user_id, game, points, time_taken, backtracks, notes, date, entered_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		score.GroupID, score.UserID, score.Game, score.Points,
		score.TimeTaken, score.Backtracks, score.Notes,
		score.Date.Format("2006-01-02"), score.EnteredBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert score: %w", err)
	}

	inserted := *score
	inserted.ID = id
	inserted.CreatedAt = time.Now()
	inserted.UpdatedAt = inserted.CreatedAt
	return &inserted, nil
}

// HasScore checks for an existing row for (group, user, game, date). The
// unique constraint is the real guard against concurrent duplicates; this
// lookup exists to produce a friendly error before hitting it.
func (r *ScoreRepository) HasScore(groupID, userID int64, game string, date time.Time) (bool, error) {
	query := "SELECT COUNT(*) FROM scores WHERE group_id = ? AND user_id = ? AND game = ? AND date = ?"
	var count int
	err := r.db.QueryRow(query, groupID, userID, game, date.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check score: %w", err)
	}
	return count > 0, nil
}

// UpsertBulkScores applies a daily bulk submission as one transaction: one
// dialect-native upsert per entry, all-or-nothing, so a partially-applied
// submission can never be observed.
func (r *ScoreRepository) UpsertBulkScores(groupID int64, game string, date time.Time, enteredBy int64, entries []ScoreEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := r.db.Dialect.UpsertScoreQuery()
	dateKey := date.Format("2006-01-02")
	for _, entry := range entries {
		_, err := tx.Exec(query,
			groupID, entry.UserID, game, entry.Points,
			entry.TimeTaken, entry.Backtracks, dateKey, enteredBy,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert score for user %d: %w", entry.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const scoreColumns = `s.id, s.group_id, s.user_id, s.game, s.points, s.time_taken, s.backtracks, s.notes, s.date, s.entered_by, s.created_at, s.updated_at, u.name, u.image_url`

// GetGroupScoresSince retrieves a group's scores with date on or after
// since, newest first, joined with the owning user's identity
func (r *ScoreRepository) GetGroupScoresSince(groupID int64, since time.Time) ([]models.Score, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM scores s
		INNER JOIN users u ON s.user_id = u.id
		WHERE s.group_id = ? AND s.date >= ?
		ORDER BY s.date DESC, s.id DESC
	`
	return r.queryScores(query, groupID, since.Format("2006-01-02"))
}

// GetScoresForUsers retrieves all scores belonging to the given users across
// every group, for the global leaderboard
func (r *ScoreRepository) GetScoresForUsers(userIDs []int64) ([]models.Score, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + scoreColumns + `
		FROM scores s
		INNER JOIN users u ON s.user_id = u.id
		WHERE s.user_id IN (`
	args := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args[i] = id
	}
	query += ") ORDER BY s.date DESC, s.id DESC"

	return r.queryScores(query, args...)
}

func (r *ScoreRepository) queryScores(query string, args ...interface{}) ([]models.Score, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []models.Score
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, *score)
	}
	return scores, rows.Err()
}

func scanScore(row interface{ Scan(...interface{}) error }) (*models.Score, error) {
	score := &models.Score{}
	var timeTaken, notes sql.NullString
	var backtracks sql.NullInt64
	err := row.Scan(
		&score.ID,
		&score.GroupID,
		&score.UserID,
		&score.Game,
		&score.Points,
		&timeTaken,
		&backtracks,
		&notes,
		&score.Date,
		&score.EnteredBy,
		&score.CreatedAt,
		&score.UpdatedAt,
		&score.UserName,
		&score.UserImage,
	)
	if err != nil {
		return nil, err
	}
	if timeTaken.Valid {
		score.TimeTaken = &timeTaken.String
	}
	if backtracks.Valid {
		b := int(backtracks.Int64)
		score.Backtracks = &b
	}
	if notes.Valid {
		score.Notes = &notes.String
	}
	return score, nil
}
