package service

import (
	"errors"
	"fmt"
	"time"

	"puzzleclash/internal/models"
	"puzzleclash/internal/repository"
	"puzzleclash/internal/scoring"
	"puzzleclash/internal/validation"
)

var (
	ErrDuplicateScore = errors.New("score for this game and date already exists")
	ErrNoEntries      = errors.New("no score entries submitted")
)

// ScoreStore defines the persistence operations ScoreService needs
type ScoreStore interface {
	InsertScore(score *models.Score) (*models.Score, error)
	HasScore(groupID, userID int64, game string, date time.Time) (bool, error)
	UpsertBulkScores(groupID int64, game string, date time.Time, enteredBy int64, entries []repository.ScoreEntry) error
	GetGroupScoresSince(groupID int64, since time.Time) ([]models.Score, error)
	GetScoresForUsers(userIDs []int64) ([]models.Score, error)
}

// GlobalRosterStore lists the users who opted in to the global leaderboard
type GlobalRosterStore interface {
	GetGlobalOptInUsers() ([]models.User, error)
}

// ScoreInput carries one single-entry score submission
type ScoreInput struct {
	TargetUserID int64
	Game         string
	Points       int
	TimeTaken    *string
	Backtracks   *int
	Notes        *string
	Date         time.Time
}

// ScoreService handles the score ledger: single entries, daily bulk upserts
// and the window/leaderboard reads
type ScoreService struct {
	scores     ScoreStore
	groups     *GroupService
	roster     GlobalRosterStore
	bulkStrict bool
	windowDays int
}

// NewScoreService creates a new score service. bulkStrict applies the
// single-entry [0,1] point range to bulk submissions too; windowDays is the
// trailing window used for group score reads and trend charts.
func NewScoreService(scores ScoreStore, groups *GroupService, roster GlobalRosterStore, bulkStrict bool, windowDays int) *ScoreService {
	return &ScoreService{
		scores:     scores,
		groups:     groups,
		roster:     roster,
		bulkStrict: bulkStrict,
		windowDays: windowDays,
	}
}

// WindowDays returns the configured trailing window length
func (s *ScoreService) WindowDays() int {
	return s.windowDays
}

// RecordScore inserts one result for one member. Both the actor and the
// target must be members of the group, and only one result per player, game
// and day is allowed. Points use the win/loss encoding (0 or 1).
func (s *ScoreService) RecordScore(groupID, actorID int64, input ScoreInput) (*models.Score, error) {
	if err := validation.ValidateGame(input.Game); err != nil {
		return nil, err
	}
	if err := validation.ValidateSinglePoints(input.Points); err != nil {
		return nil, err
	}

	if err := s.groups.VerifyMember(groupID, actorID); err != nil {
		return nil, err
	}
	if err := s.groups.VerifyMember(groupID, input.TargetUserID); err != nil {
		return nil, err
	}

	exists, err := s.scores.HasScore(groupID, input.TargetUserID, input.Game, input.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing score: %w", err)
	}
	if exists {
		return nil, ErrDuplicateScore
	}

	score := &models.Score{
		GroupID:    groupID,
		UserID:     input.TargetUserID,
		Game:       input.Game,
		Points:     input.Points,
		TimeTaken:  input.TimeTaken,
		Backtracks: input.Backtracks,
		Notes:      input.Notes,
		Date:       input.Date,
		EnteredBy:  actorID,
	}

	inserted, err := s.scores.InsertScore(score)
	if err != nil {
		return nil, fmt.Errorf("failed to record score: %w", err)
	}
	return inserted, nil
}

// RecordBulkScores applies a whole day's results for one game in a single
// atomic submission. Existing rows for the same (player, game, date) are
// overwritten rather than duplicated, so the quick tracker can re-submit a
// corrected day.
func (s *ScoreService) RecordBulkScores(groupID, actorID int64, game string, date time.Time, entries []repository.ScoreEntry) error {
	if err := validation.ValidateGame(game); err != nil {
		return err
	}
	if len(entries) == 0 {
		return ErrNoEntries
	}

	if err := s.groups.VerifyMember(groupID, actorID); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := validation.ValidateBulkPoints(entry.Points, s.bulkStrict); err != nil {
			return err
		}
		if err := s.groups.VerifyMember(groupID, entry.UserID); err != nil {
			return err
		}
	}

	if err := s.scores.UpsertBulkScores(groupID, game, date, actorID, entries); err != nil {
		return fmt.Errorf("failed to record bulk scores: %w", err)
	}
	return nil
}

// GroupScores returns the group's scores within the trailing window, newest
// first. The actor must be a member.
func (s *ScoreService) GroupScores(groupID, actorID int64, windowDays int) ([]models.Score, error) {
	if err := s.groups.VerifyMember(groupID, actorID); err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = s.windowDays
	}

	since := time.Now().AddDate(0, 0, -windowDays)
	scores, err := s.scores.GetGroupScoresSince(groupID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get group scores: %w", err)
	}
	return scores, nil
}

// GlobalLeaderboard ranks every user who opted in to the global pool over
// all their scores, across group boundaries. No membership check applies.
func (s *ScoreService) GlobalLeaderboard() ([]scoring.Standing, error) {
	users, err := s.roster.GetGlobalOptInUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to get opted-in users: %w", err)
	}

	roster := make([]scoring.Player, len(users))
	ids := make([]int64, len(users))
	for i, u := range users {
		roster[i] = scoring.Player{ID: u.ID, Name: u.Name, ImageURL: u.ImageURL}
		ids[i] = u.ID
	}

	scores, err := s.scores.GetScoresForUsers(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores: %w", err)
	}

	return scoring.Leaderboard(scores, roster), nil
}
