package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"puzzleclash/internal/repository"
	"puzzleclash/internal/service"
	"puzzleclash/internal/validation"
)

// ScoreHandler handles the score entry forms
type ScoreHandler struct {
	scoreService *service.ScoreService
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scoreService *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

// AddScore handles the single-result form: one member, one game, one date.
// Points carry the win/loss encoding, so re-entering the same result is a
// conflict rather than an overwrite.
func (h *ScoreHandler) AddScore(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Group not found", "", nil)
		return
	}

	targetID, err := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, fmt.Sprintf("/groups/%d?error=%s", groupID, url.QueryEscape("select a member")), http.StatusSeeOther)
		return
	}

	points, err := strconv.Atoi(r.FormValue("points"))
	if err != nil {
		http.Redirect(w, r, fmt.Sprintf("/groups/%d?error=%s", groupID, url.QueryEscape("points must be 0 or 1")), http.StatusSeeOther)
		return
	}

	date, err := parseDateOrToday(r.FormValue("date"))
	if err != nil {
		h.redirectBack(w, r, groupID, err)
		return
	}

	input := service.ScoreInput{
		TargetUserID: targetID,
		Game:         strings.ToUpper(r.FormValue("game")),
		Points:       points,
		TimeTaken:    optionalString(r.FormValue("time_taken")),
		Backtracks:   optionalInt(r.FormValue("backtracks")),
		Notes:        optionalString(r.FormValue("notes")),
		Date:         date,
	}

	if _, err := h.scoreService.RecordScore(groupID, user.ID, input); err != nil {
		h.redirectBack(w, r, groupID, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/groups/%d", groupID), http.StatusSeeOther)
}

// AddBulkScores handles the whole-day tracker form: one game, one date, a
// points field per member named points_<userID>. Members left blank are
// skipped; submitted rows overwrite any existing entry for the same key.
func (h *ScoreHandler) AddBulkScores(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Group not found", "", nil)
		return
	}

	game := strings.ToUpper(r.FormValue("game"))

	date, err := parseDateOrToday(r.FormValue("date"))
	if err != nil {
		h.redirectBack(w, r, groupID, err)
		return
	}

	var entries []repository.ScoreEntry
	for field, values := range r.PostForm {
		if !strings.HasPrefix(field, "points_") || len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			continue
		}

		memberID, err := strconv.ParseInt(strings.TrimPrefix(field, "points_"), 10, 64)
		if err != nil {
			continue
		}
		points, err := strconv.Atoi(strings.TrimSpace(values[0]))
		if err != nil {
			http.Redirect(w, r, fmt.Sprintf("/groups/%d?error=%s", groupID, url.QueryEscape("points must be a number")), http.StatusSeeOther)
			return
		}

		entries = append(entries, repository.ScoreEntry{UserID: memberID, Points: points})
	}

	if err := h.scoreService.RecordBulkScores(groupID, user.ID, game, date, entries); err != nil {
		h.redirectBack(w, r, groupID, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/groups/%d", groupID), http.StatusSeeOther)
}

func (h *ScoreHandler) redirectBack(w http.ResponseWriter, r *http.Request, groupID int64, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		respondWithError(w, status, userMessageForError(err), "", err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/groups/%d?error=%s", groupID, url.QueryEscape(userMessageForError(err))), http.StatusSeeOther)
}

// parseDateOrToday parses a YYYY-MM-DD form value, defaulting to today when
// the field is empty
func parseDateOrToday(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return validation.ParseDate(value)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func optionalInt(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}
