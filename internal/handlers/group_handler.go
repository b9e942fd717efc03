package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"puzzleclash/internal/models"
	"puzzleclash/internal/scoring"
	"puzzleclash/internal/service"
)

// GroupHandler serves the group page, invitations and the trend chart data
type GroupHandler struct {
	groupService      *service.GroupService
	scoreService      *service.ScoreService
	invitationService *service.InvitationService
	middleware        *Middleware
	templates         *template.Template
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *service.GroupService, scoreService *service.ScoreService, invitationService *service.InvitationService, middleware *Middleware, templates *template.Template) *GroupHandler {
	return &GroupHandler{
		groupService:      groupService,
		scoreService:      scoreService,
		invitationService: invitationService,
		middleware:        middleware,
		templates:         templates,
	}
}

// ShowGroup renders the group page: members, the window leaderboard and the
// recent score feed. Members only.
func (h *GroupHandler) ShowGroup(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Group not found", "", nil)
		return
	}

	group, err := h.groupService.GetGroup(groupID)
	if err != nil {
		respondWithError(w, statusForError(err), userMessageForError(err), "Error loading group", err)
		return
	}

	if err := h.groupService.VerifyMember(groupID, user.ID); err != nil {
		respondWithError(w, statusForError(err), userMessageForError(err), "", nil)
		return
	}

	members, users, err := h.groupService.GetGroupMembers(groupID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load group members", "Error loading members", err)
		return
	}

	scores, err := h.scoreService.GroupScores(groupID, user.ID, 0)
	if err != nil {
		respondWithError(w, statusForError(err), userMessageForError(err), "Error loading scores", err)
		return
	}

	roster := make([]scoring.Player, len(users))
	for i, u := range users {
		roster[i] = scoring.Player{ID: u.ID, Name: u.Name, ImageURL: u.ImageURL}
	}
	standings := scoring.Leaderboard(scores, roster)

	data := GroupViewData{
		Title:      group.Name + " - PuzzleClash",
		User:       user,
		Group:      group,
		Members:    members,
		Users:      users,
		Standings:  standings,
		ZipTop:     scoring.TopByGame(standings, models.GameZip, 3),
		QueensTop:  scoring.TopByGame(standings, models.GameQueens, 3),
		Scores:     scores,
		WindowDays: h.scoreService.WindowDays(),
		CSRFToken:  h.middleware.CSRFTokenFor(r),
		Error:      r.URL.Query().Get("error"),
	}

	if err := h.templates.ExecuteTemplate(w, "group.tmpl", data); err != nil {
		log.Printf("Error rendering group template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Invite handles the invite-by-email form submission. Admins only.
func (h *GroupHandler) Invite(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Group not found", "", nil)
		return
	}

	email := r.FormValue("email")
	if _, err := h.invitationService.Invite(r.Context(), groupID, user.ID, email); err != nil {
		h.redirectBack(w, r, groupID, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/groups/%d", groupID), http.StatusSeeOther)
}

// Trend serves the cumulative points series for the chart as JSON. The
// optional game query parameter restricts the series to one game; days
// overrides the default window. For two-member groups the payload includes
// the head-to-head lead analysis.
func (h *GroupHandler) Trend(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Group not found", http.StatusNotFound)
		return
	}

	filter := strings.ToUpper(r.URL.Query().Get("game"))
	if filter != scoring.FilterAll && !models.ValidGame(filter) {
		http.Error(w, "Unknown game", http.StatusBadRequest)
		return
	}

	days := h.scoreService.WindowDays()
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			http.Error(w, "Invalid window", http.StatusBadRequest)
			return
		}
		days = n
	}

	scores, err := h.scoreService.GroupScores(groupID, user.ID, days)
	if err != nil {
		http.Error(w, userMessageForError(err), statusForError(err))
		return
	}

	_, users, err := h.groupService.GetGroupMembers(groupID)
	if err != nil {
		http.Error(w, "Failed to load group members", http.StatusInternalServerError)
		return
	}

	roster := make([]scoring.Player, len(users))
	for i, u := range users {
		roster[i] = scoring.Player{ID: u.ID, Name: u.Name, ImageURL: u.ImageURL}
	}

	series := scoring.BuildTrend(scores, roster, time.Now(), days, filter)

	response := trendResponse{
		WindowDays: days,
		Players:    make([]trendPlayer, len(roster)),
		Series:     make([]trendPointJSON, len(series)),
	}
	for i, p := range roster {
		response.Players[i] = trendPlayer{ID: p.ID, Name: p.Name}
	}
	for i, point := range series {
		response.Series[i] = trendPointJSON{
			Date:   point.Key,
			Label:  point.Label,
			Totals: point.Totals,
		}
	}

	// Head-to-head analysis only makes sense for a pair
	if len(roster) == 2 {
		if analysis := scoring.AnalyzeLead(series, roster[0], roster[1]); analysis != nil {
			response.Lead = &trendLead{
				LeaderID:   analysis.LeaderID,
				LeaderName: analysis.LeaderName,
				Lead:       analysis.Lead,
				Direction:  analysis.Direction,
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding trend response: %v", err)
	}
}

func (h *GroupHandler) redirectBack(w http.ResponseWriter, r *http.Request, groupID int64, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		respondWithError(w, status, userMessageForError(err), "", err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/groups/%d?error=%s", groupID, url.QueryEscape(userMessageForError(err))), http.StatusSeeOther)
}
