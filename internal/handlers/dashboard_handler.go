package handlers

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"puzzleclash/internal/service"
)

// DashboardHandler serves the signed-in home page and the account-level
// actions reachable from it
type DashboardHandler struct {
	groupService      *service.GroupService
	invitationService *service.InvitationService
	scoreService      *service.ScoreService
	authService       *service.AuthService
	middleware        *Middleware
	templates         *template.Template
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(groupService *service.GroupService, invitationService *service.InvitationService, scoreService *service.ScoreService, authService *service.AuthService, middleware *Middleware, templates *template.Template) *DashboardHandler {
	return &DashboardHandler{
		groupService:      groupService,
		invitationService: invitationService,
		scoreService:      scoreService,
		authService:       authService,
		middleware:        middleware,
		templates:         templates,
	}
}

// Dashboard renders the user's groups and pending invitations
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	groups, err := h.groupService.GetUserGroups(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load your groups", "Error loading groups", err)
		return
	}

	// Also links any invitation sent to this email before the account existed
	invitations, err := h.invitationService.PendingForUser(user)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load your invitations", "Error loading invitations", err)
		return
	}

	data := DashboardViewData{
		Title:       "Dashboard - PuzzleClash",
		User:        user,
		Groups:      groups,
		Invitations: invitations,
		CSRFToken:   h.middleware.CSRFTokenFor(r),
		Error:       r.URL.Query().Get("error"),
		Message:     r.URL.Query().Get("message"),
	}

	if err := h.templates.ExecuteTemplate(w, "dashboard.tmpl", data); err != nil {
		log.Printf("Error rendering dashboard template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// CreateGroup handles the new-group form submission
func (h *DashboardHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	name := r.FormValue("name")
	group, err := h.groupService.CreateGroup(name, user.ID)
	if err != nil {
		h.redirectWithError(w, r, "/dashboard", err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/groups/%d", group.ID), http.StatusSeeOther)
}

// AcceptInvitation joins the acting user to the invitation's group
func (h *DashboardHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	invitationID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invitation", "", nil)
		return
	}

	if err := h.invitationService.Accept(invitationID, user.ID); err != nil {
		h.redirectWithError(w, r, "/dashboard", err)
		return
	}

	http.Redirect(w, r, "/dashboard?message=Invitation+accepted", http.StatusSeeOther)
}

// DeclineInvitation marks the invitation declined
func (h *DashboardHandler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	invitationID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invitation", "", nil)
		return
	}

	if err := h.invitationService.Decline(invitationID, user.ID); err != nil {
		h.redirectWithError(w, r, "/dashboard", err)
		return
	}

	http.Redirect(w, r, "/dashboard?message=Invitation+declined", http.StatusSeeOther)
}

// UpdateVisibility toggles the user's global leaderboard opt-in
func (h *DashboardHandler) UpdateVisibility(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	show := r.FormValue("show_in_global") == "on" || r.FormValue("show_in_global") == "true"
	if err := h.authService.SetGlobalVisibility(user.ID, show); err != nil {
		h.redirectWithError(w, r, "/dashboard", err)
		return
	}

	http.Redirect(w, r, "/dashboard?message=Visibility+updated", http.StatusSeeOther)
}

// GlobalLeaderboard renders the cross-group leaderboard of opted-in users.
// The page is public; User is nil for anonymous visitors.
func (h *DashboardHandler) GlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	var data GlobalLeaderboardViewData
	data.Title = "Global Leaderboard - PuzzleClash"

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if user, err := h.authService.ValidateSession(cookie.Value); err == nil {
			data.User = user
		}
	}

	standings, err := h.scoreService.GlobalLeaderboard()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load the leaderboard", "Error loading global leaderboard", err)
		return
	}
	data.Standings = standings

	if err := h.templates.ExecuteTemplate(w, "leaderboard.tmpl", data); err != nil {
		log.Printf("Error rendering leaderboard template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// redirectWithError sends the user back to a page with the failure message
// in the query string
func (h *DashboardHandler) redirectWithError(w http.ResponseWriter, r *http.Request, path string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		respondWithError(w, status, userMessageForError(err), "", err)
		return
	}
	http.Redirect(w, r, path+"?error="+url.QueryEscape(userMessageForError(err)), http.StatusSeeOther)
}
