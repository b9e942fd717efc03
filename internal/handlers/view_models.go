package handlers

import (
	"puzzleclash/internal/models"
	"puzzleclash/internal/scoring"
)

type LoginViewData struct {
	Title          string
	User           *models.User // always nil, present for the shared nav
	OAuthProviders []OAuthProviderView
	Error          string
	Email          string
}

type RegisterViewData struct {
	Title          string
	User           *models.User
	OAuthProviders []OAuthProviderView
	Error          string
	Email          string
	Name           string
}

type DashboardViewData struct {
	Title       string
	User        *models.User
	Groups      []models.GroupSummary
	Invitations []models.Invitation
	CSRFToken   string
	Error       string
	Message     string
}

type GroupViewData struct {
	Title      string
	User       *models.User
	Group      *models.Group
	Members    []models.GroupMember
	Users      []models.User
	Standings  []scoring.Standing
	ZipTop     []scoring.Standing
	QueensTop  []scoring.Standing
	Scores     []models.Score
	WindowDays int
	CSRFToken  string
	Error      string
}

type GlobalLeaderboardViewData struct {
	Title     string
	User      *models.User
	Standings []scoring.Standing
}

// trendResponse is the JSON payload behind the trend chart
type trendResponse struct {
	WindowDays int              `json:"windowDays"`
	Players    []trendPlayer    `json:"players"`
	Series     []trendPointJSON `json:"series"`
	Lead       *trendLead       `json:"lead,omitempty"`
}

type trendPlayer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type trendPointJSON struct {
	Date   string          `json:"date"`
	Label  string          `json:"label"`
	Totals map[int64]int   `json:"totals"`
}

type trendLead struct {
	LeaderID   int64  `json:"leaderId"`
	LeaderName string `json:"leaderName"`
	Lead       int    `json:"lead"`
	Direction  string `json:"direction"`
}
