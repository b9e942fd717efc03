package scoring

import (
	"time"

	"puzzleclash/internal/models"
)

// Game filters for trend series. The empty filter counts both games.
const (
	FilterAll    = ""
	FilterZip    = models.GameZip
	FilterQueens = models.GameQueens
)

// TrendPoint is one day of the cumulative chart: the date plus every
// rostered player's running total as of that day.
type TrendPoint struct {
	Date   time.Time
	Key    string // YYYY-MM-DD
	Label  string // short display form, e.g. "Jan 2"
	Totals map[int64]int
}

// Lead gap directions reported by AnalyzeLead
const (
	DirectionNarrowing = "narrowing"
	DirectionWidening  = "widening"
)

// LeadAnalysis describes the head-to-head state of a two-player group over
// the trend window.
type LeadAnalysis struct {
	LeaderID   int64
	LeaderName string
	Lead       int
	Direction  string
}

// BuildTrend expands a trailing window of days (anchored to anchor's date)
// into days+1 cumulative data points, one per day, oldest first. Cumulative
// sums start from zero at the window's first day; points earned before the
// window are not carried in. filter restricts the series to one game, or
// FilterAll for both. Scores outside the window or roster are ignored.
func BuildTrend(scores []models.Score, roster []Player, anchor time.Time, days int, filter string) []TrendPoint {
	start := truncateToDay(anchor).AddDate(0, 0, -days)

	// Bucket points by (day key, user) up front so building the series is a
	// single pass over the date range
	buckets := make(map[string]map[int64]int)
	rostered := make(map[int64]bool, len(roster))
	for _, p := range roster {
		rostered[p.ID] = true
	}
	for _, s := range scores {
		if !rostered[s.UserID] {
			continue
		}
		if filter != FilterAll && s.Game != filter {
			continue
		}
		key := s.DateKey()
		if buckets[key] == nil {
			buckets[key] = make(map[int64]int)
		}
		buckets[key][s.UserID] += s.Points
	}

	running := make(map[int64]int, len(roster))
	for _, p := range roster {
		running[p.ID] = 0
	}

	series := make([]TrendPoint, 0, days+1)
	for i := 0; i <= days; i++ {
		date := start.AddDate(0, 0, i)
		key := date.Format("2006-01-02")

		for userID, points := range buckets[key] {
			running[userID] += points
		}

		totals := make(map[int64]int, len(running))
		for userID, total := range running {
			totals[userID] = total
		}

		series = append(series, TrendPoint{
			Date:   date,
			Key:    key,
			Label:  date.Format("Jan 2"),
			Totals: totals,
		})
	}

	return series
}

// AnalyzeLead reports which of two players leads at the end of the series
// and whether the gap narrowed or widened versus the window's first day.
// Returns nil for an empty series.
func AnalyzeLead(series []TrendPoint, p1, p2 Player) *LeadAnalysis {
	if len(series) == 0 {
		return nil
	}

	first := series[0].Totals
	last := series[len(series)-1].Totals

	currentLead := last[p1.ID] - last[p2.ID]
	previousLead := first[p1.ID] - first[p2.ID]

	leader := p2
	if currentLead > 0 {
		leader = p1
	}

	direction := DirectionWidening
	if abs(currentLead) < abs(previousLead) {
		direction = DirectionNarrowing
	}

	return &LeadAnalysis{
		LeaderID:   leader.ID,
		LeaderName: leader.Name,
		Lead:       abs(currentLead),
		Direction:  direction,
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
