package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultContentType = "social_post"
	defaultMinHour     = 6
	defaultMaxHour     = 22
	defaultRangeDays   = 30
)

var defaultPlatforms = []string{"instagram", "twitter", "linkedin"}

// DateRange is an inclusive candidate window for slot enumeration.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// OptimalTimeRequest narrows the slot search. Unset fields fall back to the
// documented defaults in applyDefaults. The hour bounds are pointers so an
// explicit 0 stays distinguishable from unset; both must land in 0..23.
type OptimalTimeRequest struct {
	ContentType     string    `json:"content_type"`
	Platforms       []string  `json:"platforms"`
	Timezone        string    `json:"timezone"`
	DateRange       DateRange `json:"date_range"`
	ExcludeWeekends bool      `json:"exclude_weekends"`
	MinHour         *int      `json:"min_hour,omitempty"`
	MaxHour         *int      `json:"max_hour,omitempty"`
}

// ScoredSlot is one ranked (date, hour, platform) publishing candidate.
type ScoredSlot struct {
	Date      time.Time `json:"date"`
	DayOfWeek int       `json:"day_of_week"`
	Hour      int       `json:"hour"`
	Platform  string    `json:"platform"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
}

// EngagementInsights summarizes the user's historical engagement shape.
type EngagementInsights struct {
	BestDayOfWeek     int      `json:"best_day_of_week"`
	BestHour          int      `json:"best_hour"`
	AverageEngagement float64  `json:"average_engagement"`
	SampleSize        int      `json:"sample_size"`
	Notes             []string `json:"notes"`
}

// OptimalTimeResult is the full scorer output.
type OptimalTimeResult struct {
	Slots           []ScoredSlot       `json:"slots"`
	Insights        EngagementInsights `json:"insights"`
	Recommendations []string           `json:"recommendations"`
}

// Scorer ranks candidate publishing slots from the user's published history
// and static benchmark tables. It reads from the event store and never
// writes.
type Scorer struct {
	store  Repository
	config ScoringConfig
	logger *zap.Logger
}

// NewScorer creates a scorer with the given benchmark configuration.
func NewScorer(store Repository, config ScoringConfig, logger *zap.Logger) *Scorer {
	return &Scorer{store: store, config: config, logger: logger}
}

// FindOptimalTimes scores every candidate (date, hour, platform) slot in the
// requested window. Slots start from the base score, pick up 30% of the
// accumulated historical engagement for their weekday and hour, benchmark
// bonuses for platform hours, content type, and platform weekly shape, and
// are clamped to [0, 100]. Only slots scoring above the threshold survive,
// ranked descending, capped at the configured maximum.
func (s *Scorer) FindOptimalTimes(ctx context.Context, userID uuid.UUID, req OptimalTimeRequest) (*OptimalTimeResult, error) {
	req, err := applyDefaults(req)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		return nil, NewValidationError("unknown timezone %q", req.Timezone)
	}

	events, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load events for user %s: %w", userID, err)
	}

	dayTotals, hourTotals, sampleSize, scoreSum := s.aggregateHistory(events, loc)

	slots := s.enumerateSlots(req, loc, dayTotals, hourTotals)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Score > slots[j].Score })
	if len(slots) > s.config.MaxSlots {
		slots = slots[:s.config.MaxSlots]
	}

	avg := 0.0
	if sampleSize > 0 {
		avg = scoreSum / float64(sampleSize)
	}

	insights := EngagementInsights{
		BestDayOfWeek:     argmax(dayTotals[:]),
		BestHour:          argmax(hourTotals[:]),
		AverageEngagement: avg,
		SampleSize:        sampleSize,
		Notes: []string{
			"Scores combine your published-content engagement history with platform benchmark data",
			"Historical engagement contributes 30% per weekday bucket and 30% per hour bucket",
			"Slots below the baseline score are filtered out",
		},
	}

	s.logger.Info("optimal time scoring completed",
		zap.String("user_id", userID.String()),
		zap.Int("history_sample", sampleSize),
		zap.Int("ranked_slots", len(slots)))

	return &OptimalTimeResult{
		Slots:           slots,
		Insights:        insights,
		Recommendations: s.recommendations(slots, loc),
	}, nil
}

func applyDefaults(req OptimalTimeRequest) (OptimalTimeRequest, error) {
	if req.ContentType == "" {
		req.ContentType = defaultContentType
	}
	if len(req.Platforms) == 0 {
		req.Platforms = defaultPlatforms
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if req.DateRange.Start.IsZero() {
		req.DateRange.Start = time.Now().UTC()
	}
	if req.DateRange.End.IsZero() {
		req.DateRange.End = req.DateRange.Start.AddDate(0, 0, defaultRangeDays)
	}
	if req.MinHour == nil {
		req.MinHour = hourRef(defaultMinHour)
	}
	if req.MaxHour == nil {
		req.MaxHour = hourRef(defaultMaxHour)
	}

	// The hour bounds index the 24-entry history buckets; reject anything
	// outside a day before the enumeration loop runs.
	minHour, maxHour := *req.MinHour, *req.MaxHour
	if minHour < 0 || minHour > 23 {
		return req, NewValidationError("min hour %d out of range 0..23", minHour)
	}
	if maxHour < 0 || maxHour > 23 {
		return req, NewValidationError("max hour %d out of range 0..23", maxHour)
	}
	if minHour > maxHour {
		return req, NewValidationError("min hour %d must not exceed max hour %d", minHour, maxHour)
	}
	return req, nil
}

func hourRef(h int) *int { return &h }

// aggregateHistory sums engagement scores into weekday and hour buckets
// across the user's published content events that carry analytics. Totals
// are sums, not averages: a bucket with more published posts weighs more.
func (s *Scorer) aggregateHistory(events []CalendarEvent, loc *time.Location) (dayTotals [7]float64, hourTotals [24]float64, sampleSize int, scoreSum float64) {
	for i := range events {
		e := &events[i]
		if e.Status != EventStatusPublished || e.EventType != EventTypeContentPublishing || e.Analytics == nil {
			continue
		}
		score := engagementScore(e.Analytics)
		local := e.StartDate.In(loc)
		dayTotals[int(local.Weekday())] += score
		hourTotals[local.Hour()] += score
		sampleSize++
		scoreSum += score
	}
	return dayTotals, hourTotals, sampleSize, scoreSum
}

// engagementScore is the weighted blend of engagement, click, and share
// rates, each expressed per hundred impressions.
func engagementScore(a *AnalyticsSnapshot) float64 {
	impressions := a.Impressions
	if impressions < 1 {
		impressions = 1
	}
	engagementRate := float64(a.Engagement) / float64(impressions) * 100
	clickRate := float64(a.Clicks) / float64(impressions) * 100
	shareRate := float64(a.Shares) / float64(impressions) * 100
	return 0.4*engagementRate + 0.3*clickRate + 0.3*shareRate
}

func (s *Scorer) enumerateSlots(req OptimalTimeRequest, loc *time.Location, dayTotals [7]float64, hourTotals [24]float64) []ScoredSlot {
	cfg := s.config
	var slots []ScoredSlot

	start := req.DateRange.Start.In(loc)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	end := req.DateRange.End.In(loc)

	for ; !day.After(end); day = day.AddDate(0, 0, 1) {
		weekday := day.Weekday()
		if req.ExcludeWeekends && !isWeekday(weekday) {
			continue
		}
		for hour := *req.MinHour; hour <= *req.MaxHour; hour++ {
			for _, platform := range req.Platforms {
				score := cfg.BaseScore
				score += cfg.HistoryWeight * dayTotals[int(weekday)]
				score += cfg.HistoryWeight * hourTotals[hour]
				if containsHour(cfg.optimalHours(platform), hour) {
					score += cfg.PlatformHourBonus
				}
				score += cfg.adjust(req.ContentType, weekday, hour)
				score += cfg.dayWeights(platform)[int(weekday)]

				score = clamp(score, 0, 100)
				if score <= cfg.MinScore {
					continue
				}
				slots = append(slots, ScoredSlot{
					Date:      time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc),
					DayOfWeek: int(weekday),
					Hour:      hour,
					Platform:  platform,
					Score:     score,
					Reason:    s.reasonFor(weekday, hour, platform),
				})
			}
		}
	}
	return slots
}

// reasonFor picks an explanation template as a pure function of the slot so
// two runs over the same data produce identical output.
func (s *Scorer) reasonFor(day time.Weekday, hour int, platform string) string {
	templates := s.config.ReasonTemplates
	if len(templates) == 0 {
		return ""
	}
	idx := (int(day)*24 + hour + len(platform)) % len(templates)
	return templates[idx]
}

func (s *Scorer) recommendations(slots []ScoredSlot, loc *time.Location) []string {
	recs := make([]string, 0, 4)
	if len(slots) > 0 {
		top := slots[0]
		recs = append(recs, fmt.Sprintf(
			"Your strongest publishing window is %s at %02d:00 on %s (score %.0f/100)",
			top.Date.In(loc).Format("Monday, Jan 2"), top.Hour, top.Platform, top.Score))
	}
	recs = append(recs,
		"Publish consistently in your highest-scoring windows to build audience habits",
		"Space posts on the same platform at least an hour apart",
		"Re-run this analysis as new engagement data accumulates",
	)
	return recs
}

// argmax returns the index of the largest total; ties resolve to the lowest
// index because the comparison is a strict left-to-right maximum.
func argmax(totals []float64) int {
	best := 0
	for i := 1; i < len(totals); i++ {
		if totals[i] > totals[best] {
			best = i
		}
	}
	return best
}

func containsHour(hours []int, hour int) bool {
	for _, h := range hours {
		if h == hour {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
