package calendar

import "time"

// ContentTypeAdjuster returns the score adjustment for publishing a content
// type at a given local weekday and hour.
type ContentTypeAdjuster func(day time.Weekday, hour int) float64

// ScoringConfig carries the benchmark tables and weights the optimal time
// scorer works from. It is injected at construction so tests can substitute
// deterministic fixtures; DefaultScoringConfig holds the production tables.
type ScoringConfig struct {
	BaseScore         float64
	HistoryWeight     float64
	PlatformHourBonus float64
	MinScore          float64
	MaxSlots          int

	// PlatformOptimalHours lists each platform's benchmark publishing hours.
	PlatformOptimalHours map[string][]int
	// PlatformDayWeights is the additive weekly shape per platform,
	// Sunday-first. Business platforms carry 0 on weekends.
	PlatformDayWeights map[string][7]float64
	// ContentTypeAdjusters maps content types to their hour/day bonus.
	ContentTypeAdjusters map[string]ContentTypeAdjuster

	// Fallbacks for platforms and content types missing from the tables.
	DefaultOptimalHours []int
	DefaultDayWeights   [7]float64

	// ReasonTemplates feed the per-slot explanation; selection is a pure
	// function of the slot so output stays deterministic.
	ReasonTemplates []string
}

// DefaultScoringConfig returns the production benchmark tables.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BaseScore:         50,
		HistoryWeight:     0.3,
		PlatformHourBonus: 20,
		MinScore:          50,
		MaxSlots:          20,

		PlatformOptimalHours: map[string][]int{
			"instagram": {11, 13, 17, 19},
			"twitter":   {8, 12, 17, 20},
			"linkedin":  {8, 10, 12, 17},
			"facebook":  {9, 13, 15},
			"tiktok":    {12, 16, 19, 21},
			"youtube":   {14, 16, 18, 20},
		},
		PlatformDayWeights: map[string][7]float64{
			// Sunday-first.
			"instagram": {8, 6, 7, 8, 9, 10, 9},
			"twitter":   {5, 8, 8, 8, 8, 7, 4},
			"linkedin":  {0, 10, 12, 12, 12, 10, 0},
			"facebook":  {7, 6, 6, 7, 7, 8, 8},
			"tiktok":    {9, 6, 7, 7, 8, 10, 10},
			"youtube":   {10, 5, 5, 6, 7, 9, 10},
		},
		ContentTypeAdjusters: map[string]ContentTypeAdjuster{
			"newsletter": func(day time.Weekday, hour int) float64 {
				// Newsletters only earn their bonus on weekday mornings.
				if isWeekday(day) && hour >= 6 && hour <= 10 {
					return 15
				}
				return 0
			},
			"social_post": func(day time.Weekday, hour int) float64 {
				if hour >= 17 && hour <= 21 {
					return 10
				}
				if hour >= 11 && hour <= 13 {
					return 5
				}
				return 0
			},
			"article": func(day time.Weekday, hour int) float64 {
				if isWeekday(day) && hour >= 7 && hour <= 9 {
					return 10
				}
				return 0
			},
			"blog_post": func(day time.Weekday, hour int) float64 {
				if isWeekday(day) && hour >= 8 && hour <= 11 {
					return 8
				}
				return 0
			},
			"video": func(day time.Weekday, hour int) float64 {
				if hour >= 18 && hour <= 22 {
					return 10
				}
				if day == time.Saturday || day == time.Sunday {
					return 5
				}
				return 0
			},
			"podcast": func(day time.Weekday, hour int) float64 {
				// Commute listening windows.
				if isWeekday(day) && (hour >= 6 && hour <= 9 || hour >= 16 && hour <= 18) {
					return 10
				}
				return 0
			},
		},

		DefaultOptimalHours: []int{9, 12, 17},
		DefaultDayWeights:   [7]float64{5, 5, 5, 5, 5, 5, 5},

		ReasonTemplates: []string{
			"Strong historical engagement in this window",
			"Peak audience activity for this platform",
			"Benchmark data favors this posting hour",
			"Your past posts performed well around this time",
		},
	}
}

func (c ScoringConfig) optimalHours(platform string) []int {
	if hours, ok := c.PlatformOptimalHours[platform]; ok {
		return hours
	}
	return c.DefaultOptimalHours
}

func (c ScoringConfig) dayWeights(platform string) [7]float64 {
	if weights, ok := c.PlatformDayWeights[platform]; ok {
		return weights
	}
	return c.DefaultDayWeights
}

func (c ScoringConfig) adjust(contentType string, day time.Weekday, hour int) float64 {
	if fn, ok := c.ContentTypeAdjusters[contentType]; ok {
		return fn(day, hour)
	}
	return 0
}

func isWeekday(day time.Weekday) bool {
	return day != time.Saturday && day != time.Sunday
}
