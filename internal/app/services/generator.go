package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hivenest/communio/internal/ai"
	"github.com/hivenest/communio/internal/app/models"
	"github.com/hivenest/communio/internal/config"
	"github.com/hivenest/communio/internal/pkg/clock"
)

// Fallback values used when the completion service returns something we
// cannot promote to a typed suggestion.
const (
	fallbackEngagement = 75
	fallbackCapacity   = 50
	fallbackCost       = 500
	fallbackDuration   = 3
)

// TargetDate is one resolved generation target: a concrete date with its
// calendar context label.
type TargetDate struct {
	Date  time.Time
	Label string
}

// ResolveTargetDates materializes the configured target-date rules against
// the current time, preserving rule order.
func ResolveTargetDates(rules []config.TargetDateRule, clk clock.Clock) []TargetDate {
	now := clk.Now()
	targets := make([]TargetDate, 0, len(rules))
	for _, rule := range rules {
		targets = append(targets, TargetDate{
			Date:  resolveRule(rule, now),
			Label: rule.Label,
		})
	}
	return targets
}

func resolveRule(rule config.TargetDateRule, now time.Time) time.Time {
	if rule.Weekday != nil {
		days := (*rule.Weekday - int(now.Weekday()) + 7) % 7
		candidate := time.Date(now.Year(), now.Month(), now.Day(), rule.Hour, 0, 0, 0, now.Location()).
			AddDate(0, 0, days)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate
	}

	candidate := time.Date(now.Year(), time.Month(*rule.Month), *rule.Day, rule.Hour, 0, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate
}

// Generator builds one prompt per target date from a community's facility
// and event history, invokes the completion service and promotes the
// response to a typed suggestion, falling back to a deterministic template
// when the response cannot be parsed.
type Generator struct {
	client ai.CompletionClient
	logger zerolog.Logger
}

// NewGenerator creates a Generator over the given completion client.
func NewGenerator(client ai.CompletionClient, logger zerolog.Logger) *Generator {
	return &Generator{client: client, logger: logger}
}

// GenerateForDate produces exactly one PENDING suggestion for the target
// date. Transport failures of the completion service propagate. Malformed
// responses yield the deterministic fallback instead, and the service is
// not called again for this date.
func (g *Generator) GenerateForDate(ctx context.Context, community *models.Community, facilities []*models.Facility, history []*models.Event, target TargetDate) (*models.Suggestion, error) {
	prompt := g.buildPrompt(community, facilities, history, target)

	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generation failed for %q: %w", target.Label, err)
	}

	suggestion, ok := g.parseResponse(raw, community.ID, target)
	if !ok {
		g.logger.Warn().
			Int64("communityID", community.ID).
			Str("target", target.Label).
			Msg("Completion response unusable, using fallback suggestion")
		suggestion = fallbackSuggestion(community.ID, target)
	}

	return suggestion, nil
}

// buildPrompt embeds the community profile, its facilities, up to three
// recent events with analytics, and the target date's calendar context.
func (g *Generator) buildPrompt(community *models.Community, facilities []*models.Facility, history []*models.Event, target TargetDate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an event planner for a residential community.\n\n")
	fmt.Fprintf(&b, "Community: %s (%d residents)\n\n", community.Name, len(community.Residents))

	b.WriteString("Available facilities:\n")
	for _, f := range facilities {
		fmt.Fprintf(&b, "- %s (%s, capacity %d, amenities: %s) [id %d]\n",
			f.Name, f.Type, f.Capacity, strings.Join(f.Amenities, ", "), f.ID)
	}

	recent := history
	if len(recent) > 3 {
		recent = recent[:3]
	}
	if len(recent) > 0 {
		b.WriteString("\nRecent events:\n")
		for _, e := range recent {
			if e.Analytics != nil {
				fmt.Fprintf(&b, "- %s (%s): engagement %.0f, attendance rate %.0f%%, rating %.1f/5, worked well: %s\n",
					e.Title, e.EventType, e.Analytics.EngagementScore, e.Analytics.AttendanceRate,
					e.Analytics.AverageRating, e.Analytics.SuccessFactors)
			} else {
				fmt.Fprintf(&b, "- %s (%s)\n", e.Title, e.EventType)
			}
		}
	}

	fmt.Fprintf(&b, "\nSuggest one event for %s (%s).\n\n",
		target.Date.Format("Monday, January 2, 2006 at 15:04"), target.Label)
	b.WriteString("Respond with exactly one JSON object and nothing else, with these fields: " +
		"title, description, eventType, reasoning, contextFactors (array of strings), " +
		"requiredFacilities (array of facility names), location, recommendedCapacity (number), " +
		"estimatedCost (number), expectedEngagement (number 0-100), duration (hours, number).\n")

	return b.String()
}

// rawSuggestion is the provisional, loosely-typed shape parsed from the
// completion response before validation.
type rawSuggestion struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	EventType           string   `json:"eventType"`
	Reasoning           string   `json:"reasoning"`
	ContextFactors      []string `json:"contextFactors"`
	RequiredFacilities  []string `json:"requiredFacilities"`
	Location            string   `json:"location"`
	RecommendedCapacity float64  `json:"recommendedCapacity"`
	EstimatedCost       float64  `json:"estimatedCost"`
	ExpectedEngagement  float64  `json:"expectedEngagement"`
	Duration            float64  `json:"duration"`
}

// parseResponse extracts the first balanced JSON object from the raw text,
// validates the required fields and promotes it to a typed suggestion.
func (g *Generator) parseResponse(raw string, communityID int64, target TargetDate) (*models.Suggestion, bool) {
	region := extractJSONObject(raw)
	if region == "" {
		return nil, false
	}

	var parsed rawSuggestion
	if err := json.Unmarshal([]byte(region), &parsed); err != nil {
		return nil, false
	}

	if parsed.Title == "" || parsed.Description == "" || parsed.EventType == "" {
		return nil, false
	}

	if parsed.Duration <= 0 {
		parsed.Duration = fallbackDuration
	}
	if parsed.RecommendedCapacity <= 0 {
		parsed.RecommendedCapacity = fallbackCapacity
	}
	if parsed.ExpectedEngagement <= 0 || parsed.ExpectedEngagement > 100 {
		parsed.ExpectedEngagement = fallbackEngagement
	}
	if parsed.Location == "" {
		parsed.Location = "Community space"
	}
	// The array columns are NOT NULL; a nil slice would encode as SQL NULL.
	if parsed.ContextFactors == nil {
		parsed.ContextFactors = []string{}
	}
	if parsed.RequiredFacilities == nil {
		parsed.RequiredFacilities = []string{}
	}

	return &models.Suggestion{
		CommunityID:         communityID,
		Title:               parsed.Title,
		Description:         parsed.Description,
		Location:            parsed.Location,
		EventType:           parsed.EventType,
		SuggestedDate:       target.Date,
		DurationHours:       parsed.Duration,
		Reasoning:           parsed.Reasoning,
		ContextFactors:      parsed.ContextFactors,
		ExpectedEngagement:  parsed.ExpectedEngagement,
		RequiredFacilities:  parsed.RequiredFacilities,
		RecommendedCapacity: int(parsed.RecommendedCapacity),
		EstimatedCost:       parsed.EstimatedCost,
		Status:              models.SuggestionPending,
	}, true
}

// fallbackSuggestion is templated purely from the target-date context. It
// never fails.
func fallbackSuggestion(communityID int64, target TargetDate) *models.Suggestion {
	return &models.Suggestion{
		CommunityID:         communityID,
		Title:               fmt.Sprintf("%s Community Event", target.Label),
		Description:         fmt.Sprintf("A community gathering for %s. Join your neighbours for an afternoon of shared activities.", target.Label),
		Location:            "Community space",
		EventType:           "social",
		SuggestedDate:       target.Date,
		DurationHours:       fallbackDuration,
		Reasoning:           "Generated from the date context because no tailored suggestion was available.",
		ContextFactors:      []string{target.Label},
		ExpectedEngagement:  fallbackEngagement,
		RequiredFacilities:  []string{},
		RecommendedCapacity: fallbackCapacity,
		EstimatedCost:       fallbackCost,
		Status:              models.SuggestionPending,
	}
}

// extractJSONObject returns the first balanced {...} region of text,
// tolerant of leading and trailing prose, or "" when there is none.
// Braces inside JSON strings are ignored.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return ""
}
