package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivenest/communio/internal/app/models"
	"github.com/hivenest/communio/internal/config"
	"github.com/hivenest/communio/internal/pkg/apperrors"
	"github.com/hivenest/communio/internal/pkg/clock"
)

type stubCompletion struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (s *stubCompletion) Complete(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func intPtr(v int) *int { return &v }

// June 15 2025 is a Sunday.
var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func testCommunity() *models.Community {
	return &models.Community{
		ID:   1,
		Name: "Maple Court",
		Residents: []*models.User{
			{ID: 2}, {ID: 3},
		},
	}
}

func testTarget() TargetDate {
	return TargetDate{
		Date:  time.Date(2025, time.June, 21, 18, 0, 0, 0, time.UTC),
		Label: "Saturday Evening",
	}
}

func TestResolveTargetDatesWeekday(t *testing.T) {
	clk := clock.Fixed(testNow)
	rules := []config.TargetDateRule{
		{Label: "Saturday Evening", Weekday: intPtr(6), Hour: 18},
		{Label: "Sunday Brunch", Weekday: intPtr(0), Hour: 11},
	}

	targets := ResolveTargetDates(rules, clk)
	require.Len(t, targets, 2)

	assert.Equal(t, time.Date(2025, time.June, 21, 18, 0, 0, 0, time.UTC), targets[0].Date)
	assert.Equal(t, "Saturday Evening", targets[0].Label)

	// 11:00 today has already passed, so the rule rolls to next Sunday.
	assert.Equal(t, time.Date(2025, time.June, 22, 11, 0, 0, 0, time.UTC), targets[1].Date)
}

func TestResolveTargetDatesFixedDate(t *testing.T) {
	clk := clock.Fixed(testNow)
	rules := []config.TargetDateRule{
		{Label: "Autumn Lantern Festival", Month: intPtr(10), Day: intPtr(28), Hour: 19},
		{Label: "Spring Fair", Month: intPtr(4), Day: intPtr(12), Hour: 10},
	}

	targets := ResolveTargetDates(rules, clk)
	require.Len(t, targets, 2)

	assert.Equal(t, time.Date(2025, time.October, 28, 19, 0, 0, 0, time.UTC), targets[0].Date)
	// April has passed this year; the rule rolls to next year.
	assert.Equal(t, time.Date(2026, time.April, 12, 10, 0, 0, 0, time.UTC), targets[1].Date)
}

func TestGenerateForDateParsesResponse(t *testing.T) {
	client := &stubCompletion{response: `Here is my suggestion:
{
  "title": "Rooftop Stargazing Night",
  "description": "An evening under the stars with telescopes and warm drinks.",
  "eventType": "social",
  "reasoning": "Evening events have performed well.",
  "contextFactors": ["weekend evening", "good weather season"],
  "requiredFacilities": ["Skyline Terrace"],
  "location": "Skyline Terrace",
  "recommendedCapacity": 30,
  "estimatedCost": 200,
  "expectedEngagement": 88,
  "duration": 3
}
I hope the residents enjoy it.`}

	g := NewGenerator(client, zerolog.Nop())
	suggestion, err := g.GenerateForDate(context.Background(), testCommunity(), nil, nil, testTarget())
	require.NoError(t, err)

	assert.Equal(t, "Rooftop Stargazing Night", suggestion.Title)
	assert.Equal(t, "social", suggestion.EventType)
	assert.Equal(t, models.SuggestionPending, suggestion.Status)
	assert.Equal(t, 88.0, suggestion.ExpectedEngagement)
	assert.Equal(t, 30, suggestion.RecommendedCapacity)
	assert.Equal(t, testTarget().Date, suggestion.SuggestedDate)
	assert.Equal(t, []string{"weekend evening", "good weather season"}, suggestion.ContextFactors)
}

func TestGenerateForDateFallbackOnMalformedJSON(t *testing.T) {
	client := &stubCompletion{response: "I would suggest a barbecue, maybe on the roof?"}

	g := NewGenerator(client, zerolog.Nop())
	suggestion, err := g.GenerateForDate(context.Background(), testCommunity(), nil, nil, testTarget())
	require.NoError(t, err)

	assert.Equal(t, "Saturday Evening Community Event", suggestion.Title)
	assert.Equal(t, 75.0, suggestion.ExpectedEngagement)
	assert.Equal(t, models.SuggestionPending, suggestion.Status)
	assert.Equal(t, 1, client.calls, "fallback must not re-invoke the completion service")
}

func TestGenerateForDateFallbackOnMissingRequiredFields(t *testing.T) {
	client := &stubCompletion{response: `{"description": "something fun", "expectedEngagement": 90}`}

	g := NewGenerator(client, zerolog.Nop())
	suggestion, err := g.GenerateForDate(context.Background(), testCommunity(), nil, nil, testTarget())
	require.NoError(t, err)

	assert.Equal(t, "Saturday Evening Community Event", suggestion.Title)
	assert.Equal(t, 75.0, suggestion.ExpectedEngagement)
}

// The array columns of event_suggestions are NOT NULL, and pgx encodes a
// nil []string as SQL NULL. Every generated suggestion must therefore carry
// non-nil array fields, whichever path produced it.
func TestGenerateForDateArrayFieldsEncodeNonNull(t *testing.T) {
	m := pgtype.NewMap()
	encode := func(t *testing.T, value []string) []byte {
		t.Helper()
		buf, err := m.Encode(pgtype.TextArrayOID, pgtype.TextFormatCode, value, nil)
		require.NoError(t, err)
		return buf
	}

	responses := map[string]string{
		"fallback":       "I would suggest a barbecue, maybe on the roof?",
		"arrays omitted": `{"title": "Game Night", "description": "Board games.", "eventType": "social"}`,
	}

	for name, response := range responses {
		t.Run(name, func(t *testing.T) {
			g := NewGenerator(&stubCompletion{response: response}, zerolog.Nop())
			suggestion, err := g.GenerateForDate(context.Background(), testCommunity(), nil, nil, testTarget())
			require.NoError(t, err)

			require.NotNil(t, suggestion.ContextFactors)
			require.NotNil(t, suggestion.RequiredFacilities)
			assert.NotNil(t, encode(t, suggestion.ContextFactors), "context_factors must not encode as SQL NULL")
			assert.NotNil(t, encode(t, suggestion.RequiredFacilities), "required_facilities must not encode as SQL NULL")
		})
	}
}

func TestGenerateForDateClampsEngagement(t *testing.T) {
	client := &stubCompletion{response: `{"title": "Game Night", "description": "Board games.", "eventType": "social", "expectedEngagement": 250}`}

	g := NewGenerator(client, zerolog.Nop())
	suggestion, err := g.GenerateForDate(context.Background(), testCommunity(), nil, nil, testTarget())
	require.NoError(t, err)

	assert.Equal(t, "Game Night", suggestion.Title)
	assert.Equal(t, 75.0, suggestion.ExpectedEngagement)
	assert.Equal(t, float64(fallbackDuration), suggestion.DurationHours)
}

func TestGenerateForDateTransportErrorPropagates(t *testing.T) {
	client := &stubCompletion{err: apperrors.NewUpstreamError("connection refused")}

	g := NewGenerator(client, zerolog.Nop())
	_, err := g.GenerateForDate(context.Background(), testCommunity(), nil, nil, testTarget())

	assert.ErrorIs(t, err, apperrors.ErrAIUnavailable)
}

func TestPromptIncludesContext(t *testing.T) {
	client := &stubCompletion{response: `{"title": "T", "description": "D", "eventType": "social"}`}

	facilities := []*models.Facility{
		{ID: 1, Name: "The Greenhouse", Type: models.FacilityGarden, Capacity: 40, Amenities: []string{"raised beds"}},
	}
	history := make([]*models.Event, 0, 5)
	for i := 0; i < 5; i++ {
		history = append(history, &models.Event{
			Title:     fmt.Sprintf("Event %d", i),
			EventType: "social",
			Analytics: &models.EventAnalytics{EngagementScore: 80, AttendanceRate: 90, AverageRating: 4.5},
		})
	}

	g := NewGenerator(client, zerolog.Nop())
	_, err := g.GenerateForDate(context.Background(), testCommunity(), facilities, history, testTarget())
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "Maple Court")
	assert.Contains(t, prompt, "The Greenhouse")
	assert.Contains(t, prompt, "Saturday Evening")
	// Only the three most recent events are embedded.
	assert.Contains(t, prompt, "Event 2")
	assert.NotContains(t, prompt, "Event 3")
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"leading prose", `Sure! {"a": 1}`, `{"a": 1}`},
		{"trailing prose", `{"a": 1} hope that helps`, `{"a": 1}`},
		{"nested objects", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"brace inside string", `{"a": "closing } brace"}`, `{"a": "closing } brace"}`},
		{"escaped quote", `{"a": "say \"hi\" {ok}"}`, `{"a": "say \"hi\" {ok}"}`},
		{"no object", `no json here`, ""},
		{"unbalanced", `{"a": 1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONObject(tt.in))
		})
	}
}
