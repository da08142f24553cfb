package models

import "time"

// SuggestionStatus is the lifecycle state of an event suggestion.
type SuggestionStatus string

const (
	SuggestionPending     SuggestionStatus = "PENDING"
	SuggestionApproved    SuggestionStatus = "APPROVED"
	SuggestionImplemented SuggestionStatus = "IMPLEMENTED"
	SuggestionRejected    SuggestionStatus = "REJECTED"
	SuggestionExpired     SuggestionStatus = "EXPIRED"
)

// Suggestion is an AI-proposed, not-yet-real event for one community.
// Created PENDING by the generator; mutated only by lifecycle transitions;
// never deleted by this subsystem.
type Suggestion struct {
	ID                  int64            `json:"id" db:"id"`
	CommunityID         int64            `json:"communityId" db:"community_id"`
	Title               string           `json:"title" db:"title"`
	Description         string           `json:"description" db:"description"`
	Location            string           `json:"location" db:"location"`
	EventType           string           `json:"eventType" db:"event_type"`
	SuggestedDate       time.Time        `json:"suggestedDate" db:"suggested_date"`
	DurationHours       float64          `json:"durationHours" db:"duration_hours"`
	Reasoning           string           `json:"reasoning" db:"reasoning"`
	ContextFactors      []string         `json:"contextFactors" db:"context_factors"`
	ExpectedEngagement  float64          `json:"expectedEngagement" db:"expected_engagement"`
	RequiredFacilities  []string         `json:"requiredFacilities" db:"required_facilities"`
	RecommendedCapacity int              `json:"recommendedCapacity" db:"recommended_capacity"`
	EstimatedCost       float64          `json:"estimatedCost" db:"estimated_cost"`
	Status              SuggestionStatus `json:"status" db:"status"`
	ImplementedEventID  *int64           `json:"implementedEventId,omitempty" db:"implemented_event_id"`
	BatchID             string           `json:"batchId" db:"batch_id"`
	CreatedAt           time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time        `json:"updatedAt" db:"updated_at"`

	// Related entities
	Community *Community `json:"community,omitempty"`
}

// CanImplement reports whether the status allows the implement transition.
func (s *Suggestion) CanImplement() bool {
	return s.Status == SuggestionPending || s.Status == SuggestionApproved
}

// CanReview reports whether the status allows a manual approve/reject.
func (s *Suggestion) CanReview() bool {
	return s.Status == SuggestionPending
}
