package dto

import (
	"time"

	"github.com/hivenest/communio/internal/app/models"
)

// CommunitySummary is the community context returned with a suggestion batch
type CommunitySummary struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ResidentCount int    `json:"residentCount"`
	FacilityCount int    `json:"facilityCount"`
}

// TargetDateInfo describes one resolved generation target
type TargetDateInfo struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
}

// SeedingInfo mirrors the stored seeding record for a community
type SeedingInfo struct {
	SetName         string    `json:"setName"`
	SetIndex        int       `json:"setIndex"`
	FacilitiesAdded int       `json:"facilitiesAdded"`
	EventsAdded     int       `json:"eventsAdded"`
	SeededAt        time.Time `json:"seededAt"`
}

// SuggestionBatchResponse is the getOrGenerate result
type SuggestionBatchResponse struct {
	Suggestions []*models.Suggestion `json:"suggestions"`
	TargetDates []TargetDateInfo     `json:"targetDates"`
	Community   CommunitySummary     `json:"community"`
	Seeding     *SeedingInfo         `json:"seeding,omitempty"`
	BatchID     string               `json:"batchId"`
	FromCache   bool                 `json:"fromCache"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// SuggestionListItem annotates one persisted suggestion for the caller
type SuggestionListItem struct {
	*models.Suggestion
	CanBroadcast bool `json:"canBroadcast"`
}

// SuggestionListResponse is the listSuggestions result
type SuggestionListResponse struct {
	Suggestions   []SuggestionListItem `json:"suggestions"`
	ResidentCount int                  `json:"residentCount"`
}

// BroadcastRequest is the broadcast payload
type BroadcastRequest struct {
	Message     string     `json:"message" binding:"omitempty,max=2000"`
	ScheduleFor *time.Time `json:"scheduleFor,omitempty"`
	Channels    []string   `json:"channels" binding:"omitempty,dive,oneof=push email sms chat"`
}

// BroadcastResponse reports the stored broadcast record
type BroadcastResponse struct {
	BroadcastID    string     `json:"broadcastId"`
	SuggestionID   int64      `json:"suggestionId"`
	RecipientCount int        `json:"recipientCount"`
	Channels       []string   `json:"channels"`
	Message        string     `json:"message"`
	ScheduledFor   *time.Time `json:"scheduledFor,omitempty"`
	Status         string     `json:"status" example:"sent"`
}

// ImplementRequest optionally overrides the suggested schedule
type ImplementRequest struct {
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Title     string     `json:"title" binding:"omitempty,max=200"`
}

// ImplementResponse returns the production event and the updated suggestion
type ImplementResponse struct {
	Event      *models.Event      `json:"event"`
	Suggestion *models.Suggestion `json:"suggestion"`
}

// ReviewRequest carries a manual approve/reject decision
type ReviewRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
}
