package models

import "time"

// Event represents a community event, either historical (seeded or past) or
// a production event created by implementing a suggestion.
type Event struct {
	ID                   int64      `json:"id" db:"id"`
	CommunityID          int64      `json:"communityId" db:"community_id"`
	FacilityID           *int64     `json:"facilityId,omitempty" db:"facility_id"`
	Title                string     `json:"title" db:"title"`
	Description          string     `json:"description" db:"description"`
	EventType            string     `json:"eventType" db:"event_type"`
	StartTime            time.Time  `json:"startTime" db:"start_time"`
	EndTime              time.Time  `json:"endTime" db:"end_time"`
	Cost                 float64    `json:"cost" db:"cost"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty" db:"registration_deadline"`
	CreatedAt            time.Time  `json:"createdAt" db:"created_at"`

	// Related entities
	Analytics *EventAnalytics `json:"analytics,omitempty"`
}

// EventAnalytics holds attendance and engagement figures for one event.
// Created atomically with the event; never updated independently.
type EventAnalytics struct {
	ID               int64   `json:"id" db:"id"`
	EventID          int64   `json:"eventId" db:"event_id"`
	Registrations    int     `json:"registrations" db:"registrations"`
	ActualAttendance int     `json:"actualAttendance" db:"actual_attendance"`
	AttendanceRate   float64 `json:"attendanceRate" db:"attendance_rate"`
	AverageRating    float64 `json:"averageRating" db:"average_rating"`
	FeedbackCount    int     `json:"feedbackCount" db:"feedback_count"`
	EngagementScore  float64 `json:"engagementScore" db:"engagement_score"`
	SuccessFactors   string  `json:"successFactors" db:"success_factors"`
	PhotosShared     int     `json:"photosShared" db:"photos_shared"`
	SocialMentions   int     `json:"socialMentions" db:"social_mentions"`
}
