package models

import "time"

// FacilityType enumerates the kinds of shared facilities a community has.
// The type is immutable after creation.
type FacilityType string

const (
	FacilityCommonRoom FacilityType = "COMMON_ROOM"
	FacilityRooftop    FacilityType = "ROOFTOP"
	FacilityGarden     FacilityType = "GARDEN"
	FacilityStudyRoom  FacilityType = "STUDY_ROOM"
	FacilityDiningHall FacilityType = "DINING_HALL"
)

// Facility represents a bookable shared space belonging to one community
type Facility struct {
	ID          int64        `json:"id" db:"id"`
	CommunityID int64        `json:"communityId" db:"community_id"`
	Name        string       `json:"name" db:"name"`
	Type        FacilityType `json:"type" db:"type"`
	Capacity    int          `json:"capacity" db:"capacity"`
	Amenities   []string     `json:"amenities" db:"amenities"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
}
