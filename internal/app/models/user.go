package models

import "time"

// Role is the principal role within a community.
type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleResident Role = "RESIDENT"
)

// User represents a community owner or resident
type User struct {
	ID          int64     `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Password    string    `json:"-" db:"password"`
	FirstName   string    `json:"firstName" db:"first_name"`
	LastName    string    `json:"lastName" db:"last_name"`
	Role        Role      `json:"role" db:"role"`
	CommunityID *int64    `json:"communityId,omitempty" db:"community_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
