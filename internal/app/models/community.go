package models

import "time"

// Community represents a managed property (one tenant)
type Community struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	OwnerID   int64     `json:"ownerId" db:"owner_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	Owner      *User       `json:"owner,omitempty"`
	Residents  []*User     `json:"residents,omitempty"`
	Facilities []*Facility `json:"facilities,omitempty"`
	Events     []*Event    `json:"events,omitempty"`
}

// IsMember reports whether the user id is the owner or one of the residents.
// Residents must be loaded for the resident check to be meaningful.
func (c *Community) IsMember(userID int64) bool {
	if c.OwnerID == userID {
		return true
	}
	for _, r := range c.Residents {
		if r.ID == userID {
			return true
		}
	}
	return false
}
