package repositories

import (
	"github.com/hivenest/communio/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	CommunityRepository  *CommunityRepository
	FacilityRepository   *FacilityRepository
	EventRepository      *EventRepository
	SuggestionRepository *SuggestionRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(database.Pool),
		CommunityRepository:  NewCommunityRepository(database.Pool),
		FacilityRepository:   NewFacilityRepository(database.Pool),
		EventRepository:      NewEventRepository(database),
		SuggestionRepository: NewSuggestionRepository(database.Pool),
	}
}
