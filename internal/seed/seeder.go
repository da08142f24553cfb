// Package seed injects a rotation of demonstration content into communities
// on first access, and creates the default data set at startup.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/hivenest/communio/internal/app/models"
	"github.com/hivenest/communio/internal/kv"
	"github.com/hivenest/communio/internal/pkg/apperrors"
	"github.com/hivenest/communio/internal/pkg/clock"
)

// seedLockTTL bounds how long a crashed seeding attempt can block others.
const seedLockTTL = 30 * time.Second

// CommunityStore is the slice of community persistence the seeder needs.
type CommunityStore interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// FacilityStore is the slice of facility persistence the seeder needs.
type FacilityStore interface {
	Create(ctx context.Context, facility *models.Facility) (int64, error)
	DeleteByCommunity(ctx context.Context, communityID int64) error
}

// EventStore is the slice of event persistence the seeder needs.
type EventStore interface {
	CreateWithAnalytics(ctx context.Context, event *models.Event, analytics *models.EventAnalytics) (int64, error)
	DeleteByCommunity(ctx context.Context, communityID int64) error
}

// Record is the per-community seeding marker kept in the rotation store.
// Written once, after all facilities and events succeed; never updated.
// The set name is stored alongside the index so extending or reordering the
// catalog later never reinterprets old records.
type Record struct {
	SetName         string    `json:"setName"`
	SetIndex        int       `json:"setIndex"`
	FacilitiesAdded int       `json:"facilitiesAdded"`
	EventsAdded     int       `json:"eventsAdded"`
	SeededAt        time.Time `json:"seededAt"`
}

// Seeder decides whether a community needs demonstration content, advances
// the global rotation pointer and performs the injection.
type Seeder struct {
	store       kv.Store
	communities CommunityStore
	facilities  FacilityStore
	events      EventStore
	catalog     []Set
	clk         clock.Clock
	logger      zerolog.Logger
}

// NewSeeder creates a Seeder over the given stores and catalog.
func NewSeeder(store kv.Store, communities CommunityStore, facilities FacilityStore, events EventStore, catalog []Set, clk clock.Clock, logger zerolog.Logger) *Seeder {
	return &Seeder{
		store:       store,
		communities: communities,
		facilities:  facilities,
		events:      events,
		catalog:     catalog,
		clk:         clk,
		logger:      logger,
	}
}

// EnsureSeeded injects demonstration content into the community unless it
// already has some. Idempotent; safe to call concurrently for the same
// community: a short redis lease closes the check-then-act window, and a
// request that loses the lease treats the community as being seeded and
// returns without injecting.
func (s *Seeder) EnsureSeeded(ctx context.Context, communityID int64) error {
	seeded, err := s.HasSeeded(ctx, communityID)
	if err != nil {
		return fmt.Errorf("failed to check seeding record: %w", err)
	}
	if seeded {
		return nil
	}

	exists, err := s.communities.Exists(ctx, communityID)
	if err != nil {
		return fmt.Errorf("failed to check community existence: %w", err)
	}
	if !exists {
		return apperrors.NewCustomError(apperrors.ErrCommunityNotFound, "Community not found")
	}

	acquired, err := s.store.SetNX(ctx, kv.SeedingLockKey(communityID), "1", seedLockTTL)
	if err != nil {
		return fmt.Errorf("failed to take seeding lease: %w", err)
	}
	if !acquired {
		// Another request is seeding this community right now.
		s.logger.Debug().Int64("communityID", communityID).Msg("Seeding lease held elsewhere, skipping")
		return nil
	}
	defer func() {
		if err := s.store.Delete(context.Background(), kv.SeedingLockKey(communityID)); err != nil {
			s.logger.Warn().Err(err).Int64("communityID", communityID).Msg("Failed to release seeding lease")
		}
	}()

	// The lease winner may still observe a record written by a request that
	// finished between our first check and the lease.
	seeded, err = s.HasSeeded(ctx, communityID)
	if err != nil {
		return fmt.Errorf("failed to re-check seeding record: %w", err)
	}
	if seeded {
		return nil
	}

	return s.seed(ctx, communityID)
}

// seed performs the actual injection. Any store failure aborts the whole
// run before the record is written, so a retry re-attempts seeding; a
// half-seeded community (facilities without events) is possible on abort.
func (s *Seeder) seed(ctx context.Context, communityID int64) error {
	index, err := s.nextSetIndex(ctx)
	if err != nil {
		return err
	}
	set := s.catalog[index]

	s.logger.Info().
		Int64("communityID", communityID).
		Str("set", set.Name).
		Int("setIndex", index).
		Msg("Seeding community with demonstration content")

	created := make([]*models.Facility, 0, len(set.Facilities))
	for _, tmpl := range set.Facilities {
		facility := &models.Facility{
			CommunityID: communityID,
			Name:        tmpl.Name,
			Type:        tmpl.Type,
			Capacity:    tmpl.Capacity,
			Amenities:   tmpl.Amenities,
		}
		id, err := s.facilities.Create(ctx, facility)
		if err != nil {
			return fmt.Errorf("failed to create facility %q: %w", tmpl.Name, err)
		}
		facility.ID = id
		created = append(created, facility)
	}

	now := s.clk.Now()
	for _, tmpl := range set.Events {
		event, analytics := buildEvent(communityID, tmpl, created, now)
		if _, err := s.events.CreateWithAnalytics(ctx, event, analytics); err != nil {
			return fmt.Errorf("failed to create event %q: %w", tmpl.Title, err)
		}
	}

	record := Record{
		SetName:         set.Name,
		SetIndex:        index,
		FacilitiesAdded: len(set.Facilities),
		EventsAdded:     len(set.Events),
		SeededAt:        now,
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal seeding record: %w", err)
	}
	if err := s.store.Set(ctx, kv.SeedingRecordKey(communityID), string(payload), 0); err != nil {
		return fmt.Errorf("failed to write seeding record: %w", err)
	}

	s.logger.Info().
		Int64("communityID", communityID).
		Int("facilities", record.FacilitiesAdded).
		Int("events", record.EventsAdded).
		Msg("Community seeded")

	return nil
}

// nextSetIndex atomically advances the shared rotation counter. The counter
// is global across all communities, so assignments interleave in one
// sequence; fairness under concurrent INCRs is best-effort.
func (s *Seeder) nextSetIndex(ctx context.Context) (int, error) {
	n, err := s.store.Incr(ctx, kv.RotationCounterKey())
	if err != nil {
		return 0, fmt.Errorf("failed to advance rotation counter: %w", err)
	}
	return int((n - 1) % int64(len(s.catalog))), nil
}

// buildEvent materializes an event template relative to now, resolving its
// facility by type against the freshly created facilities (first match, or
// none).
func buildEvent(communityID int64, tmpl EventTemplate, facilities []*models.Facility, now time.Time) (*models.Event, *models.EventAnalytics) {
	var facilityID *int64
	for _, f := range facilities {
		if f.Type == tmpl.FacilityType {
			id := f.ID
			facilityID = &id
			break
		}
	}

	day := now.AddDate(0, 0, -tmpl.DaysAgo)
	start := time.Date(day.Year(), day.Month(), day.Day(), tmpl.StartHour, 0, 0, 0, day.Location())
	end := start.Add(time.Duration(tmpl.DurationHours) * time.Hour)

	event := &models.Event{
		CommunityID: communityID,
		FacilityID:  facilityID,
		Title:       tmpl.Title,
		Description: tmpl.Description,
		EventType:   tmpl.EventType,
		StartTime:   start,
		EndTime:     end,
		Cost:        tmpl.Cost,
	}

	a := tmpl.Analytics
	rate := 0.0
	if a.Registrations > 0 {
		rate = math.Round(float64(a.Attendance)/float64(a.Registrations)*1000) / 10
	}
	analytics := &models.EventAnalytics{
		Registrations:    a.Registrations,
		ActualAttendance: a.Attendance,
		AttendanceRate:   rate,
		AverageRating:    a.AverageRating,
		FeedbackCount:    a.FeedbackCount,
		EngagementScore:  a.EngagementScore,
		SuccessFactors:   a.SuccessFactors,
		// Presentation-only metrics derived from engagement.
		PhotosShared:   int(a.EngagementScore / 4),
		SocialMentions: int(a.EngagementScore / 8),
	}

	return event, analytics
}

// HasSeeded reports whether the community already has a seeding record.
func (s *Seeder) HasSeeded(ctx context.Context, communityID int64) (bool, error) {
	_, err := s.store.Get(ctx, kv.SeedingRecordKey(communityID))
	if err != nil {
		if err == kv.ErrMiss {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetSeedingInfo returns the community's seeding record, or nil when the
// community has not been seeded.
func (s *Seeder) GetSeedingInfo(ctx context.Context, communityID int64) (*Record, error) {
	raw, err := s.store.Get(ctx, kv.SeedingRecordKey(communityID))
	if err != nil {
		if err == kv.ErrMiss {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read seeding record: %w", err)
	}

	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seeding record: %w", err)
	}
	return &record, nil
}

// ClearSeeding deletes the community's analytics, events and facilities and
// removes the seeding record. Intended for reset/testing; not guarded
// against concurrent use.
func (s *Seeder) ClearSeeding(ctx context.Context, communityID int64) error {
	if err := s.events.DeleteByCommunity(ctx, communityID); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	if err := s.facilities.DeleteByCommunity(ctx, communityID); err != nil {
		return fmt.Errorf("failed to delete facilities: %w", err)
	}
	if err := s.store.Delete(ctx, kv.SeedingRecordKey(communityID)); err != nil {
		return fmt.Errorf("failed to delete seeding record: %w", err)
	}

	s.logger.Info().Int64("communityID", communityID).Msg("Seeding cleared")
	return nil
}
