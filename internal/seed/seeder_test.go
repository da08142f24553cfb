package seed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivenest/communio/internal/app/models"
	"github.com/hivenest/communio/internal/kv"
	"github.com/hivenest/communio/internal/pkg/apperrors"
	"github.com/hivenest/communio/internal/pkg/clock"
)

type fakeCommunityStore struct {
	existing map[int64]bool
}

func (f *fakeCommunityStore) Exists(_ context.Context, id int64) (bool, error) {
	return f.existing[id], nil
}

type fakeFacilityStore struct {
	nextID  int64
	created []*models.Facility
}

func (f *fakeFacilityStore) Create(_ context.Context, facility *models.Facility) (int64, error) {
	f.nextID++
	copied := *facility
	copied.ID = f.nextID
	f.created = append(f.created, &copied)
	return f.nextID, nil
}

func (f *fakeFacilityStore) DeleteByCommunity(_ context.Context, communityID int64) error {
	remaining := f.created[:0]
	for _, fac := range f.created {
		if fac.CommunityID != communityID {
			remaining = append(remaining, fac)
		}
	}
	f.created = remaining
	return nil
}

type fakeEventStore struct {
	nextID    int64
	events    []*models.Event
	analytics []*models.EventAnalytics
}

func (f *fakeEventStore) CreateWithAnalytics(_ context.Context, event *models.Event, analytics *models.EventAnalytics) (int64, error) {
	f.nextID++
	copied := *event
	copied.ID = f.nextID
	f.events = append(f.events, &copied)
	f.analytics = append(f.analytics, analytics)
	return f.nextID, nil
}

func (f *fakeEventStore) DeleteByCommunity(_ context.Context, communityID int64) error {
	remaining := f.events[:0]
	for _, e := range f.events {
		if e.CommunityID != communityID {
			remaining = append(remaining, e)
		}
	}
	f.events = remaining
	return nil
}

type seederFixture struct {
	seeder      *Seeder
	store       kv.Store
	mr          *miniredis.Miniredis
	communities *fakeCommunityStore
	facilities  *fakeFacilityStore
	events      *fakeEventStore
}

func newSeederFixture(t *testing.T, communityIDs ...int64) *seederFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := kv.NewRedisStore(client)

	existing := make(map[int64]bool, len(communityIDs))
	for _, id := range communityIDs {
		existing[id] = true
	}

	communities := &fakeCommunityStore{existing: existing}
	facilities := &fakeFacilityStore{}
	events := &fakeEventStore{}

	clk := clock.Fixed(time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC))
	seeder := NewSeeder(store, communities, facilities, events, Catalog(), clk, zerolog.Nop())

	return &seederFixture{
		seeder:      seeder,
		store:       store,
		mr:          mr,
		communities: communities,
		facilities:  facilities,
		events:      events,
	}
}

func TestEnsureSeededFirstCommunityGetsFirstSet(t *testing.T) {
	f := newSeederFixture(t, 1)
	ctx := context.Background()

	// The rotation counter has never been touched.
	require.NoError(t, f.seeder.EnsureSeeded(ctx, 1))

	record, err := f.seeder.GetSeedingInfo(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 0, record.SetIndex)
	assert.Equal(t, "garden-social", record.SetName)
	assert.Equal(t, 3, record.FacilitiesAdded)
	assert.Equal(t, 4, record.EventsAdded)
	assert.Len(t, f.facilities.created, 3)
	assert.Len(t, f.events.events, 4)
}

func TestEnsureSeededRotatesThroughCatalog(t *testing.T) {
	f := newSeederFixture(t, 1, 2, 3, 4)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3, 4} {
		require.NoError(t, f.seeder.EnsureSeeded(ctx, id))
	}

	wantSets := []string{"garden-social", "study-dining", "rooftop-culture", "garden-social"}
	for i, id := range []int64{1, 2, 3, 4} {
		record, err := f.seeder.GetSeedingInfo(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, wantSets[i], record.SetName, "community %d", id)
	}
}

func TestEnsureSeededIdempotent(t *testing.T) {
	f := newSeederFixture(t, 1)
	ctx := context.Background()

	require.NoError(t, f.seeder.EnsureSeeded(ctx, 1))
	facilityCount := len(f.facilities.created)
	eventCount := len(f.events.events)

	require.NoError(t, f.seeder.EnsureSeeded(ctx, 1))

	assert.Len(t, f.facilities.created, facilityCount)
	assert.Len(t, f.events.events, eventCount)
}

func TestEnsureSeededUnknownCommunity(t *testing.T) {
	f := newSeederFixture(t)
	ctx := context.Background()

	err := f.seeder.EnsureSeeded(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrCommunityNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Empty(t, f.facilities.created)
}

func TestEnsureSeededLeaseHeldElsewhere(t *testing.T) {
	f := newSeederFixture(t, 1)
	ctx := context.Background()

	// Another request holds the lease; this one must back off without
	// injecting anything.
	_, err := f.store.SetNX(ctx, kv.SeedingLockKey(1), "1", time.Minute)
	require.NoError(t, err)

	require.NoError(t, f.seeder.EnsureSeeded(ctx, 1))
	assert.Empty(t, f.facilities.created)
	assert.Empty(t, f.events.events)
}

func TestEnsureSeededReleasesLease(t *testing.T) {
	f := newSeederFixture(t, 1)
	ctx := context.Background()

	require.NoError(t, f.seeder.EnsureSeeded(ctx, 1))

	assert.False(t, f.mr.Exists(kv.SeedingLockKey(1)))
}

func TestClearSeedingAllowsReseed(t *testing.T) {
	f := newSeederFixture(t, 1)
	ctx := context.Background()

	require.NoError(t, f.seeder.EnsureSeeded(ctx, 1))
	require.NoError(t, f.seeder.ClearSeeding(ctx, 1))

	assert.Empty(t, f.facilities.created)
	assert.Empty(t, f.events.events)

	record, err := f.seeder.GetSeedingInfo(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, record)

	// The rotation pointer keeps advancing, so the reseed gets the next set.
	require.NoError(t, f.seeder.EnsureSeeded(ctx, 1))
	record, err = f.seeder.GetSeedingInfo(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "study-dining", record.SetName)
}

func TestSeededEventsLinkFacilitiesByType(t *testing.T) {
	f := newSeederFixture(t, 1)
	ctx := context.Background()

	require.NoError(t, f.seeder.EnsureSeeded(ctx, 1))

	byID := make(map[int64]*models.Facility, len(f.facilities.created))
	for _, fac := range f.facilities.created {
		byID[fac.ID] = fac
	}

	for _, event := range f.events.events {
		if event.FacilityID == nil {
			continue
		}
		_, ok := byID[*event.FacilityID]
		assert.True(t, ok, "event %q points at unknown facility", event.Title)
	}
}

func TestSeededEventsAreHistorical(t *testing.T) {
	f := newSeederFixture(t, 1)
	ctx := context.Background()

	require.NoError(t, f.seeder.EnsureSeeded(ctx, 1))

	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	for _, event := range f.events.events {
		assert.True(t, event.StartTime.Before(now), "event %q is not in the past", event.Title)
		assert.True(t, event.EndTime.After(event.StartTime))
	}
}

func TestSeededAnalyticsAttendanceRate(t *testing.T) {
	f := newSeederFixture(t, 1)
	ctx := context.Background()

	require.NoError(t, f.seeder.EnsureSeeded(ctx, 1))

	for i, a := range f.events.analytics {
		require.Positive(t, a.Registrations, "event %d", i)
		want := float64(a.ActualAttendance) / float64(a.Registrations) * 100
		assert.InDelta(t, want, a.AttendanceRate, 0.05, "event %d", i)
	}
}
