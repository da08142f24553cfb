package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/hivenest/communio/internal/app/auth"
	"github.com/hivenest/communio/internal/app/models"
	"github.com/hivenest/communio/internal/app/models/dto"
	"github.com/hivenest/communio/internal/config"
	"github.com/hivenest/communio/internal/kv"
	"github.com/hivenest/communio/internal/pkg/apperrors"
	"github.com/hivenest/communio/internal/pkg/clock"
	"github.com/hivenest/communio/internal/pkg/notify"
	"github.com/hivenest/communio/internal/seed"
)

type memCommunities struct {
	byID map[int64]*models.Community
}

func (m *memCommunities) GetByID(_ context.Context, id int64) (*models.Community, error) {
	return m.byID[id], nil
}

func (m *memCommunities) GetWithResidents(_ context.Context, id int64) (*models.Community, error) {
	return m.byID[id], nil
}

func (m *memCommunities) ResidentIDs(_ context.Context, id int64) ([]int64, error) {
	community := m.byID[id]
	if community == nil {
		return nil, nil
	}
	ids := make([]int64, 0, len(community.Residents))
	for _, r := range community.Residents {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

type memFacilities struct {
	byCommunity map[int64][]*models.Facility
}

func (m *memFacilities) ListByCommunity(_ context.Context, communityID int64) ([]*models.Facility, error) {
	return m.byCommunity[communityID], nil
}

type memEvents struct {
	nextID int64
	events []*models.Event
}

func (m *memEvents) Create(_ context.Context, event *models.Event) (int64, error) {
	m.nextID++
	copied := *event
	copied.ID = m.nextID
	m.events = append(m.events, &copied)
	return m.nextID, nil
}

func (m *memEvents) GetByID(_ context.Context, id int64) (*models.Event, error) {
	for _, e := range m.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (m *memEvents) ListRecentWithAnalytics(_ context.Context, communityID int64, limit int) ([]*models.Event, error) {
	var out []*models.Event
	for _, e := range m.events {
		if e.CommunityID == communityID {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memSuggestions struct {
	nextID  int64
	byID    map[int64]*models.Suggestion
	touched map[int64]int
}

func newMemSuggestions() *memSuggestions {
	return &memSuggestions{byID: map[int64]*models.Suggestion{}, touched: map[int64]int{}}
}

func (m *memSuggestions) Create(_ context.Context, s *models.Suggestion) (*models.Suggestion, error) {
	m.nextID++
	copied := *s
	copied.ID = m.nextID
	m.byID[copied.ID] = &copied
	return &copied, nil
}

func (m *memSuggestions) GetByID(_ context.Context, id int64) (*models.Suggestion, error) {
	return m.byID[id], nil
}

func (m *memSuggestions) ListByCommunity(_ context.Context, communityID int64, status *models.SuggestionStatus, limit int) ([]*models.Suggestion, error) {
	var out []*models.Suggestion
	for id := int64(1); id <= m.nextID; id++ {
		s, ok := m.byID[id]
		if !ok || s.CommunityID != communityID {
			continue
		}
		if status != nil && s.Status != *status {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memSuggestions) MarkImplemented(_ context.Context, id int64, eventID int64) error {
	s := m.byID[id]
	s.Status = models.SuggestionImplemented
	s.ImplementedEventID = &eventID
	return nil
}

func (m *memSuggestions) UpdateStatus(_ context.Context, id int64, status models.SuggestionStatus) error {
	m.byID[id].Status = status
	return nil
}

func (m *memSuggestions) Touch(_ context.Context, id int64) error {
	m.touched[id]++
	return nil
}

type nopSeeder struct {
	ensured []int64
}

func (n *nopSeeder) EnsureSeeded(_ context.Context, communityID int64) error {
	n.ensured = append(n.ensured, communityID)
	return nil
}

func (n *nopSeeder) GetSeedingInfo(context.Context, int64) (*seed.Record, error) {
	return nil, nil
}

type recordingNotifier struct {
	sent chan notify.Announcement
}

func (r *recordingNotifier) Send(_ context.Context, a notify.Announcement) error {
	r.sent <- a
	return nil
}

const (
	ownerID    = int64(10)
	residentID = int64(11)
	outsiderID = int64(12)
)

type serviceFixture struct {
	svc         SuggestionService
	client      *stubCompletion
	store       kv.Store
	mr          *miniredis.Miniredis
	suggestions *memSuggestions
	events      *memEvents
	seeder      *nopSeeder
	notifier    *recordingNotifier
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })
	store := kv.NewRedisStore(redisClient)

	communities := &memCommunities{byID: map[int64]*models.Community{
		1: {
			ID:      1,
			Name:    "Maple Court",
			OwnerID: ownerID,
			Residents: []*models.User{
				{ID: residentID, Role: models.RoleResident},
			},
		},
	}}

	client := &stubCompletion{response: `{"title": "Garden Picnic", "description": "A picnic.", "eventType": "social", "expectedEngagement": 82, "duration": 2}`}
	suggestions := newMemSuggestions()
	events := &memEvents{}
	seeder := &nopSeeder{}
	notifier := &recordingNotifier{sent: make(chan notify.Announcement, 1)}

	rules := []config.TargetDateRule{
		{Label: "Saturday Evening", Weekday: intPtr(6), Hour: 18},
		{Label: "Sunday Brunch", Weekday: intPtr(0), Hour: 11},
	}

	svc := NewSuggestionService(SuggestionServiceDeps{
		Communities: communities,
		Facilities:  &memFacilities{byCommunity: map[int64][]*models.Facility{}},
		Events:      events,
		Suggestions: suggestions,
		Seeder:      seeder,
		Generator:   NewGenerator(client, zerolog.Nop()),
		Store:       store,
		Notifier:    notifier,
		TargetDates: func(c clock.Clock) []TargetDate {
			return ResolveTargetDates(rules, c)
		},
		Clock:        clock.Fixed(testNow),
		CacheTTL:     6 * time.Hour,
		BroadcastTTL: 168 * time.Hour,
		Logger:       zerolog.Nop(),
	})

	return &serviceFixture{
		svc:         svc,
		client:      client,
		store:       store,
		mr:          mr,
		suggestions: suggestions,
		events:      events,
		seeder:      seeder,
		notifier:    notifier,
	}
}

func owner() appauth.Principal    { return appauth.Principal{UserID: ownerID, Role: models.RoleOwner} }
func resident() appauth.Principal { return appauth.Principal{UserID: residentID, Role: models.RoleResident} }
func outsider() appauth.Principal { return appauth.Principal{UserID: outsiderID, Role: models.RoleResident} }

func TestGetOrGeneratePersistsBatch(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	batch, err := f.svc.GetOrGenerate(ctx, 1, owner(), false)
	require.NoError(t, err)

	assert.False(t, batch.FromCache)
	assert.NotEmpty(t, batch.BatchID)
	require.Len(t, batch.Suggestions, 2)
	wantDates := []time.Time{
		time.Date(2025, time.June, 21, 18, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 22, 11, 0, 0, 0, time.UTC),
	}
	for i, s := range batch.Suggestions {
		assert.Equal(t, models.SuggestionPending, s.Status)
		assert.Equal(t, batch.BatchID, s.BatchID)
		assert.NotZero(t, s.ID)
		assert.NotEmpty(t, s.Title)
		assert.True(t, s.SuggestedDate.Equal(wantDates[i]), "suggestion %d dated %s, want %s", i, s.SuggestedDate, wantDates[i])
	}
	assert.Equal(t, []int64{1}, f.seeder.ensured)
	assert.True(t, f.mr.Exists(kv.SuggestionCacheKey(1)))
}

func TestGetOrGenerateServesFromCache(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.svc.GetOrGenerate(ctx, 1, owner(), false)
	require.NoError(t, err)
	callsAfterFirst := f.client.calls

	second, err := f.svc.GetOrGenerate(ctx, 1, resident(), false)
	require.NoError(t, err)

	assert.True(t, second.FromCache)
	assert.Equal(t, first.BatchID, second.BatchID)
	assert.Equal(t, callsAfterFirst, f.client.calls, "cache hit must not invoke the completion service")
	assert.Equal(t, int64(2), f.suggestions.nextID, "cache hit must not persist new suggestions")
}

func TestGetOrGenerateFreshBypassesCache(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.svc.GetOrGenerate(ctx, 1, owner(), false)
	require.NoError(t, err)

	second, err := f.svc.GetOrGenerate(ctx, 1, owner(), true)
	require.NoError(t, err)

	assert.False(t, second.FromCache)
	assert.NotEqual(t, first.BatchID, second.BatchID)
}

func TestGetOrGenerateCacheExpiry(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.svc.GetOrGenerate(ctx, 1, owner(), false)
	require.NoError(t, err)

	f.mr.FastForward(7 * time.Hour)

	second, err := f.svc.GetOrGenerate(ctx, 1, owner(), false)
	require.NoError(t, err)
	assert.False(t, second.FromCache)
	assert.NotEqual(t, first.BatchID, second.BatchID)
}

func TestGetOrGenerateWholeBatchFailsOnTransportError(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.client.err = apperrors.NewUpstreamError("connection refused")

	_, err := f.svc.GetOrGenerate(ctx, 1, owner(), false)
	assert.ErrorIs(t, err, apperrors.ErrAIUnavailable)
	assert.Empty(t, f.suggestions.byID, "nothing may be persisted when the batch fails")
	assert.False(t, f.mr.Exists(kv.SuggestionCacheKey(1)))
}

func TestGetOrGenerateNonMemberForbidden(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.GetOrGenerate(context.Background(), 1, outsider(), false)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestGetOrGenerateUnknownCommunity(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.GetOrGenerate(context.Background(), 99, owner(), false)
	assert.ErrorIs(t, err, apperrors.ErrCommunityNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestListAnnotatesBroadcastPermission(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetOrGenerate(ctx, 1, owner(), false)
	require.NoError(t, err)

	asOwner, err := f.svc.List(ctx, 1, owner(), nil, 0)
	require.NoError(t, err)
	require.NotEmpty(t, asOwner.Suggestions)
	for _, item := range asOwner.Suggestions {
		assert.True(t, item.CanBroadcast)
	}
	assert.Equal(t, 1, asOwner.ResidentCount)

	asResident, err := f.svc.List(ctx, 1, resident(), nil, 0)
	require.NoError(t, err)
	for _, item := range asResident.Suggestions {
		assert.False(t, item.CanBroadcast)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetOrGenerate(ctx, 1, owner(), false)
	require.NoError(t, err)
	require.NoError(t, f.suggestions.UpdateStatus(ctx, 1, models.SuggestionRejected))

	pending := models.SuggestionPending
	listed, err := f.svc.List(ctx, 1, owner(), &pending, 0)
	require.NoError(t, err)
	require.Len(t, listed.Suggestions, 1)
	assert.Equal(t, models.SuggestionPending, listed.Suggestions[0].Status)
}

func seedSuggestion(t *testing.T, f *serviceFixture) *models.Suggestion {
	t.Helper()
	created, err := f.suggestions.Create(context.Background(), &models.Suggestion{
		CommunityID:        1,
		Title:              "Garden Picnic",
		Description:        "A picnic.",
		EventType:          "social",
		SuggestedDate:      time.Date(2025, time.June, 21, 18, 0, 0, 0, time.UTC),
		DurationHours:      2,
		ExpectedEngagement: 82,
		EstimatedCost:      150,
		Status:             models.SuggestionPending,
	})
	require.NoError(t, err)
	return created
}

func TestBroadcastOwnerOnly(t *testing.T) {
	f := newServiceFixture(t)
	s := seedSuggestion(t, f)

	_, err := f.svc.Broadcast(context.Background(), s.ID, resident(), dto.BroadcastRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestBroadcastLeavesStatusUntouched(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := seedSuggestion(t, f)

	resp, err := f.svc.Broadcast(ctx, s.ID, owner(), dto.BroadcastRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.SuggestionPending, f.suggestions.byID[s.ID].Status)
	assert.Equal(t, 1, f.suggestions.touched[s.ID])
	assert.Equal(t, 1, resp.RecipientCount)
	assert.Equal(t, []string{"push"}, resp.Channels)
	assert.NotEmpty(t, resp.Message)

	// The record lands in the store under the broadcast id.
	raw, err := f.store.Get(ctx, kv.BroadcastRecordKey(resp.BroadcastID))
	require.NoError(t, err)
	var record map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &record))
	assert.Equal(t, float64(s.ID), record["suggestionId"])
	assert.Equal(t, "sent", record["status"])

	select {
	case a := <-f.notifier.sent:
		assert.Equal(t, resp.BroadcastID, a.BroadcastID)
		assert.Equal(t, []int64{residentID}, a.RecipientIDs)
	case <-time.After(time.Second):
		t.Fatal("notifier was not invoked")
	}
}

func TestBroadcastCustomMessageAndChannels(t *testing.T) {
	f := newServiceFixture(t)
	s := seedSuggestion(t, f)

	resp, err := f.svc.Broadcast(context.Background(), s.ID, owner(), dto.BroadcastRequest{
		Message:  "Picnic this Saturday!",
		Channels: []string{"email", "chat"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Picnic this Saturday!", resp.Message)
	assert.Equal(t, []string{"email", "chat"}, resp.Channels)
	<-f.notifier.sent
}

func TestBroadcastUnknownSuggestion(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Broadcast(context.Background(), 404, owner(), dto.BroadcastRequest{})
	assert.ErrorIs(t, err, apperrors.ErrSuggestionNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestImplementCreatesEventAndMarksSuggestion(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := seedSuggestion(t, f)

	// A cached batch exists and must be invalidated by the transition.
	require.NoError(t, f.store.Set(ctx, kv.SuggestionCacheKey(1), "{}", time.Hour))

	resp, err := f.svc.Implement(ctx, s.ID, owner(), dto.ImplementRequest{})
	require.NoError(t, err)

	require.NotNil(t, resp.Event)
	assert.Equal(t, s.Title, resp.Event.Title)
	assert.Equal(t, s.SuggestedDate, resp.Event.StartTime)
	assert.Equal(t, s.SuggestedDate.Add(2*time.Hour), resp.Event.EndTime)
	assert.Equal(t, s.EstimatedCost, resp.Event.Cost)
	require.NotNil(t, resp.Event.RegistrationDeadline)
	assert.Equal(t, s.SuggestedDate.Add(-24*time.Hour), *resp.Event.RegistrationDeadline)

	require.NotNil(t, resp.Suggestion)
	assert.Equal(t, models.SuggestionImplemented, resp.Suggestion.Status)
	require.NotNil(t, resp.Suggestion.ImplementedEventID)
	assert.Equal(t, resp.Event.ID, *resp.Suggestion.ImplementedEventID)

	assert.False(t, f.mr.Exists(kv.SuggestionCacheKey(1)), "stale cached batch must be dropped")
}

func TestImplementOwnerOnly(t *testing.T) {
	f := newServiceFixture(t)
	s := seedSuggestion(t, f)

	_, err := f.svc.Implement(context.Background(), s.ID, resident(), dto.ImplementRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestImplementRejectsPastStart(t *testing.T) {
	f := newServiceFixture(t)
	s := seedSuggestion(t, f)

	past := testNow.Add(-48 * time.Hour)
	_, err := f.svc.Implement(context.Background(), s.ID, owner(), dto.ImplementRequest{StartTime: &past})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, models.SuggestionPending, f.suggestions.byID[s.ID].Status)
}

func TestImplementRejectsEndBeforeStart(t *testing.T) {
	f := newServiceFixture(t)
	s := seedSuggestion(t, f)

	end := s.SuggestedDate.Add(-time.Hour)
	_, err := f.svc.Implement(context.Background(), s.ID, owner(), dto.ImplementRequest{EndTime: &end})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestImplementRejectsTerminalStatus(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := seedSuggestion(t, f)
	require.NoError(t, f.suggestions.UpdateStatus(ctx, s.ID, models.SuggestionRejected))

	_, err := f.svc.Implement(ctx, s.ID, owner(), dto.ImplementRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Empty(t, f.events.events)
}

func TestImplementApprovedSuggestion(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := seedSuggestion(t, f)
	require.NoError(t, f.suggestions.UpdateStatus(ctx, s.ID, models.SuggestionApproved))

	resp, err := f.svc.Implement(ctx, s.ID, owner(), dto.ImplementRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.SuggestionImplemented, resp.Suggestion.Status)
}

func TestReviewTransitions(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := seedSuggestion(t, f)

	reviewed, err := f.svc.Review(ctx, s.ID, owner(), "APPROVED")
	require.NoError(t, err)
	assert.Equal(t, models.SuggestionApproved, reviewed.Status)

	// Only PENDING suggestions can be reviewed.
	_, err = f.svc.Review(ctx, s.ID, owner(), "REJECTED")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestReviewOwnerOnly(t *testing.T) {
	f := newServiceFixture(t)
	s := seedSuggestion(t, f)

	_, err := f.svc.Review(context.Background(), s.ID, resident(), "APPROVED")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
