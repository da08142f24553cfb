package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appauth "github.com/hivenest/communio/internal/app/auth"
	"github.com/hivenest/communio/internal/app/models"
	"github.com/hivenest/communio/internal/app/models/dto"
	"github.com/hivenest/communio/internal/kv"
	"github.com/hivenest/communio/internal/pkg/apperrors"
	"github.com/hivenest/communio/internal/pkg/clock"
	"github.com/hivenest/communio/internal/pkg/notify"
	"github.com/hivenest/communio/internal/seed"
)

const (
	historyWindow    = 10
	notifyTimeout    = 10 * time.Second
	defaultListLimit = 20
)

// CommunityReader is the slice of community persistence the service needs.
type CommunityReader interface {
	GetByID(ctx context.Context, id int64) (*models.Community, error)
	GetWithResidents(ctx context.Context, id int64) (*models.Community, error)
	ResidentIDs(ctx context.Context, id int64) ([]int64, error)
}

// FacilityReader lists a community's facilities.
type FacilityReader interface {
	ListByCommunity(ctx context.Context, communityID int64) ([]*models.Facility, error)
}

// EventStore is the slice of event persistence the service needs.
type EventStore interface {
	Create(ctx context.Context, event *models.Event) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	ListRecentWithAnalytics(ctx context.Context, communityID int64, limit int) ([]*models.Event, error)
}

// SuggestionStore is the slice of suggestion persistence the service needs.
type SuggestionStore interface {
	Create(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error)
	GetByID(ctx context.Context, id int64) (*models.Suggestion, error)
	ListByCommunity(ctx context.Context, communityID int64, status *models.SuggestionStatus, limit int) ([]*models.Suggestion, error)
	MarkImplemented(ctx context.Context, id int64, eventID int64) error
	UpdateStatus(ctx context.Context, id int64, status models.SuggestionStatus) error
	Touch(ctx context.Context, id int64) error
}

// DemoSeeder injects demonstration content on first access.
type DemoSeeder interface {
	EnsureSeeded(ctx context.Context, communityID int64) error
	GetSeedingInfo(ctx context.Context, communityID int64) (*seed.Record, error)
}

// SuggestionService is the event suggestion engine: cached generation,
// listing and the broadcast/implement lifecycle transitions.
type SuggestionService interface {
	GetOrGenerate(ctx context.Context, communityID int64, principal appauth.Principal, forceFresh bool) (*dto.SuggestionBatchResponse, error)
	List(ctx context.Context, communityID int64, principal appauth.Principal, status *models.SuggestionStatus, limit int) (*dto.SuggestionListResponse, error)
	Broadcast(ctx context.Context, suggestionID int64, principal appauth.Principal, req dto.BroadcastRequest) (*dto.BroadcastResponse, error)
	Implement(ctx context.Context, suggestionID int64, principal appauth.Principal, req dto.ImplementRequest) (*dto.ImplementResponse, error)
	Review(ctx context.Context, suggestionID int64, principal appauth.Principal, decision string) (*models.Suggestion, error)
}

type suggestionServiceImpl struct {
	communities  CommunityReader
	facilities   FacilityReader
	events       EventStore
	suggestions  SuggestionStore
	seeder       DemoSeeder
	generator    *Generator
	store        kv.Store
	notifier     notify.Notifier
	resolveDates func(clock.Clock) []TargetDate
	clk          clock.Clock
	cacheTTL     time.Duration
	broadcastTTL time.Duration
	logger       zerolog.Logger
}

// SuggestionServiceDeps bundles the service's collaborators.
type SuggestionServiceDeps struct {
	Communities  CommunityReader
	Facilities   FacilityReader
	Events       EventStore
	Suggestions  SuggestionStore
	Seeder       DemoSeeder
	Generator    *Generator
	Store        kv.Store
	Notifier     notify.Notifier
	TargetDates  func(clock.Clock) []TargetDate
	Clock        clock.Clock
	CacheTTL     time.Duration
	BroadcastTTL time.Duration
	Logger       zerolog.Logger
}

// NewSuggestionService creates the suggestion engine service.
func NewSuggestionService(deps SuggestionServiceDeps) SuggestionService {
	return &suggestionServiceImpl{
		communities:  deps.Communities,
		facilities:   deps.Facilities,
		events:       deps.Events,
		suggestions:  deps.Suggestions,
		seeder:       deps.Seeder,
		generator:    deps.Generator,
		store:        deps.Store,
		notifier:     deps.Notifier,
		resolveDates: deps.TargetDates,
		clk:          deps.Clock,
		cacheTTL:     deps.CacheTTL,
		broadcastTTL: deps.BroadcastTTL,
		logger:       deps.Logger,
	}
}

// broadcastRecord is the audit entry kept in the rotation store for one week.
type broadcastRecord struct {
	BroadcastID  string     `json:"broadcastId"`
	SuggestionID int64      `json:"suggestionId"`
	CommunityID  int64      `json:"communityId"`
	SenderID     int64      `json:"senderId"`
	Message      string     `json:"message"`
	Channels     []string   `json:"channels"`
	RecipientIDs []int64    `json:"recipientIds"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	Status       string     `json:"status"`
	SentAt       time.Time  `json:"sentAt"`
}

// authorizeMember loads the community with residents and verifies the caller
// is its owner or one of its residents.
func (s *suggestionServiceImpl) authorizeMember(ctx context.Context, communityID int64, principal appauth.Principal) (*models.Community, error) {
	community, err := s.communities.GetWithResidents(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load community: %w", err)
	}
	if community == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrCommunityNotFound, "Community not found")
	}
	if !community.IsMember(principal.UserID) {
		return nil, apperrors.NewForbiddenError("You are not a member of this community")
	}
	return community, nil
}

// GetOrGenerate returns the community's current suggestion batch, serving
// from cache when a fresh batch exists and generating a new one otherwise.
// Generation seeds the community first if it has no content yet.
func (s *suggestionServiceImpl) GetOrGenerate(ctx context.Context, communityID int64, principal appauth.Principal, forceFresh bool) (*dto.SuggestionBatchResponse, error) {
	community, err := s.authorizeMember(ctx, communityID, principal)
	if err != nil {
		return nil, err
	}

	if err := s.seeder.EnsureSeeded(ctx, communityID); err != nil {
		return nil, err
	}

	cacheKey := kv.SuggestionCacheKey(communityID)
	if !forceFresh {
		if cached, err := s.store.Get(ctx, cacheKey); err == nil {
			var batch dto.SuggestionBatchResponse
			if err := json.Unmarshal([]byte(cached), &batch); err == nil {
				batch.FromCache = true
				return &batch, nil
			}
			s.logger.Warn().Int64("communityID", communityID).Msg("Discarding undecodable cached suggestion batch")
		} else if err != kv.ErrMiss {
			return nil, fmt.Errorf("failed to read suggestion cache: %w", err)
		}
	}

	facilities, err := s.facilities.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load facilities: %w", err)
	}
	history, err := s.events.ListRecentWithAnalytics(ctx, communityID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load event history: %w", err)
	}

	targets := s.resolveDates(s.clk)

	// Generate the whole batch before persisting anything: a transport
	// failure on any target date fails the batch with no partial writes.
	generated := make([]*models.Suggestion, 0, len(targets))
	for _, target := range targets {
		suggestion, err := s.generator.GenerateForDate(ctx, community, facilities, history, target)
		if err != nil {
			return nil, err
		}
		generated = append(generated, suggestion)
	}

	batchID := uuid.New().String()
	persisted := make([]*models.Suggestion, 0, len(generated))
	for _, suggestion := range generated {
		suggestion.BatchID = batchID
		created, err := s.suggestions.Create(ctx, suggestion)
		if err != nil {
			return nil, fmt.Errorf("failed to persist suggestion: %w", err)
		}
		persisted = append(persisted, created)
	}

	facilityCount := len(facilities)
	targetInfos := make([]dto.TargetDateInfo, 0, len(targets))
	for _, t := range targets {
		targetInfos = append(targetInfos, dto.TargetDateInfo{Date: t.Date, Label: t.Label})
	}

	batch := &dto.SuggestionBatchResponse{
		Suggestions: persisted,
		TargetDates: targetInfos,
		Community: dto.CommunitySummary{
			ID:            community.ID,
			Name:          community.Name,
			ResidentCount: len(community.Residents),
			FacilityCount: facilityCount,
		},
		BatchID:     batchID,
		FromCache:   false,
		GeneratedAt: s.clk.Now(),
	}

	if record, err := s.seeder.GetSeedingInfo(ctx, communityID); err == nil && record != nil {
		batch.Seeding = &dto.SeedingInfo{
			SetName:         record.SetName,
			SetIndex:        record.SetIndex,
			FacilitiesAdded: record.FacilitiesAdded,
			EventsAdded:     record.EventsAdded,
			SeededAt:        record.SeededAt,
		}
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode suggestion batch: %w", err)
	}
	if err := s.store.Set(ctx, cacheKey, string(payload), s.cacheTTL); err != nil {
		// A failed cache write costs a regeneration later, not correctness.
		s.logger.Warn().Err(err).Int64("communityID", communityID).Msg("Failed to cache suggestion batch")
	}

	s.logger.Info().
		Int64("communityID", communityID).
		Str("batchID", batchID).
		Int("suggestions", len(persisted)).
		Msg("Generated suggestion batch")

	return batch, nil
}

// List returns the community's persisted suggestions ordered by expected
// engagement, annotated with whether the caller may broadcast them.
func (s *suggestionServiceImpl) List(ctx context.Context, communityID int64, principal appauth.Principal, status *models.SuggestionStatus, limit int) (*dto.SuggestionListResponse, error) {
	community, err := s.authorizeMember(ctx, communityID, principal)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	suggestions, err := s.suggestions.ListByCommunity(ctx, communityID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}

	isOwner := community.OwnerID == principal.UserID
	items := make([]dto.SuggestionListItem, 0, len(suggestions))
	for _, suggestion := range suggestions {
		items = append(items, dto.SuggestionListItem{
			Suggestion:   suggestion,
			CanBroadcast: isOwner,
		})
	}

	return &dto.SuggestionListResponse{
		Suggestions:   items,
		ResidentCount: len(community.Residents),
	}, nil
}

// loadForTransition fetches the suggestion and its community and verifies
// the caller owns the community.
func (s *suggestionServiceImpl) loadForTransition(ctx context.Context, suggestionID int64, principal appauth.Principal) (*models.Suggestion, *models.Community, error) {
	if !principal.IsOwner() {
		return nil, nil, apperrors.NewForbiddenError("Only the community owner may do this")
	}

	suggestion, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load suggestion: %w", err)
	}
	if suggestion == nil {
		return nil, nil, apperrors.NewCustomError(apperrors.ErrSuggestionNotFound, "Suggestion not found")
	}

	community, err := s.communities.GetByID(ctx, suggestion.CommunityID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load community: %w", err)
	}
	if community == nil {
		return nil, nil, apperrors.NewCustomError(apperrors.ErrCommunityNotFound, "Community not found")
	}
	if community.OwnerID != principal.UserID {
		return nil, nil, apperrors.NewForbiddenError("Only the community owner may do this")
	}

	return suggestion, community, nil
}

// Broadcast announces a suggestion to the community's residents. It is
// observational: the suggestion keeps its status and only its update
// timestamp moves. Delivery runs in the background and its failure does not
// fail the request.
func (s *suggestionServiceImpl) Broadcast(ctx context.Context, suggestionID int64, principal appauth.Principal, req dto.BroadcastRequest) (*dto.BroadcastResponse, error) {
	suggestion, community, err := s.loadForTransition(ctx, suggestionID, principal)
	if err != nil {
		return nil, err
	}

	recipients, err := s.communities.ResidentIDs(ctx, community.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load residents: %w", err)
	}

	message := req.Message
	if message == "" {
		message = fmt.Sprintf("New event idea for %s: %s on %s. %s",
			community.Name, suggestion.Title,
			suggestion.SuggestedDate.Format("Monday, January 2 at 15:04"),
			suggestion.Description)
	}
	channels := req.Channels
	if len(channels) == 0 {
		channels = []string{"push"}
	}

	record := broadcastRecord{
		BroadcastID:  uuid.New().String(),
		SuggestionID: suggestion.ID,
		CommunityID:  community.ID,
		SenderID:     principal.UserID,
		Message:      message,
		Channels:     channels,
		RecipientIDs: recipients,
		ScheduledFor: req.ScheduleFor,
		Status:       "sent",
		SentAt:       s.clk.Now(),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode broadcast record: %w", err)
	}
	if err := s.store.Set(ctx, kv.BroadcastRecordKey(record.BroadcastID), string(payload), s.broadcastTTL); err != nil {
		return nil, fmt.Errorf("failed to store broadcast record: %w", err)
	}

	if err := s.suggestions.Touch(ctx, suggestion.ID); err != nil {
		return nil, fmt.Errorf("failed to touch suggestion: %w", err)
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Send(sendCtx, notify.Announcement{
			BroadcastID:  record.BroadcastID,
			CommunityID:  community.ID,
			SuggestionID: suggestion.ID,
			Message:      message,
			Channels:     channels,
			RecipientIDs: recipients,
		}); err != nil {
			s.logger.Warn().Err(err).Str("broadcastID", record.BroadcastID).Msg("Broadcast delivery failed")
		}
	}()

	return &dto.BroadcastResponse{
		BroadcastID:    record.BroadcastID,
		SuggestionID:   suggestion.ID,
		RecipientCount: len(recipients),
		Channels:       channels,
		Message:        message,
		ScheduledFor:   req.ScheduleFor,
		Status:         record.Status,
	}, nil
}

// Implement promotes a suggestion into a production event and marks the
// suggestion IMPLEMENTED. The cached batch for the community is invalidated
// so the stale status is not served.
func (s *suggestionServiceImpl) Implement(ctx context.Context, suggestionID int64, principal appauth.Principal, req dto.ImplementRequest) (*dto.ImplementResponse, error) {
	suggestion, community, err := s.loadForTransition(ctx, suggestionID, principal)
	if err != nil {
		return nil, err
	}

	if !suggestion.CanImplement() {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("Suggestion in status %s cannot be implemented", suggestion.Status))
	}

	startTime := suggestion.SuggestedDate
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	endTime := startTime.Add(time.Duration(suggestion.DurationHours * float64(time.Hour)))
	if req.EndTime != nil {
		endTime = *req.EndTime
	}

	if !endTime.After(startTime) {
		return nil, apperrors.NewValidationError("Event end time must be after its start time")
	}
	if !startTime.After(s.clk.Now()) {
		return nil, apperrors.NewValidationError("Event start time must be in the future")
	}

	title := suggestion.Title
	if req.Title != "" {
		title = req.Title
	}

	registrationDeadline := startTime.Add(-24 * time.Hour)
	event := &models.Event{
		CommunityID:          community.ID,
		Title:                title,
		Description:          suggestion.Description,
		EventType:            suggestion.EventType,
		StartTime:            startTime,
		EndTime:              endTime,
		Cost:                 suggestion.EstimatedCost,
		RegistrationDeadline: &registrationDeadline,
	}

	eventID, err := s.events.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	event.ID = eventID

	if err := s.suggestions.MarkImplemented(ctx, suggestion.ID, eventID); err != nil {
		return nil, fmt.Errorf("failed to mark suggestion implemented: %w", err)
	}

	if err := s.store.Delete(ctx, kv.SuggestionCacheKey(community.ID)); err != nil {
		s.logger.Warn().Err(err).Int64("communityID", community.ID).Msg("Failed to invalidate suggestion cache")
	}

	updated, err := s.suggestions.GetByID(ctx, suggestion.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload suggestion: %w", err)
	}

	s.logger.Info().
		Int64("suggestionID", suggestion.ID).
		Int64("eventID", eventID).
		Msg("Suggestion implemented")

	return &dto.ImplementResponse{Event: event, Suggestion: updated}, nil
}

// Review applies a manual approve or reject decision to a pending suggestion.
func (s *suggestionServiceImpl) Review(ctx context.Context, suggestionID int64, principal appauth.Principal, decision string) (*models.Suggestion, error) {
	suggestion, _, err := s.loadForTransition(ctx, suggestionID, principal)
	if err != nil {
		return nil, err
	}

	if !suggestion.CanReview() {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("Suggestion in status %s cannot be reviewed", suggestion.Status))
	}

	status := models.SuggestionStatus(decision)
	if status != models.SuggestionApproved && status != models.SuggestionRejected {
		return nil, apperrors.NewValidationError("Decision must be APPROVED or REJECTED")
	}

	if err := s.suggestions.UpdateStatus(ctx, suggestion.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update suggestion status: %w", err)
	}

	return s.suggestions.GetByID(ctx, suggestion.ID)
}
