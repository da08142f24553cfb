package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	appauth "github.com/hivenest/communio/internal/app/auth"
	"github.com/hivenest/communio/internal/app/models/dto"
	"github.com/hivenest/communio/internal/pkg/apperrors"
	"github.com/hivenest/communio/internal/seed"
)

// SeederAdmin is the administrative slice of the seeder the community
// service exposes.
type SeederAdmin interface {
	GetSeedingInfo(ctx context.Context, communityID int64) (*seed.Record, error)
	ClearSeeding(ctx context.Context, communityID int64) error
}

// CommunityService exposes the community-scoped seeding operations.
type CommunityService interface {
	GetSeedingInfo(ctx context.Context, communityID int64, principal appauth.Principal) (*dto.SeedingInfo, error)
	ClearSeeding(ctx context.Context, communityID int64, principal appauth.Principal) error
}

type communityServiceImpl struct {
	communities CommunityReader
	seeder      SeederAdmin
	logger      zerolog.Logger
}

// NewCommunityService creates a new CommunityService.
func NewCommunityService(communities CommunityReader, seeder SeederAdmin, logger zerolog.Logger) CommunityService {
	return &communityServiceImpl{communities: communities, seeder: seeder, logger: logger}
}

// GetSeedingInfo returns the community's seeding record, or nil when the
// community has not been seeded. Members only.
func (s *communityServiceImpl) GetSeedingInfo(ctx context.Context, communityID int64, principal appauth.Principal) (*dto.SeedingInfo, error) {
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

	record, err := s.seeder.GetSeedingInfo(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seeding record: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	return &dto.SeedingInfo{
		SetName:         record.SetName,
		SetIndex:        record.SetIndex,
		FacilitiesAdded: record.FacilitiesAdded,
		EventsAdded:     record.EventsAdded,
		SeededAt:        record.SeededAt,
	}, nil
}

// ClearSeeding removes the community's demonstration content and its seeding
// record. Owner only; intended for resets.
func (s *communityServiceImpl) ClearSeeding(ctx context.Context, communityID int64, principal appauth.Principal) error {
	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return fmt.Errorf("failed to load community: %w", err)
	}
	if community == nil {
		return apperrors.NewCustomError(apperrors.ErrCommunityNotFound, "Community not found")
	}
	if community.OwnerID != principal.UserID {
		return apperrors.NewForbiddenError("Only the community owner may clear seeded content")
	}

	if err := s.seeder.ClearSeeding(ctx, communityID); err != nil {
		return fmt.Errorf("failed to clear seeded content: %w", err)
	}

	s.logger.Info().Int64("communityID", communityID).Msg("Seeded content cleared")
	return nil
}
