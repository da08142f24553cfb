package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hivenest/communio/internal/app/models"
	"github.com/hivenest/communio/internal/app/repositories"
	"github.com/hivenest/communio/internal/db"
	"github.com/hivenest/communio/internal/pkg/auth"
	"github.com/hivenest/communio/internal/pkg/dberrors"
)

// CreateDefaultData creates a demo owner, community and resident if they
// don't exist. Errors are collected and returned but startup proceeds
// regardless.
func CreateDefaultData(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	userRepo := repositories.NewUserRepository(database.Pool)
	communityRepo := repositories.NewCommunityRepository(database.Pool)

	lgr.Info().Msg("Checking/Creating default data (demo community)...")
	var finalErr error

	ownerEmail := "owner@communio.app"
	exists, err := userRepo.EmailExists(ctx, ownerEmail)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if demo owner exists")
		return errors.Join(finalErr, err)
	}
	if exists {
		lgr.Info().Msg("Demo data already present, skipping creation")
		return nil
	}

	hashedPassword, err := auth.HashPassword("Owner123!")
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing demo owner password")
		return errors.Join(finalErr, err)
	}

	owner := &models.User{
		Email:     ownerEmail,
		Password:  hashedPassword,
		FirstName: "Dana",
		LastName:  "Keller",
		Role:      models.RoleOwner,
	}
	ownerID, err := userRepo.Create(ctx, owner)
	if err != nil {
		// Concurrent startups race on the email unique constraint; the
		// loser treats the data as already created.
		if dberrors.IsUniqueViolation(err) {
			lgr.Info().Msg("Demo owner created by a concurrent startup, skipping")
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating demo owner")
		return errors.Join(finalErr, err)
	}

	community := &models.Community{
		Name:    "Maple Court",
		Address: "12 Maple Court",
		OwnerID: ownerID,
	}
	communityID, err := communityRepo.Create(ctx, community)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo community")
		return errors.Join(finalErr, err)
	}

	if err := userRepo.AssignCommunity(ctx, ownerID, communityID); err != nil {
		lgr.Error().Err(err).Msg("Error linking demo owner to community")
		finalErr = errors.Join(finalErr, err)
	}

	residentPassword, err := auth.HashPassword("Resident123!")
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing demo resident password")
		finalErr = errors.Join(finalErr, err)
	} else {
		resident := &models.User{
			Email:       "resident@communio.app",
			Password:    residentPassword,
			FirstName:   "Jules",
			LastName:    "Moreno",
			Role:        models.RoleResident,
			CommunityID: &communityID,
		}
		if _, err := userRepo.Create(ctx, resident); err != nil {
			lgr.Error().Err(err).Msg("Error creating demo resident")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Int64("communityID", communityID).Msg("Default demo data created")
	return finalErr
}
