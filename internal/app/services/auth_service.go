package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hivenest/communio/internal/app/models"
	"github.com/hivenest/communio/internal/app/models/dto"
	"github.com/hivenest/communio/internal/pkg/apperrors"
	"github.com/hivenest/communio/internal/pkg/auth"
)

// UserReader is the slice of user persistence the auth service needs.
type UserReader interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService authenticates users and issues access tokens.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

type authServiceImpl struct {
	users      UserReader
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserReader, jwtService *auth.JWTService, logger zerolog.Logger) AuthService {
	return &authServiceImpl{users: users, jwtService: jwtService, logger: logger}
}

func (s *authServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Debug().Int64("userID", user.ID).Msg("User logged in")

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		UserID:      user.ID,
		Role:        string(user.Role),
	}, nil
}
