package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/verifai/proctor-backend/internal/model"
	"github.com/verifai/proctor-backend/internal/repository"
)

// AdminService covers the proctor dashboard: account management and the
// integrity log views.
type AdminService struct {
	users *repository.UserRepository
	auth  *AuthService
	log   zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(users *repository.UserRepository, auth *AuthService, log zerolog.Logger) *AdminService {
	return &AdminService{
		users: users,
		auth:  auth,
		log:   log.With().Str("component", "admin_service").Logger(),
	}
}

// ListUsers returns accounts with pagination.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	return s.users.ListPaginated(ctx, limit, offset)
}

// CreateUser registers an account (e.g. bulk-uploading a class list).
func (s *AdminService) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  req.IsSuperuser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetUserStatus activates or deactivates an account. Deactivating also
// kills any live session so a banned student is cut off immediately.
func (s *AdminService) SetUserStatus(ctx context.Context, userID int, isActive bool) error {
	if err := s.users.UpdateStatus(ctx, userID, isActive); err != nil {
		return err
	}
	if !isActive {
		if err := s.auth.ResetStudentSession(ctx, userID); err != nil {
			s.log.Warn().Err(err).Int("user_id", userID).Msg("Session reset after ban failed")
		}
		s.log.Info().Int("user_id", userID).Msg("Account deactivated")
	}
	return nil
}

// GetUser fetches one account.
func (s *AdminService) GetUser(ctx context.Context, userID int) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}
