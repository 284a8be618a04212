// File: internal/auth/service.go
package auth

import (
	"context"
	"time"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/user"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service defines the interface for authentication business logic.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
}

// ServiceImplementation implements the auth Service interface.
type ServiceImplementation struct {
	userRepo   user.Repository
	tokens     *JWTTokenService
	bcryptCost int
	logger     *zap.Logger
}

// NewService creates a new auth service.
func NewService(userRepo user.Repository, tokens *JWTTokenService, bcryptCost int, logger *zap.Logger) *ServiceImplementation {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &ServiceImplementation{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a seller or tenant account and issues a token.
func (s *ServiceImplementation) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role, ok := common.ParseRole(req.Role)
	if !ok || (role != common.RoleSeller && role != common.RoleTenant) {
		return nil, common.ErrBadRequest.WithDetails("Role must be SELLER or TENANT.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not process password.")
	}

	u := &user.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		s.logger.Error("Failed to issue token after registration", zap.Error(err), zap.String("userID", u.ID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not issue token.")
	}

	s.logger.Info("User registered", zap.String("userID", u.ID.String()), zap.String("role", role.String()))
	return &AuthResponse{Token: token, User: user.ToUserResponse(u)}, nil
}

// Login verifies credentials and issues a token.
func (s *ServiceImplementation) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		// Same answer for unknown email and bad password.
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}

	now := time.Now()
	u.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, u); err != nil {
		s.logger.Warn("Failed to record last login", zap.Error(err), zap.String("userID", u.ID.String()))
	}

	token, err := s.tokens.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		s.logger.Error("Failed to issue token at login", zap.Error(err), zap.String("userID", u.ID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not issue token.")
	}

	return &AuthResponse{Token: token, User: user.ToUserResponse(u)}, nil
}
