// File: internal/user/service.go
package user

import (
	"context"

	"estatehub_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service defines the interface for user-related business logic.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	AdminCreateUser(ctx context.Context, req AdminCreateUserRequest) (*User, error)
	AdminListUsers(ctx context.Context, query UserListQuery) ([]User, *common.Pagination, error)
	AdminDeleteUser(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
}

// ServiceImplementation implements the user Service interface.
type ServiceImplementation struct {
	repo       Repository
	bcryptCost int
	logger     *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, bcryptCost int, logger *zap.Logger) *ServiceImplementation {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &ServiceImplementation{repo: repo, bcryptCost: bcryptCost, logger: logger}
}

func (s *ServiceImplementation) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// AdminCreateUser creates an account with an explicit role.
func (s *ServiceImplementation) AdminCreateUser(ctx context.Context, req AdminCreateUserRequest) (*User, error) {
	role, ok := common.ParseRole(req.Role)
	if !ok {
		return nil, common.ErrBadRequest.WithDetails("Unknown role.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not process password.")
	}

	u := &User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("Admin created user",
		zap.String("userID", u.ID.String()),
		zap.String("role", role.String()),
	)
	return u, nil
}

func (s *ServiceImplementation) AdminListUsers(ctx context.Context, query UserListQuery) ([]User, *common.Pagination, error) {
	return s.repo.List(ctx, query)
}

// AdminDeleteUser removes a user and all rows it owns. Deleting yourself is
// rejected so an admin cannot lock everyone out mid-session.
func (s *ServiceImplementation) AdminDeleteUser(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	if id == actorID {
		return common.ErrPreconditionFailed.WithDetails("You cannot delete your own account.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Admin deleted user",
		zap.String("userID", id.String()),
		zap.String("actorID", actorID.String()),
	)
	return nil
}
