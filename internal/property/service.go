// File: internal/property/service.go
package property

import (
	"context"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/user"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service defines the property business operations.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, actorRole common.Role, req CreatePropertyRequest) (*Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)
	GetBySlug(ctx context.Context, slugVal string) (*Property, error)
	Search(ctx context.Context, query PropertySearchQuery) ([]Property, int64, error)
	Update(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID, req UpdatePropertyRequest) (*Property, error)
	SetFeatured(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID, featured bool) (*Property, error)
	SetActive(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID, active bool) (*Property, error)
	Delete(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) error
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	userRepo user.Repository
	logger   *zap.Logger
}

// NewService creates a property service.
func NewService(repo Repository, userRepo user.Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		userRepo: userRepo,
		logger:   logger.Named("PropertyService"),
	}
}

var _ Service = (*ServiceImplementation)(nil)

// makeSlug builds a URL slug unique per listing. The uuid suffix keeps
// identical titles from colliding.
func makeSlug(title string, id uuid.UUID) string {
	return slug.Make(title) + "-" + id.String()[:8]
}

// ownerOrAdmin enforces that sellers only touch their own listings.
func ownerOrAdmin(prop *Property, actorID uuid.UUID, actorRole common.Role) error {
	if actorRole == common.RoleAdmin {
		return nil
	}
	if prop.SellerID != actorID {
		return common.ErrForbidden.WithDetails("You do not own this property.")
	}
	return nil
}

func (s *ServiceImplementation) Create(ctx context.Context, actorID uuid.UUID, actorRole common.Role, req CreatePropertyRequest) (*Property, error) {
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return nil, common.ErrBadRequest.WithDetails("Price must be greater than zero.")
	}

	sellerID := actorID
	if actorRole == common.RoleAdmin && req.SellerID != nil {
		seller, err := s.userRepo.FindByID(ctx, *req.SellerID)
		if err != nil {
			return nil, err
		}
		if seller.Role != common.RoleSeller {
			return nil, common.ErrBadRequest.WithDetails("seller_id must reference a SELLER account.")
		}
		sellerID = seller.ID
	}

	prop := &Property{
		SellerID:    sellerID,
		Title:       req.Title,
		Address:     req.Address,
		City:        req.City,
		Description: req.Description,
		Type:        req.Type,
		Price:       req.Price.Round(2),
		Status:      StatusAvailable,
	}
	prop.ID = uuid.New()
	prop.Slug = makeSlug(req.Title, prop.ID)
	for i, url := range req.ImageURLs {
		prop.Images = append(prop.Images, PropertyImage{
			ID:         uuid.New(),
			PropertyID: prop.ID,
			ImageURL:   url,
			SortOrder:  i,
		})
	}

	if err := s.repo.Create(ctx, prop); err != nil {
		return nil, err
	}
	s.logger.Info("Property created",
		zap.String("propertyID", prop.ID.String()),
		zap.String("sellerID", sellerID.String()),
		zap.String("type", string(prop.Type)))
	return s.repo.FindByID(ctx, prop.ID)
}

func (s *ServiceImplementation) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) GetBySlug(ctx context.Context, slugVal string) (*Property, error) {
	return s.repo.FindBySlug(ctx, slugVal)
}

func (s *ServiceImplementation) Search(ctx context.Context, query PropertySearchQuery) ([]Property, int64, error) {
	return s.repo.Search(ctx, query)
}

func (s *ServiceImplementation) Update(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID, req UpdatePropertyRequest) (*Property, error) {
	prop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownerOrAdmin(prop, actorID, actorRole); err != nil {
		return nil, err
	}

	if req.Title != nil {
		prop.Title = *req.Title
		prop.Slug = makeSlug(*req.Title, prop.ID)
	}
	if req.Address != nil {
		prop.Address = *req.Address
	}
	if req.City != nil {
		prop.City = *req.City
	}
	if req.Description != nil {
		prop.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.LessThanOrEqual(decimal.Zero) {
			return nil, common.ErrBadRequest.WithDetails("Price must be greater than zero.")
		}
		prop.Price = req.Price.Round(2)
	}

	if err := s.repo.Update(ctx, prop); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) SetFeatured(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID, featured bool) (*Property, error) {
	prop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownerOrAdmin(prop, actorID, actorRole); err != nil {
		return nil, err
	}

	prop, err = s.repo.SetFeatured(ctx, id, featured)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Property featured flag changed",
		zap.String("propertyID", id.String()),
		zap.String("actorID", actorID.String()),
		zap.Bool("featured", featured))
	return prop, nil
}

func (s *ServiceImplementation) SetActive(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID, active bool) (*Property, error) {
	prop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownerOrAdmin(prop, actorID, actorRole); err != nil {
		return nil, err
	}
	return s.repo.SetActive(ctx, id, active)
}

func (s *ServiceImplementation) Delete(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) error {
	prop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := ownerOrAdmin(prop, actorID, actorRole); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Property deleted with its visits, bookings and payments",
		zap.String("propertyID", id.String()),
		zap.String("actorID", actorID.String()))
	return nil
}
