// File: internal/property/repository.go
package property

import (
	"context"
	"errors"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/platform/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines data access for properties.
type Repository interface {
	Create(ctx context.Context, prop *Property) error
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindBySlug(ctx context.Context, slugVal string) (*Property, error)
	Search(ctx context.Context, query PropertySearchQuery) ([]Property, int64, error)
	Update(ctx context.Context, prop *Property) error
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*Property, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*Property, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, status PropertyStatus) (int64, error)
	CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a GORM-backed property repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, prop *Property) error {
	err := r.db.WithContext(ctx).Create(prop).Error
	if err != nil && database.IsUniqueViolation(err) {
		return common.ErrConflict.WithDetails("A property with this slug already exists.")
	}
	return err
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	var prop Property
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Images").
		First(&prop, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Property not found.")
		}
		return nil, err
	}
	return &prop, nil
}

func (r *gormRepository) FindBySlug(ctx context.Context, slugVal string) (*Property, error) {
	var prop Property
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Images").
		First(&prop, "slug = ?", slugVal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Property not found.")
		}
		return nil, err
	}
	return &prop, nil
}

func (r *gormRepository) Search(ctx context.Context, query PropertySearchQuery) ([]Property, int64, error) {
	var props []Property
	var total int64

	tx := r.db.WithContext(ctx).Model(&Property{})

	if query.City != "" {
		tx = tx.Where("LOWER(city) = LOWER(?)", query.City)
	}
	if query.Type != "" {
		tx = tx.Where("type = ?", query.Type)
	}
	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}
	if query.SellerID != "" {
		sellerID, err := uuid.Parse(query.SellerID)
		if err != nil {
			return nil, 0, common.ErrBadRequest.WithDetails("Invalid seller_id filter.")
		}
		tx = tx.Where("seller_id = ?", sellerID)
	}
	if query.Featured != nil {
		tx = tx.Where("is_featured = ?", *query.Featured)
	}
	if query.MaxPrice != "" {
		maxPrice, err := decimal.NewFromString(query.MaxPrice)
		if err != nil {
			return nil, 0, common.ErrBadRequest.WithDetails("Invalid max_price filter.")
		}
		tx = tx.Where("price <= ?", maxPrice)
	}

	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := tx.Preload("Images").
		Order("is_featured DESC, created_at DESC").
		Offset(query.Offset()).
		Limit(query.Limit()).
		Find(&props).Error
	if err != nil {
		return nil, 0, err
	}
	return props, total, nil
}

func (r *gormRepository) Update(ctx context.Context, prop *Property) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Property
		if err := database.LockForUpdate(tx).First(&current, "id = ?", prop.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Property not found.")
			}
			return err
		}
		if current.Status == StatusSold {
			return common.ErrPreconditionFailed.WithDetails("A sold property can no longer be edited.")
		}
		return tx.Model(&Property{}).Where("id = ?", prop.ID).
			Updates(map[string]interface{}{
				"title":       prop.Title,
				"slug":        prop.Slug,
				"address":     prop.Address,
				"city":        prop.City,
				"description": prop.Description,
				"price":       prop.Price,
			}).Error
	})
}

func (r *gormRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*Property, error) {
	var prop Property
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&prop, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Property not found.")
			}
			return err
		}
		if prop.Status == StatusSold && featured {
			return common.ErrPreconditionFailed.WithDetails("A sold property cannot be featured.")
		}
		prop.IsFeatured = featured
		return tx.Model(&Property{}).Where("id = ?", id).
			Update("is_featured", featured).Error
	})
	if err != nil {
		return nil, err
	}
	return &prop, nil
}

func (r *gormRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Property, error) {
	var prop Property
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&prop, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Property not found.")
			}
			return err
		}
		target := StatusInactive
		if active {
			target = StatusAvailable
		}
		if prop.Status == target {
			return nil
		}
		if !CanTransition(prop.Status, target) {
			return common.ErrPreconditionFailed.WithDetails(
				"Property status " + string(prop.Status) + " cannot change to " + string(target) + ".")
		}
		prop.Status = target
		return tx.Model(&Property{}).Where("id = ?", id).
			Update("status", target).Error
	})
	if err != nil {
		return nil, err
	}
	return &prop, nil
}

// Delete removes the property and everything that references it.
// Payments hang off bookings, so they go first.
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prop Property
		if err := database.LockForUpdate(tx).First(&prop, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Property not found.")
			}
			return err
		}
		if err := tx.Exec(
			`DELETE FROM payments WHERE booking_id IN (SELECT id FROM bookings WHERE property_id = ?)`, id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM bookings WHERE property_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM visit_requests WHERE property_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM property_images WHERE property_id = ?`, id).Error; err != nil {
			return err
		}
		return tx.Delete(&Property{}, "id = ?", id).Error
	})
}

func (r *gormRepository) CountByStatus(ctx context.Context, status PropertyStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Property{}).
		Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *gormRepository) CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Property{}).
		Where("seller_id = ?", sellerID).Count(&count).Error
	return count, err
}
