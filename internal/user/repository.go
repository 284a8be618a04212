// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/platform/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for user data operations.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query UserListQuery) ([]User, *common.Pagination, error)
	CountByRole(ctx context.Context, role common.Role) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return common.ErrConflict.WithDetails("A user with this email already exists.")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) Update(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes a user and its dependent rows in one transaction. The child
// tables are addressed by name rather than by their Go models: the owning
// packages import this one, not the other way around.
//
// The booking cascade-reset rule runs here as an explicit step: properties
// left with no active booking after a tenant's bookings disappear revert to
// AVAILABLE before the rows are removed.
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u User
		if err := database.LockForUpdate(tx).First(&u, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("User not found.")
			}
			return err
		}

		switch u.Role {
		case common.RoleTenant:
			if err := tx.Exec(`
				UPDATE properties SET status = 'AVAILABLE', updated_at = CURRENT_TIMESTAMP
				WHERE status = 'BOOKED'
				  AND id IN (
					SELECT property_id FROM bookings
					WHERE tenant_id = ? AND status IN ('PENDING','CONFIRMED'))
				  AND NOT EXISTS (
					SELECT 1 FROM bookings b2
					WHERE b2.property_id = properties.id
					  AND b2.tenant_id <> ?
					  AND b2.status IN ('PENDING','CONFIRMED'))`,
				id, id).Error; err != nil {
				return fmt.Errorf("failed to reset booked properties: %w", err)
			}
			if err := tx.Exec(`DELETE FROM payments WHERE booking_id IN (SELECT id FROM bookings WHERE tenant_id = ?)`, id).Error; err != nil {
				return err
			}
			if err := tx.Exec(`DELETE FROM bookings WHERE tenant_id = ?`, id).Error; err != nil {
				return err
			}
			if err := tx.Exec(`DELETE FROM visit_requests WHERE tenant_id = ?`, id).Error; err != nil {
				return err
			}

		case common.RoleSeller:
			if err := tx.Exec(`DELETE FROM payments WHERE booking_id IN (
				SELECT id FROM bookings WHERE property_id IN (SELECT id FROM properties WHERE seller_id = ?))`, id).Error; err != nil {
				return err
			}
			if err := tx.Exec(`DELETE FROM bookings WHERE property_id IN (SELECT id FROM properties WHERE seller_id = ?)`, id).Error; err != nil {
				return err
			}
			if err := tx.Exec(`DELETE FROM visit_requests WHERE property_id IN (SELECT id FROM properties WHERE seller_id = ?)`, id).Error; err != nil {
				return err
			}
			if err := tx.Exec(`DELETE FROM property_images WHERE property_id IN (SELECT id FROM properties WHERE seller_id = ?)`, id).Error; err != nil {
				return err
			}
			if err := tx.Exec(`DELETE FROM properties WHERE seller_id = ?`, id).Error; err != nil {
				return err
			}

		case common.RoleAgent:
			// Agent links are weak references: null them, keep the visits.
			if err := tx.Exec(`UPDATE visit_requests SET agent_id = NULL WHERE agent_id = ?`, id).Error; err != nil {
				return err
			}

		case common.RoleAdmin:
			// Approver stamps survive the admin's departure as NULL refs.
			if err := tx.Exec(`UPDATE payments SET approved_by_id = NULL WHERE approved_by_id = ?`, id).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&User{}, "id = ?", id).Error
	})
}

func (r *gormRepository) List(ctx context.Context, query UserListQuery) ([]User, *common.Pagination, error) {
	var users []User
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&User{})
	if query.Role != nil && *query.Role != "" {
		dbQuery = dbQuery.Where("role = ?", *query.Role)
	}

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count users: %w", err)
	}

	pagination := common.NewPagination(totalItems, query.Page, query.PageSize)
	err := dbQuery.Order("created_at DESC").
		Offset(query.Offset()).Limit(query.Limit()).
		Find(&users).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, pagination, nil
}

func (r *gormRepository) CountByRole(ctx context.Context, role common.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).Count(&count).Error
	return count, err
}
