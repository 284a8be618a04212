// File: internal/booking/repository.go
package booking

import (
	"context"
	"errors"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/platform/database"
	"estatehub_backend/internal/property"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines data access for bookings. Every state-changing
// method runs in a single transaction and re-reads the rows it mutates
// under lock.
type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	Confirm(ctx context.Context, id uuid.UUID) (*Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	CountByStatus(ctx context.Context, status BookingStatus) (int64, error)
	CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a GORM-backed booking repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a booking after validating the property state and the
// exclusivity rule, all under lock on the property row. A property with
// any active booking, pending or confirmed, by any tenant, is taken:
// the first create wins and later ones get a conflict.
func (r *gormRepository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prop property.Property
		if err := database.LockForUpdate(tx).First(&prop, "id = ?", booking.PropertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Property not found.")
			}
			return err
		}

		switch prop.Status {
		case property.StatusSold, property.StatusInactive:
			return common.ErrPreconditionFailed.WithDetails("This property cannot be booked in its current state.")
		case property.StatusBooked:
			return common.ErrConflict.WithDetails("This property already has a confirmed booking.")
		}

		var existing Booking
		err := tx.Where("property_id = ? AND status IN ?",
			booking.PropertyID,
			[]BookingStatus{StatusPending, StatusConfirmed}).
			First(&existing).Error
		if err == nil {
			if existing.TenantID == booking.TenantID {
				return common.ErrConflict.WithDetails("You already have an active booking for this property.")
			}
			return common.ErrConflict.WithDetails("This property already has an active booking.")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(booking).Error
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Tenant").
		First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Booking not found.")
		}
		return nil, err
	}
	return &booking, nil
}

// Confirm moves a PENDING booking to CONFIRMED and the property to
// BOOKED in the same transaction.
func (r *gormRepository) Confirm(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&booking, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Booking not found.")
			}
			return err
		}
		if !CanTransition(booking.Status, StatusConfirmed) {
			return common.ErrPreconditionFailed.WithDetails("Only a pending booking can be confirmed.")
		}

		var prop property.Property
		if err := database.LockForUpdate(tx).First(&prop, "id = ?", booking.PropertyID).Error; err != nil {
			return err
		}
		if !property.CanTransition(prop.Status, property.StatusBooked) {
			return common.ErrPreconditionFailed.WithDetails("The property is no longer available for booking.")
		}

		if err := tx.Model(&Booking{}).Where("id = ?", id).
			Update("status", StatusConfirmed).Error; err != nil {
			return err
		}
		if err := tx.Model(&property.Property{}).Where("id = ?", booking.PropertyID).
			Update("status", property.StatusBooked).Error; err != nil {
			return err
		}
		booking.Status = StatusConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Cancel moves an active booking to CANCELLED and resets the property
// to AVAILABLE if no other active booking holds it.
func (r *gormRepository) Cancel(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&booking, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Booking not found.")
			}
			return err
		}
		if !CanTransition(booking.Status, StatusCancelled) {
			return common.ErrPreconditionFailed.WithDetails("Only a pending or confirmed booking can be cancelled.")
		}

		if err := tx.Model(&Booking{}).Where("id = ?", id).
			Update("status", StatusCancelled).Error; err != nil {
			return err
		}
		booking.Status = StatusCancelled
		return resetPropertyIfIdle(tx, booking.PropertyID, id)
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Delete removes the booking and its payment, resetting the property
// first so the row is never orphaned mid-transaction.
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking Booking
		if err := database.LockForUpdate(tx).First(&booking, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Booking not found.")
			}
			return err
		}

		if err := resetPropertyIfIdle(tx, booking.PropertyID, id); err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM payments WHERE booking_id = ?`, id).Error; err != nil {
			return err
		}
		return tx.Delete(&Booking{}, "id = ?", id).Error
	})
}

// resetPropertyIfIdle flips a BOOKED property back to AVAILABLE when no
// active booking other than excludeBookingID remains. Callers must hold
// the transaction; the property row is locked here.
func resetPropertyIfIdle(tx *gorm.DB, propertyID, excludeBookingID uuid.UUID) error {
	var prop property.Property
	if err := database.LockForUpdate(tx).First(&prop, "id = ?", propertyID).Error; err != nil {
		return err
	}
	if prop.Status != property.StatusBooked {
		return nil
	}

	var remaining int64
	err := tx.Model(&Booking{}).
		Where("property_id = ? AND id != ? AND status IN ?",
			propertyID, excludeBookingID,
			[]BookingStatus{StatusPending, StatusConfirmed}).
		Count(&remaining).Error
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}
	return tx.Model(&property.Property{}).Where("id = ?", propertyID).
		Update("status", property.StatusAvailable).Error
}

func (r *gormRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	tx := r.db.WithContext(ctx).Model(&Booking{}).Where("tenant_id = ?", tenantID)
	return r.list(tx, query)
}

func (r *gormRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	tx := r.db.WithContext(ctx).Model(&Booking{}).
		Where("property_id IN (SELECT id FROM properties WHERE seller_id = ?)", sellerID)
	return r.list(tx, query)
}

func (r *gormRepository) list(tx *gorm.DB, query BookingListQuery) ([]Booking, int64, error) {
	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}
	if query.PropertyID != "" {
		propertyID, err := uuid.Parse(query.PropertyID)
		if err != nil {
			return nil, 0, common.ErrBadRequest.WithDetails("Invalid property_id filter.")
		}
		tx = tx.Where("property_id = ?", propertyID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []Booking
	err := tx.Preload("Property").
		Preload("Tenant").
		Order("created_at DESC").
		Offset(query.Offset()).
		Limit(query.Limit()).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *gormRepository) CountByStatus(ctx context.Context, status BookingStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Booking{}).
		Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *gormRepository) CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Booking{}).
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]BookingStatus{StatusPending, StatusConfirmed}).
		Count(&count).Error
	return count, err
}
