// File: internal/payment/repository.go
package payment

import (
	"context"
	"errors"
	"time"

	"estatehub_backend/internal/booking"
	"estatehub_backend/internal/common"
	"estatehub_backend/internal/platform/database"
	"estatehub_backend/internal/property"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines data access for payments. Every state-changing
// method runs in a single transaction and re-reads the rows it mutates
// under lock.
type Repository interface {
	Initiate(ctx context.Context, tenantID uuid.UUID, bookingID uuid.UUID, amount decimal.Decimal) (*Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	Approve(ctx context.Context, id uuid.UUID, approverID uuid.UUID, feeRate decimal.Decimal) (*Payment, error)
	Reject(ctx context.Context, id uuid.UUID) (*Payment, error)
	MarkSellerPaid(ctx context.Context, id uuid.UUID) (*Payment, error)
	CompleteSale(ctx context.Context, bookingID uuid.UUID, approverID uuid.UUID, amount *decimal.Decimal, feeRate decimal.Decimal) (*Payment, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, query PaymentListQuery) ([]Payment, int64, error)
	ListAll(ctx context.Context, query PaymentListQuery) ([]Payment, int64, error)
	CountByStatus(ctx context.Context, status PaymentStatus) (int64, error)
	SumPlatformCut(ctx context.Context) (decimal.Decimal, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a GORM-backed payment repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Initiate creates a PENDING payment for a confirmed booking owned by
// the tenant. One payment per booking; the unique index is the backstop
// for the in-transaction check.
func (r *gormRepository) Initiate(ctx context.Context, tenantID uuid.UUID, bookingID uuid.UUID, amount decimal.Decimal) (*Payment, error) {
	var pmt Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bk booking.Booking
		if err := database.LockForUpdate(tx).First(&bk, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Booking not found.")
			}
			return err
		}
		if bk.TenantID != tenantID {
			return common.ErrForbidden.WithDetails("You do not own this booking.")
		}
		if bk.Status != booking.StatusConfirmed {
			return common.ErrPreconditionFailed.WithDetails("Payments can only be made against a confirmed booking.")
		}

		var existing int64
		if err := tx.Model(&Payment{}).Where("booking_id = ?", bookingID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return common.ErrConflict.WithDetails("A payment already exists for this booking.")
		}

		pmt = Payment{
			BookingID: bookingID,
			TenantID:  tenantID,
			Amount:    amount.Round(2),
			Status:    StatusPending,
		}
		if err := tx.Create(&pmt).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return common.ErrConflict.WithDetails("A payment already exists for this booking.")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pmt, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var pmt Payment
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Preload("Booking.Property").
		Preload("ApprovedBy").
		First(&pmt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Payment not found.")
		}
		return nil, err
	}
	return &pmt, nil
}

// Approve moves a PENDING payment to APPROVED, computes the fee split
// and stamps the approver. A FOR_SALE property moves to BOOKED in the
// same transaction if it has not already.
func (r *gormRepository) Approve(ctx context.Context, id uuid.UUID, approverID uuid.UUID, feeRate decimal.Decimal) (*Payment, error) {
	var pmt Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&pmt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Payment not found.")
			}
			return err
		}
		if pmt.Status != StatusPending {
			return common.ErrPreconditionFailed.WithDetails("Only a pending payment can be approved.")
		}

		cut, sellerAmount := SplitAmount(pmt.Amount, feeRate)
		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":         StatusApproved,
			"platform_cut":   cut,
			"seller_amount":  sellerAmount,
			"approved_by_id": approverID,
			"approved_at":    now,
		}
		if err := tx.Model(&Payment{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		pmt.Status = StatusApproved
		pmt.PlatformCut = cut
		pmt.SellerAmount = sellerAmount
		pmt.ApprovedByID = &approverID
		pmt.ApprovedAt = &now

		var bk booking.Booking
		if err := tx.First(&bk, "id = ?", pmt.BookingID).Error; err != nil {
			return err
		}
		var prop property.Property
		if err := database.LockForUpdate(tx).First(&prop, "id = ?", bk.PropertyID).Error; err != nil {
			return err
		}
		if prop.Type == property.TypeForSale && property.CanTransition(prop.Status, property.StatusBooked) {
			if err := tx.Model(&property.Property{}).Where("id = ?", prop.ID).
				Update("status", property.StatusBooked).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pmt, nil
}

// Reject moves a PENDING payment to REJECTED. The approver stamp stays
// NULL: ApprovedByID and ApprovedAt are set only when a payment is
// approved.
func (r *gormRepository) Reject(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var pmt Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&pmt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Payment not found.")
			}
			return err
		}
		if pmt.Status != StatusPending {
			return common.ErrPreconditionFailed.WithDetails("Only a pending payment can be rejected.")
		}

		if err := tx.Model(&Payment{}).Where("id = ?", id).
			Update("status", StatusRejected).Error; err != nil {
			return err
		}
		pmt.Status = StatusRejected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pmt, nil
}

// MarkSellerPaid records the payout of the seller's share. Requires an
// APPROVED payment whose payout has not already been sent.
func (r *gormRepository) MarkSellerPaid(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var pmt Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&pmt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Payment not found.")
			}
			return err
		}
		if pmt.Status != StatusApproved {
			return common.ErrPreconditionFailed.WithDetails("Only an approved payment can be paid out.")
		}
		if pmt.SellerAmountSent {
			return common.ErrPreconditionFailed.WithDetails("The seller payout has already been sent.")
		}

		now := time.Now().UTC()
		err := tx.Model(&Payment{}).Where("id = ?", id).Updates(map[string]interface{}{
			"seller_amount_sent":    true,
			"seller_amount_sent_at": now,
		}).Error
		if err != nil {
			return err
		}
		pmt.SellerAmountSent = true
		pmt.SellerAmountSentAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pmt, nil
}

// CompleteSale finalizes a sale in one transaction: it creates an
// already-approved payment for the confirmed booking, completes the
// booking and marks the property SOLD. A sold property cannot stay
// featured.
func (r *gormRepository) CompleteSale(ctx context.Context, bookingID uuid.UUID, approverID uuid.UUID, amount *decimal.Decimal, feeRate decimal.Decimal) (*Payment, error) {
	var pmt Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bk booking.Booking
		if err := database.LockForUpdate(tx).First(&bk, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Booking not found.")
			}
			return err
		}
		if bk.Status != booking.StatusConfirmed {
			return common.ErrPreconditionFailed.WithDetails("Only a confirmed booking can complete a sale.")
		}

		var prop property.Property
		if err := database.LockForUpdate(tx).First(&prop, "id = ?", bk.PropertyID).Error; err != nil {
			return err
		}
		if prop.Type != property.TypeForSale {
			return common.ErrPreconditionFailed.WithDetails("Only a FOR_SALE property can be sold.")
		}
		if !property.CanTransition(prop.Status, property.StatusSold) {
			return common.ErrPreconditionFailed.WithDetails("The property cannot be sold in its current state.")
		}

		var existing int64
		if err := tx.Model(&Payment{}).Where("booking_id = ?", bookingID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return common.ErrConflict.WithDetails("A payment already exists for this booking.")
		}

		saleAmount := prop.Price
		if amount != nil {
			saleAmount = amount.Round(2)
		}
		cut, sellerAmount := SplitAmount(saleAmount, feeRate)
		now := time.Now().UTC()
		pmt = Payment{
			BookingID:    bookingID,
			TenantID:     bk.TenantID,
			Amount:       saleAmount,
			PlatformCut:  cut,
			SellerAmount: sellerAmount,
			Status:       StatusApproved,
			ApprovedByID: &approverID,
			ApprovedAt:   &now,
		}
		if err := tx.Create(&pmt).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return common.ErrConflict.WithDetails("A payment already exists for this booking.")
			}
			return err
		}

		if err := tx.Model(&booking.Booking{}).Where("id = ?", bookingID).
			Update("status", booking.StatusCompleted).Error; err != nil {
			return err
		}
		return tx.Model(&property.Property{}).Where("id = ?", prop.ID).
			Updates(map[string]interface{}{
				"status":      property.StatusSold,
				"is_featured": false,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &pmt, nil
}

func (r *gormRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, query PaymentListQuery) ([]Payment, int64, error) {
	tx := r.db.WithContext(ctx).Model(&Payment{}).Where("tenant_id = ?", tenantID)
	return r.list(tx, query)
}

func (r *gormRepository) ListAll(ctx context.Context, query PaymentListQuery) ([]Payment, int64, error) {
	tx := r.db.WithContext(ctx).Model(&Payment{})
	return r.list(tx, query)
}

func (r *gormRepository) list(tx *gorm.DB, query PaymentListQuery) ([]Payment, int64, error) {
	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []Payment
	err := tx.Preload("Booking").
		Preload("Booking.Property").
		Order("created_at DESC").
		Offset(query.Offset()).
		Limit(query.Limit()).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *gormRepository) CountByStatus(ctx context.Context, status PaymentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Payment{}).
		Where("status = ?", status).Count(&count).Error
	return count, err
}

// SumPlatformCut totals the platform's share across approved payments.
func (r *gormRepository) SumPlatformCut(ctx context.Context) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).Model(&Payment{}).
		Where("status = ?", StatusApproved).
		Select("SUM(platform_cut)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
