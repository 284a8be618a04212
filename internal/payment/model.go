// File: internal/payment/model.go
package payment

import (
	"time"

	"estatehub_backend/internal/booking"
	"estatehub_backend/internal/common"
	"estatehub_backend/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the review state of a payment.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusApproved PaymentStatus = "APPROVED"
	StatusRejected PaymentStatus = "REJECTED"
)

// Payment records a tenant's payment for a booking. The unique index on
// BookingID enforces at most one payment per booking at the database
// level, backing up the application check.
type Payment struct {
	common.BaseModel
	BookingID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	Booking            *booking.Booking `gorm:"foreignKey:BookingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TenantID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	Amount             decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	PlatformCut        decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0"`
	SellerAmount       decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0"`
	Status             PaymentStatus    `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	ApprovedByID       *uuid.UUID       `gorm:"type:uuid"`
	ApprovedBy         *user.User       `gorm:"foreignKey:ApprovedByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	ApprovedAt         *time.Time
	SellerAmountSent   bool `gorm:"not null;default:false"`
	SellerAmountSentAt *time.Time
}

func (Payment) TableName() string {
	return "payments"
}

// SplitAmount divides a payment between the platform and the seller.
// The cut is rounded to cents and the seller gets the remainder, so the
// two always sum back to the original amount exactly.
func SplitAmount(amount, feeRate decimal.Decimal) (cut, sellerAmount decimal.Decimal) {
	cut = amount.Mul(feeRate).Round(2)
	sellerAmount = amount.Sub(cut)
	return cut, sellerAmount
}

// --- DTOs ---

type InitiatePaymentRequest struct {
	BookingID uuid.UUID       `json:"booking_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

type CompleteSaleRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type PaymentListQuery struct {
	common.PaginationQuery
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

type PaymentResponse struct {
	ID                 uuid.UUID                `json:"id"`
	BookingID          uuid.UUID                `json:"booking_id"`
	Booking            *booking.BookingResponse `json:"booking,omitempty"`
	TenantID           uuid.UUID                `json:"tenant_id"`
	Amount             decimal.Decimal          `json:"amount"`
	PlatformCut        decimal.Decimal          `json:"platform_cut"`
	SellerAmount       decimal.Decimal          `json:"seller_amount"`
	Status             PaymentStatus            `json:"status"`
	ApprovedByID       *uuid.UUID               `json:"approved_by_id,omitempty"`
	ApprovedAt         *time.Time               `json:"approved_at,omitempty"`
	SellerAmountSent   bool                     `json:"seller_amount_sent"`
	SellerAmountSentAt *time.Time               `json:"seller_amount_sent_at,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
}

// ToPaymentResponse converts a Payment model to its response DTO.
func ToPaymentResponse(p *Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:                 p.ID,
		BookingID:          p.BookingID,
		TenantID:           p.TenantID,
		Amount:             p.Amount,
		PlatformCut:        p.PlatformCut,
		SellerAmount:       p.SellerAmount,
		Status:             p.Status,
		ApprovedByID:       p.ApprovedByID,
		ApprovedAt:         p.ApprovedAt,
		SellerAmountSent:   p.SellerAmountSent,
		SellerAmountSentAt: p.SellerAmountSentAt,
		CreatedAt:          p.CreatedAt,
	}
	if p.Booking != nil {
		bookingResp := booking.ToBookingResponse(p.Booking)
		resp.Booking = &bookingResp
	}
	return resp
}
