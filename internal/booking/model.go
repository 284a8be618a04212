// File: internal/booking/model.go
package booking

import (
	"time"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/property"
	"estatehub_backend/internal/user"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusCompleted BookingStatus = "COMPLETED"
)

// statusTransitions is the closed edge set of the booking lifecycle.
// CANCELLED and COMPLETED are terminal.
var statusTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
}

// CanTransition reports whether from -> to is a legal booking transition.
func CanTransition(from, to BookingStatus) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsActive reports whether the booking still occupies its property.
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking is a tenant's reservation of a property.
type Booking struct {
	common.BaseModel
	PropertyID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Property   *property.Property `gorm:"foreignKey:PropertyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TenantID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	Tenant     *user.User         `gorm:"foreignKey:TenantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	StartDate  time.Time          `gorm:"type:date;not null"`
	EndDate    *time.Time         `gorm:"type:date"`
	Status     BookingStatus      `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	Notes      string             `gorm:"type:text"`
}

func (Booking) TableName() string {
	return "bookings"
}

// --- DTOs ---

type CreateBookingRequest struct {
	PropertyID uuid.UUID `json:"property_id" binding:"required"`
	StartDate  string    `json:"start_date" binding:"required"`
	EndDate    *string   `json:"end_date,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

type BookingListQuery struct {
	common.PaginationQuery
	Status     string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
	PropertyID string `form:"property_id"`
}

type BookingResponse struct {
	ID         uuid.UUID                  `json:"id"`
	PropertyID uuid.UUID                  `json:"property_id"`
	Property   *property.PropertyResponse `json:"property,omitempty"`
	TenantID   uuid.UUID                  `json:"tenant_id"`
	Tenant     *user.UserResponse         `json:"tenant,omitempty"`
	StartDate  string                     `json:"start_date"`
	EndDate    *string                    `json:"end_date,omitempty"`
	Status     BookingStatus              `json:"status"`
	Notes      string                     `json:"notes,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

// ToBookingResponse converts a Booking model to its response DTO.
func ToBookingResponse(b *Booking) BookingResponse {
	resp := BookingResponse{
		ID:         b.ID,
		PropertyID: b.PropertyID,
		TenantID:   b.TenantID,
		StartDate:  b.StartDate.Format("2006-01-02"),
		Status:     b.Status,
		Notes:      b.Notes,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
	if b.EndDate != nil {
		endDate := b.EndDate.Format("2006-01-02")
		resp.EndDate = &endDate
	}
	if b.Property != nil {
		propResp := property.ToPropertyResponse(b.Property)
		resp.Property = &propResp
	}
	if b.Tenant != nil {
		tenantResp := user.ToUserResponse(b.Tenant)
		resp.Tenant = &tenantResp
	}
	return resp
}
