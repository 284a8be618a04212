// File: internal/notification/model.go
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Event identifies what a notification is about.
type Event string

const (
	EventVisitApproved    Event = "visit_approved"
	EventVisitRejected    Event = "visit_rejected"
	EventBookingConfirmed Event = "booking_confirmed"
	EventBookingCancelled Event = "booking_cancelled"
	EventPaymentApproved  Event = "payment_approved"
	EventPaymentRejected  Event = "payment_rejected"
	EventPayoutSent       Event = "payout_sent"
	EventSaleCompleted    Event = "sale_completed"
)

// messages maps each event to its user-facing text.
var messages = map[Event]string{
	EventVisitApproved:    "Your visit request has been approved.",
	EventVisitRejected:    "Your visit request has been rejected.",
	EventBookingConfirmed: "Your booking has been confirmed by the seller.",
	EventBookingCancelled: "A booking you are involved in has been cancelled.",
	EventPaymentApproved:  "Your payment has been approved.",
	EventPaymentRejected:  "Your payment has been rejected.",
	EventPayoutSent:       "Your payout has been sent.",
	EventSaleCompleted:    "The sale has been completed.",
}

// Notification represents a user notification. Notifications are
// immutable once created except for the read flag.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_notification_user_read" json:"user_id"`
	Event     Event      `gorm:"type:varchar(50);not null" json:"event"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	RefType   string     `gorm:"type:varchar(30)" json:"ref_type,omitempty"`
	RefID     *uuid.UUID `gorm:"type:uuid" json:"ref_id,omitempty"`
	IsRead    bool       `gorm:"not null;default:false;index:idx_notification_user_read" json:"is_read"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
