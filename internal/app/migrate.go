// File: internal/app/migrate.go
package app

import (
	"estatehub_backend/internal/booking"
	"estatehub_backend/internal/notification"
	"estatehub_backend/internal/payment"
	"estatehub_backend/internal/property"
	"estatehub_backend/internal/user"
	"estatehub_backend/internal/visit"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for every model. Order
// follows the foreign-key graph.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&property.Property{},
		&property.PropertyImage{},
		&visit.VisitRequest{},
		&booking.Booking{},
		&payment.Payment{},
		&notification.Notification{},
	)
}
