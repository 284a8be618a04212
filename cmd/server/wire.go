// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"log"

	"estatehub_backend/internal/app"
	"estatehub_backend/internal/auth"
	"estatehub_backend/internal/booking"
	"estatehub_backend/internal/config"
	"estatehub_backend/internal/notification"
	"estatehub_backend/internal/payment"
	"estatehub_backend/internal/platform/database"
	"estatehub_backend/internal/platform/logger"
	"estatehub_backend/internal/property"
	"estatehub_backend/internal/shared"
	"estatehub_backend/internal/stats"
	"estatehub_backend/internal/user"
	"estatehub_backend/internal/visit"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func provideBcryptCost(cfg *config.Config) int {
	return cfg.BcryptCost
}

// provideDB opens the database and brings the schema up to date.
func provideDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewGORM(cfg)
	if err != nil {
		return nil, err
	}
	if err := app.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform layer
		logger.New,
		provideDB,
		provideCleanup,
		provideBcryptCost,

		// Auth
		auth.NewJWTTokenService,
		wire.Bind(new(shared.TokenService), new(*auth.JWTTokenService)),
		auth.NewService,
		wire.Bind(new(auth.Service), new(*auth.ServiceImplementation)),
		auth.NewHandler,

		// Users
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		user.NewHandler,

		// Properties
		property.NewGORMRepository,
		property.NewService,
		wire.Bind(new(property.Service), new(*property.ServiceImplementation)),
		property.NewHandler,

		// Visits
		visit.NewGORMRepository,
		visit.NewService,
		wire.Bind(new(visit.Service), new(*visit.ServiceImplementation)),
		visit.NewHandler,

		// Bookings
		booking.NewGORMRepository,
		booking.NewService,
		wire.Bind(new(booking.Service), new(*booking.ServiceImplementation)),
		booking.NewHandler,

		// Payments
		payment.NewGORMRepository,
		payment.NewService,
		wire.Bind(new(payment.Service), new(*payment.ServiceImplementation)),
		payment.NewHandler,

		// Notifications
		notification.NewGORMRepository,
		notification.NewService,
		wire.Bind(new(notification.Service), new(*notification.ServiceImplementation)),
		notification.NewHandler,

		// Dashboards
		stats.NewService,
		stats.NewHandler,

		// Application layer
		app.NewServer,
	)
	return nil, nil, nil
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
