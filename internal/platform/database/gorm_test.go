// File: internal/platform/database/gorm_test.go
package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))

	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_payments_booking_id"}
	assert.True(t, IsUniqueViolation(pgErr))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create payment: %w", pgErr)))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}), "FK violations are not conflicts")

	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: payments.booking_id")))
}
