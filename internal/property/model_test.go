// File: internal/property/model_test.go
package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_LegalEdges(t *testing.T) {
	assert.True(t, CanTransition(StatusAvailable, StatusBooked))
	assert.True(t, CanTransition(StatusAvailable, StatusInactive))
	assert.True(t, CanTransition(StatusBooked, StatusSold))
	assert.True(t, CanTransition(StatusBooked, StatusAvailable), "cascade reset must be a legal edge")
	assert.True(t, CanTransition(StatusInactive, StatusAvailable))
}

func TestCanTransition_IllegalEdges(t *testing.T) {
	assert.False(t, CanTransition(StatusAvailable, StatusSold), "a sale requires a booking first")
	assert.False(t, CanTransition(StatusInactive, StatusBooked))
	assert.False(t, CanTransition(StatusInactive, StatusSold))
	assert.False(t, CanTransition(StatusBooked, StatusInactive))
}

func TestCanTransition_SoldIsTerminal(t *testing.T) {
	for _, target := range []PropertyStatus{StatusAvailable, StatusBooked, StatusInactive, StatusSold} {
		assert.False(t, CanTransition(StatusSold, target), "SOLD must not transition to %s", target)
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(PropertyStatus("BOGUS"), StatusAvailable))
	assert.False(t, CanTransition(StatusAvailable, PropertyStatus("BOGUS")))
}
