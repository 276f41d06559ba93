package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeatAssignment(t *testing.T) {
	a, err := NewSeatAssignment(10, 20, 30)
	require.NoError(t, err)

	assert.True(t, a.IsActive())
	assert.Equal(t, uint(10), a.SubscriptionID())
	assert.Equal(t, uint(20), a.UserID())
	assert.Equal(t, uint(30), a.AssignedBy())
	assert.NotEmpty(t, a.SID())
	assert.Nil(t, a.RevokedAt())
}

func TestNewSeatAssignment_Validation(t *testing.T) {
	_, err := NewSeatAssignment(0, 20, 30)
	assert.Error(t, err)

	_, err = NewSeatAssignment(10, 0, 30)
	assert.Error(t, err)
}

func TestSeatAssignment_RevokeAndReactivate(t *testing.T) {
	a, err := NewSeatAssignment(10, 20, 30)
	require.NoError(t, err)

	a.Revoke()
	assert.False(t, a.IsActive())
	require.NotNil(t, a.RevokedAt())

	a.Reactivate(31)
	assert.True(t, a.IsActive())
	assert.Nil(t, a.RevokedAt())
	assert.Equal(t, uint(31), a.AssignedBy())
}

func TestSeatAssignment_NoOpTransitions(t *testing.T) {
	a, err := NewSeatAssignment(10, 20, 30)
	require.NoError(t, err)
	v := a.Version()

	// Reactivating an active seat or revoking twice must not bump state.
	a.Reactivate(99)
	assert.Equal(t, v, a.Version())
	assert.Equal(t, uint(30), a.AssignedBy())

	a.Revoke()
	v = a.Version()
	a.Revoke()
	assert.Equal(t, v, a.Version())
}
