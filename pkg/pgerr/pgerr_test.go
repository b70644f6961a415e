package pgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: UniqueViolation, Constraint: "bookings_reference_code_key"})

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "bookings_reference_code_key"))
	assert.False(t, IsUniqueViolation(err, "customers_phone_key"))
	assert.False(t, IsForeignKeyViolation(err, ""))
	assert.Equal(t, UniqueViolation, Code(err))
}

func TestIsForeignKeyViolation(t *testing.T) {
	err := &pq.Error{Code: ForeignKeyViolation, Constraint: "bookings_service_id_fkey"}

	assert.True(t, IsForeignKeyViolation(err, "bookings_service_id_fkey"))
	assert.False(t, IsForeignKeyViolation(errors.New("plain"), ""))
	assert.Empty(t, Code(errors.New("plain")))
}
