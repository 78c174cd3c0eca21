package repository_test

import (
	"errors"
	"fmt"
	"testing"

	"dinebook/shared/repository"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("failed to insert data (reservation): %w", &pq.Error{
		Code:       "23505",
		Constraint: "reservations_availability_id_key",
	})

	constraint, ok := repository.UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "reservations_availability_id_key", constraint)

	_, ok = repository.UniqueViolation(errors.New("boom"))
	assert.False(t, ok)

	_, ok = repository.UniqueViolation(&pq.Error{Code: "23503"})
	assert.False(t, ok)
}

func TestIsTxConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: true},
		{name: "deadlock", err: fmt.Errorf("wrapped: %w", &pq.Error{Code: "40P01"}), want: true},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repository.IsTxConflict(tt.err))
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, repository.IsForeignKeyViolation(&pq.Error{Code: "23503"}))
	assert.False(t, repository.IsForeignKeyViolation(&pq.Error{Code: "23505"}))
}
