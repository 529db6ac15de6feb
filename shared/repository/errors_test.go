package repository_test

import (
	"errors"
	"fmt"
	"meetflow/shared/repository"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsConstraintViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: true},
		{name: "exclusion violation wrapped", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23P01"}), want: true},
		{name: "foreign key", err: &pq.Error{Code: "23503"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repository.IsConstraintViolation(tt.err))
		})
	}
}

func TestViolatedConstraint(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "bookings_tenant_idem_key"})

	assert.Equal(t, "bookings_tenant_idem_key", repository.ViolatedConstraint(err))
	assert.Empty(t, repository.ViolatedConstraint(errors.New("boom")))
}
