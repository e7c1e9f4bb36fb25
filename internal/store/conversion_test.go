package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("unique constraint hit", func(t *testing.T) {
		assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	})

	t.Run("wrapped by the driver stack", func(t *testing.T) {
		err := fmt.Errorf("insert conversion: %w", &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "affiliate_conversions_click_id_key",
		})
		assert.True(t, isUniqueViolation(err))
	})

	t.Run("other constraint violations pass through", func(t *testing.T) {
		assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	})

	t.Run("non postgres errors pass through", func(t *testing.T) {
		assert.False(t, isUniqueViolation(errors.New("connection reset")))
	})
}
