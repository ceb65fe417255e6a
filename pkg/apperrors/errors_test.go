package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestWrapDBErrorClassifiesUniqueViolation(t *testing.T) {
	dbErr := &pq.Error{Code: "23505", Constraint: "batches_tenant_id_product_id_batch_number_key"}

	err := WrapDBError(dbErr, "batch")

	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, "batch", conflict.Resource)
	assert.Contains(t, conflict.Detail, "batches_tenant_id_product_id_batch_number_key")
}

func TestWrapDBErrorClassifiesForeignKeyViolation(t *testing.T) {
	dbErr := &pq.Error{Code: "23503", Constraint: "stock_levels_product_id_fkey"}

	err := WrapDBError(dbErr, "product")

	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestWrapDBErrorPassesThroughOtherErrors(t *testing.T) {
	cause := errors.New("connection refused")

	err := WrapDBError(fmt.Errorf("query: %w", cause), "stock level")

	var conflict *ConflictError
	assert.False(t, errors.As(err, &conflict))
	assert.ErrorIs(t, err, cause)
}

func TestWrapDBErrorNil(t *testing.T) {
	assert.NoError(t, WrapDBError(nil, "product"))
}
