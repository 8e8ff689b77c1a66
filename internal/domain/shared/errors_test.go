package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Kinds(t *testing.T) {
	tests := []struct {
		name string
		err  *DomainError
		kind ErrorKind
	}{
		{"not found", NewNotFoundError("EXPEDITION_NOT_FOUND", "expedition not found"), KindNotFound},
		{"validation", NewValidationError("INVALID_QUANTITY", "quantity must be positive"), KindValidation},
		{"security", NewSecurityError("KEY_MISMATCH", "owner key mismatch"), KindSecurity},
		{"conflict", NewConflictError("OVER_CONSUMPTION", "not enough remaining quantity"), KindConflict},
		{"upstream", NewUpstreamError("SALES_LEDGER_FAILED", "sales ledger unavailable"), KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.True(t, IsKind(tt.err, tt.kind))
			assert.False(t, IsKind(tt.err, ErrorKind("OTHER")))
		})
	}
}

func TestDomainError_ErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("saving record: %w", ErrKeyMismatch)

	var de *DomainError
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, KindSecurity, de.Kind)
	assert.Equal(t, "KEY_MISMATCH", de.Code)
}

func TestIsKind_NonDomainError(t *testing.T) {
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}
