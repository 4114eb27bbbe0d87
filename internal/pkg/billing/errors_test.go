package billing

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"nil", nil, http.StatusOK, "Success"},
		{"method", ErrMethodNotAllowed, http.StatusMethodNotAllowed, ""},
		{"signature", fmt.Errorf("%w: %w", ErrSignatureVerification, errors.New("no valid signature")), http.StatusBadRequest, "Webhook Error: no valid signature"},
		{"invalid subscription", fmt.Errorf("%w: subscription sub_1 has no items", ErrInvalidSubscription), http.StatusBadRequest, "Webhook Error: invalid subscription payload: subscription sub_1 has no items"},
		{"customer", fmt.Errorf("%w: %w", ErrCustomerLookup, errors.New("timeout")), http.StatusInternalServerError, "Customer lookup error"},
		{"storage", fmt.Errorf("%w: %w", ErrStorage, errors.New("duplicate key value violates unique constraint")), http.StatusInternalServerError, "Supabase insert error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := StatusFor(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}
