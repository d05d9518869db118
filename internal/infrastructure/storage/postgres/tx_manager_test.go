package postgres

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"coldledger/internal/core/apperror"
)

func TestTranslateTxError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		retryable  bool
	}{
		{
			name:       "serialization failure is retryable",
			err:        &pgconn.PgError{Code: "40001"},
			wantCode:   apperror.CodeTransient,
			wantStatus: http.StatusServiceUnavailable,
			retryable:  true,
		},
		{
			name:       "deadlock is retryable",
			err:        &pgconn.PgError{Code: "40P01"},
			wantCode:   apperror.CodeTransient,
			wantStatus: http.StatusServiceUnavailable,
			retryable:  true,
		},
		{
			name:       "statement timeout is retryable",
			err:        &pgconn.PgError{Code: "57014"},
			wantCode:   apperror.CodeTransient,
			wantStatus: http.StatusServiceUnavailable,
			retryable:  true,
		},
		{
			name:       "check violation is a conflict",
			err:        &pgconn.PgError{Code: "23514", ConstraintName: "receipt_lines_current_quantity_check"},
			wantCode:   apperror.CodeConflict,
			wantStatus: http.StatusConflict,
			retryable:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateTxError(fmt.Errorf("restore stock line: %w", tt.err))

			appErr, ok := apperror.AsAppError(got)
			if !ok {
				t.Fatalf("expected AppError, got %v", got)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", appErr.Code, tt.wantCode)
			}
			if appErr.HTTPStatus != tt.wantStatus {
				t.Errorf("status = %d, want %d", appErr.HTTPStatus, tt.wantStatus)
			}
			if appErr.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", appErr.Retryable, tt.retryable)
			}
		})
	}
}

func TestTranslateTxError_Passthrough(t *testing.T) {
	if got := translateTxError(nil); got != nil {
		t.Errorf("nil should pass through, got %v", got)
	}

	typed := apperror.NewInsufficientStock("pukhraj", "goli", 50, 10)
	if got := translateTxError(typed); got != typed {
		t.Errorf("typed errors must not be rewrapped, got %v", got)
	}

	plain := errors.New("connection reset")
	if got := translateTxError(plain); !errors.Is(got, plain) {
		t.Errorf("unknown errors pass through, got %v", got)
	}
}
