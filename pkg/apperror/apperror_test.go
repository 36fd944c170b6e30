package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/oksasatya/user-management-api/pkg/apperror"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind apperror.Kind
		want int
	}{
		{apperror.KindValidation, http.StatusBadRequest},
		{apperror.KindConflict, http.StatusBadRequest},
		{apperror.KindAuthentication, http.StatusUnauthorized},
		{apperror.KindForbidden, http.StatusForbidden},
		{apperror.KindNotFound, http.StatusNotFound},
		{apperror.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Status(); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAsWrappedAndUnclassified(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", apperror.NotFound("User not found"))
	if k := apperror.KindOf(wrapped); k != apperror.KindNotFound {
		t.Fatalf("got kind %v, want not_found", k)
	}

	raw := errors.New("pq: relation users does not exist")
	e := apperror.As(raw)
	if e.Kind != apperror.KindInternal {
		t.Fatalf("got kind %v, want internal", e.Kind)
	}
	if e.Message != "Internal server error" {
		t.Fatalf("internal message leaked: %q", e.Message)
	}
	if !errors.Is(e, raw) {
		t.Fatalf("cause should be preserved for logging")
	}
}
