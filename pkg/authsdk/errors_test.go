package authsdk

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPIErrorWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrCSRFMismatch.WriteError(rec)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"error":"CSRF token mismatch"}`, rec.Body.String())
}

func TestAPIErrorIs(t *testing.T) {
	decoded := &APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	require.ErrorIs(t, decoded, ErrInvalidCredentials)
	require.NotErrorIs(t, decoded, ErrInvalidToken)

	wrapped := fmt.Errorf("login: %w", ErrLoginBlocked)
	require.ErrorIs(t, wrapped, ErrLoginBlocked)
	require.NotErrorIs(t, wrapped, ErrRateLimited)
}

func TestErrorMessagesAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range predefined {
		require.False(t, seen[e.Message], e.Message)
		seen[e.Message] = true
		require.Equal(t, e.Kind == KindUnauthenticated || e.Kind == KindUnauthorized, e.StatusCode == http.StatusUnauthorized, e.Message)
	}
}

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr *APIError
		kind    Kind
		message string
	}{
		{"predefined", http.StatusUnauthorized, `{"error":"Authentication required"}`, ErrAuthRequired, KindUnauthenticated, "Authentication required"},
		{"custom bad request", http.StatusBadRequest, `{"error":"Username is required"}`, nil, KindBadRequest, "Username is required"},
		{"not json", http.StatusBadGateway, `<html>`, nil, KindInternal, "HTTP 502: Bad Gateway"},
		{"empty message", http.StatusForbidden, `{}`, nil, KindForbidden, "HTTP 403: Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErrorResponse(&http.Response{StatusCode: tt.status}, []byte(tt.body))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, tt.kind, apiErr.Kind)
			require.Equal(t, tt.message, apiErr.Message)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: http.StatusOK}, nil))
}
