package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamplayer/core/auth"
)

func TestAuthMiddleware(t *testing.T) {
	auth.SetSecret("test-secret")
	token, err := auth.GenerateToken("user-1", "Alice")
	require.NoError(t, err)

	handler := AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		name, err := GetUsernameFromContext(r.Context())
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
		assert.Equal(t, "Alice", name)
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name           string
		header         string
		query          string
		expectedStatus int
	}{
		{
			name:           "bearer header",
			header:         "Bearer " + token,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "query parameter",
			query:          token,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "missing token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed header",
			header:         "Basic " + token,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			header:         "Bearer not.a.token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/protected"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler(rec, req)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
