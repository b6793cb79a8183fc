package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jswain/questlog-api/internal/service/auth"
)

// stubJWTService returns fixed claims or a fixed error.
type stubJWTService struct {
	userID      uuid.UUID
	validateErr error
}

func (s *stubJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "token", nil
}

func (s *stubJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return &auth.Claims{UserID: s.userID, TokenType: "access"}, nil
}

func (s *stubJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "refresh", nil
}

func (s *stubJWTService) ValidateRefreshToken(ctx context.Context, token string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidRefreshToken
}

func runAuthenticate(t *testing.T, svc auth.JWTService, header string) (*httptest.ResponseRecorder, uuid.UUID, bool) {
	t.Helper()

	var (
		gotID     uuid.UUID
		reached   bool
		recorder  = httptest.NewRecorder()
		protected = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID, reached = GetUserID(r)
			w.WriteHeader(http.StatusOK)
		})
	)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	NewAuthMiddleware(svc).Authenticate(protected).ServeHTTP(recorder, req)
	return recorder, gotID, reached
}

func TestAuthenticate_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	rec, gotID, reached := runAuthenticate(t, &stubJWTService{userID: userID}, "Bearer good-token")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, reached, "handler should run for a valid token")
	assert.Equal(t, userID, gotID)
}

func TestAuthenticate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		header      string
		validateErr error
		wantStatus  int
		wantError   string
	}{
		{
			name:       "missing header",
			header:     "",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Authorization header required",
		},
		{
			name:       "wrong scheme",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid authorization format",
		},
		{
			name:       "token without scheme",
			header:     "just-a-token",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid authorization format",
		},
		{
			name:        "expired token",
			header:      "Bearer expired",
			validateErr: auth.ErrExpiredToken,
			wantStatus:  http.StatusUnauthorized,
			wantError:   "Token expired",
		},
		{
			name:        "invalid token",
			header:      "Bearer garbage",
			validateErr: auth.ErrInvalidToken,
			wantStatus:  http.StatusUnauthorized,
			wantError:   "Invalid token",
		},
		{
			name:        "refresh token on protected route",
			header:      "Bearer refresh-token",
			validateErr: auth.ErrWrongTokenType,
			wantStatus:  http.StatusUnauthorized,
			wantError:   "Invalid token",
		},
		{
			name:        "unexpected validation failure",
			header:      "Bearer whatever",
			validateErr: context.DeadlineExceeded,
			wantStatus:  http.StatusInternalServerError,
			wantError:   "Authentication error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec, _, reached := runAuthenticate(t, &stubJWTService{validateErr: tc.validateErr}, tc.header)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.False(t, reached, "handler must not run without a valid token")

			var body struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.wantError, body.Error)
		})
	}
}
