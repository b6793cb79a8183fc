package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jswain/questlog-api/internal/domain"
	"github.com/jswain/questlog-api/internal/service/auth"
)

func registeredUser(t *testing.T, users *fakeUserStore, email, password string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, password, "Existing")
	require.NoError(t, err)
	user.HashedPassword = "hashed:" + password
	user.Password = ""
	users.add(user)
	return user
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	handler := NewAuthHandler(users, &fakeJWTService{}, fakePasswordVerifier{})

	req := newJSONRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "new@example.com",
		Password: "averylongpassword",
		Name:     "Newcomer",
	}, uuid.Nil)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			UserID       uuid.UUID `json:"user_id"`
			AccessToken  string    `json:"token"`
			RefreshToken string    `json:"refresh_token"`
		} `json:"data"`
	}
	decodeBody(t, rec, &body)
	assert.True(t, body.Success)
	assert.NotEqual(t, uuid.Nil, body.Data.UserID)
	assert.NotEmpty(t, body.Data.AccessToken)
	assert.NotEmpty(t, body.Data.RefreshToken)

	stored, err := users.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hashed:averylongpassword", stored.HashedPassword)
	assert.Empty(t, stored.Password, "plaintext must not be retained")
	assert.Equal(t, 1, stored.Level)
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	t.Parallel()

	handler := NewAuthHandler(newFakeUserStore(), &fakeJWTService{}, fakePasswordVerifier{})

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "nope", Password: "averylongpassword", Name: "N"}},
		{"short password", RegisterRequest{Email: "a@b.co", Password: "short", Name: "N"}},
		{"missing name", RegisterRequest{Email: "a@b.co", Password: "averylongpassword"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			handler.Register(rec, newJSONRequest(t, http.MethodPost, "/api/auth/register", tc.req, uuid.Nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	registeredUser(t, users, "taken@example.com", "averylongpassword")
	handler := NewAuthHandler(users, &fakeJWTService{}, fakePasswordVerifier{})

	rec := httptest.NewRecorder()
	handler.Register(rec, newJSONRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "taken@example.com",
		Password: "averylongpassword",
		Name:     "Dup",
	}, uuid.Nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	user := registeredUser(t, users, "login@example.com", "averylongpassword")
	handler := NewAuthHandler(users, &fakeJWTService{}, fakePasswordVerifier{})

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		handler.Login(rec, newJSONRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "login@example.com",
			Password: "averylongpassword",
		}, uuid.Nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data struct {
				UserID uuid.UUID `json:"user_id"`
			} `json:"data"`
		}
		decodeBody(t, rec, &body)
		assert.Equal(t, user.ID, body.Data.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		handler.Login(rec, newJSONRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "login@example.com",
			Password: "not-the-password",
		}, uuid.Nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		handler.Login(rec, newJSONRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "ghost@example.com",
			Password: "averylongpassword",
		}, uuid.Nil))
		// Unknown email and wrong password are indistinguishable.
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("valid refresh token", func(t *testing.T) {
		t.Parallel()
		handler := NewAuthHandler(newFakeUserStore(), &fakeJWTService{userID: userID}, fakePasswordVerifier{})

		rec := httptest.NewRecorder()
		handler.RefreshToken(rec, newJSONRequest(t, http.MethodPost, "/api/auth/refresh", RefreshTokenRequest{
			RefreshToken: "some-refresh-token",
		}, uuid.Nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data RefreshTokenResponse `json:"data"`
		}
		decodeBody(t, rec, &body)
		assert.NotEmpty(t, body.Data.AccessToken)
		assert.NotEmpty(t, body.Data.RefreshToken)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		t.Parallel()
		handler := NewAuthHandler(
			newFakeUserStore(),
			&fakeJWTService{validateErr: auth.ErrInvalidRefreshToken},
			fakePasswordVerifier{},
		)

		rec := httptest.NewRecorder()
		handler.RefreshToken(rec, newJSONRequest(t, http.MethodPost, "/api/auth/refresh", RefreshTokenRequest{
			RefreshToken: "expired-or-garbage",
		}, uuid.Nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token field", func(t *testing.T) {
		t.Parallel()
		handler := NewAuthHandler(newFakeUserStore(), &fakeJWTService{}, fakePasswordVerifier{})
		rec := httptest.NewRecorder()
		handler.RefreshToken(rec, newJSONRequest(t, http.MethodPost, "/api/auth/refresh",
			RefreshTokenRequest{}, uuid.Nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
