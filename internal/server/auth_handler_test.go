package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/types"
)

func TestAuthHandler_Register(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", uuid.Nil, types.CreateUserRequest{
		Name: "Jane Doe", Email: "jane@example.com", Password: "password123", Role: types.RoleUser,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeJSON[types.LoginResponse](t, rec)
	require.NotNil(t, resp.User)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, types.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.Token)
	assert.NotContains(t, rec.Body.String(), "password")

	claims, err := env.srv.jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, types.RoleUser, claims.Role)
}

func TestAuthHandler_RegisterRejects(t *testing.T) {
	env := newTestEnv(t)
	env.addUser("Taken", types.RoleUser)

	tests := []struct {
		name    string
		req     types.CreateUserRequest
		want    int
		message string
	}{
		{
			name:    "admin role",
			req:     types.CreateUserRequest{Name: "Eve", Email: "eve@example.com", Password: "password123", Role: types.RoleAdmin},
			want:    http.StatusBadRequest,
			message: "validation error: Role - oneof",
		},
		{
			name:    "short password",
			req:     types.CreateUserRequest{Name: "Eve", Email: "eve@example.com", Password: "short", Role: types.RoleUser},
			want:    http.StatusBadRequest,
			message: "validation error: Password - min",
		},
		{
			name:    "bad email",
			req:     types.CreateUserRequest{Name: "Eve", Email: "eve", Password: "password123", Role: types.RoleHR},
			want:    http.StatusBadRequest,
			message: "validation error: Email - email",
		},
		{
			name:    "duplicate email",
			req:     types.CreateUserRequest{Name: "Other", Email: "taken@example.com", Password: "password123", Role: types.RoleHR},
			want:    http.StatusConflict,
			message: "email already registered: taken@example.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/auth/register", uuid.Nil, tt.req)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.message, errorMessage(t, rec))
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	id := env.addUser("Hank", types.RoleHR)

	rec := env.do(http.MethodPost, "/auth/login", uuid.Nil, types.LoginRequest{Email: "hank@example.com", Password: "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeJSON[types.LoginResponse](t, rec)
	assert.Equal(t, id, resp.User.ID)
	assert.Equal(t, types.RoleHR, resp.User.Role)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthHandler_LoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.addUser("Hank", types.RoleHR)

	wrongPassword := env.do(http.MethodPost, "/auth/login", uuid.Nil, types.LoginRequest{Email: "hank@example.com", Password: "wrong-horse"})
	unknownEmail := env.do(http.MethodPost, "/auth/login", uuid.Nil, types.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})

	for _, rec := range []int{wrongPassword.Code, unknownEmail.Code} {
		assert.Equal(t, http.StatusUnauthorized, rec)
	}
	assert.Equal(t, errorMessage(t, wrongPassword), errorMessage(t, unknownEmail))
	assert.Equal(t, "invalid email or password", errorMessage(t, wrongPassword))
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	id := env.addUser("Uma", types.RoleUser)

	rec := env.do(http.MethodPut, "/auth/password", id, types.UpdatePasswordRequest{
		CurrentPassword: "wrong-horse", NewPassword: "battery-staple",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "current password is incorrect", errorMessage(t, rec))

	rec = env.do(http.MethodPut, "/auth/password", id, types.UpdatePasswordRequest{
		CurrentPassword: "correct-horse", NewPassword: "battery-staple",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/auth/login", uuid.Nil, types.LoginRequest{Email: "uma@example.com", Password: "battery-staple"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodPost, "/auth/login", uuid.Nil, types.LoginRequest{Email: "uma@example.com", Password: "correct-horse"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_UpdatePasswordRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPut, "/auth/password", uuid.Nil, types.UpdatePasswordRequest{
		CurrentPassword: "correct-horse", NewPassword: "battery-staple",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
