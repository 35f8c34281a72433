package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("secret", 5)
	user := &domain.User{Username: "alice", Role: domain.RoleTechnician}

	token, err := tokens.GenerateToken(user)
	require.NoError(t, err)
	assert.Equal(t, "alice", token.Username)
	assert.Equal(t, domain.RoleTechnician, token.Role)

	claims, err := tokens.ParseToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, domain.RoleTechnician, claims.Role)

	_, err = NewTokenManager("other", 5).ParseToken(token.Value)
	assert.Error(t, err)
}

func TestPasswordHasher(t *testing.T) {
	plain := NewPasswordHasher(false, 0)
	stored, err := plain.Prepare("pw")
	require.NoError(t, err)
	assert.Equal(t, "pw", stored)
	assert.NoError(t, plain.Verify(stored, "pw"))
	assert.ErrorIs(t, plain.Verify(stored, "PW"), ErrPasswordMismatch)

	hashed := NewPasswordHasher(true, bcrypt.MinCost)
	stored, err = hashed.Prepare("pw")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", stored)
	assert.NoError(t, hashed.Verify(stored, "pw"))
	assert.ErrorIs(t, hashed.Verify(stored, "nope"), ErrPasswordMismatch)
}

func newProtectedApp(t *testing.T) (*fiber.App, *TokenManager, repository.UserRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	tokens := NewTokenManager("secret", 5)
	mw := NewAuthMiddleware(tokens, users)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fiberErr, ok := err.(*fiber.Error); ok {
				return c.SendStatus(fiberErr.Code)
			}
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/any", mw.Handle, RequireRole(), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal.User.Username)
	})
	app.Get("/tech", mw.Handle, RequireTechnician(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, tokens, users
}

func TestAuthMiddleware(t *testing.T) {
	app, tokens, users := newProtectedApp(t)

	reporter := &domain.User{Username: "bob", Role: domain.RoleUser}
	require.NoError(t, users.Create(context.Background(), reporter))
	tech := &domain.User{Username: "tina", Role: domain.RoleTechnician, Specializations: []domain.Specialization{}}
	require.NoError(t, users.Create(context.Background(), tech))

	bobToken, err := tokens.GenerateToken(reporter)
	require.NoError(t, err)
	tinaToken, err := tokens.GenerateToken(tech)
	require.NoError(t, err)
	ghostToken, err := tokens.GenerateToken(&domain.User{Username: "ghost", Role: domain.RoleUser})
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{name: "missing header", path: "/any", status: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/any", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", path: "/any", header: "Bearer abc", status: http.StatusUnauthorized},
		{name: "unknown subject", path: "/any", header: "Bearer " + ghostToken.Value, status: http.StatusUnauthorized},
		{name: "valid user", path: "/any", header: "Bearer " + bobToken.Value, status: http.StatusOK},
		{name: "user on technician route", path: "/tech", header: "Bearer " + bobToken.Value, status: http.StatusForbidden},
		{name: "technician route", path: "/tech", header: "Bearer " + tinaToken.Value, status: http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
