package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpfast/helpdesk/internal/domain"
	apperrors "github.com/helpfast/helpdesk/pkg/util"
)

// runGuard runs handler behind an error-capturing middleware so the raw
// error reaching the envelope layer can be inspected.
func runGuard(t *testing.T, principal *Principal, handler fiber.Handler) (error, bool) {
	t.Helper()

	var captured error
	var reached bool

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if principal != nil {
			c.Locals(principalKey, principal)
		}
		captured = c.Next()
		return nil
	})
	app.Get("/guarded", handler, func(c *fiber.Ctx) error {
		reached = true
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	return captured, reached
}

func TestRequireRole(t *testing.T) {
	technician := &Principal{
		User: &domain.User{ID: 7, Name: "Bruno", RoleName: domain.RoleTechnician},
		Role: domain.RoleTechnician,
	}

	t.Run("missing principal yields unauthorized", func(t *testing.T) {
		err, reached := runGuard(t, nil, RequireRole(domain.RoleAdmin))
		require.Error(t, err)
		assert.False(t, reached)
		assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
		assert.Equal(t, fiber.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
	})

	t.Run("role outside the allowed set yields forbidden", func(t *testing.T) {
		err, reached := runGuard(t, technician, RequireRole(domain.RoleAdmin))
		require.Error(t, err)
		assert.False(t, reached)
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
		assert.Equal(t, fiber.StatusForbidden, apperrors.ToDomainError(err).HTTPStatus)
	})

	t.Run("allowed role passes through", func(t *testing.T) {
		err, reached := runGuard(t, technician, RequireRole(domain.RoleTechnician, domain.RoleAdmin))
		require.NoError(t, err)
		assert.True(t, reached)
	})

	t.Run("empty allowed set only requires authentication", func(t *testing.T) {
		err, reached := runGuard(t, technician, RequireRole())
		require.NoError(t, err)
		assert.True(t, reached)
	})
}

func TestRequireAuthenticated(t *testing.T) {
	t.Run("anonymous is rejected", func(t *testing.T) {
		err, reached := runGuard(t, nil, RequireAuthenticated())
		require.Error(t, err)
		assert.False(t, reached)
		assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
	})

	t.Run("principal passes", func(t *testing.T) {
		principal := &Principal{User: &domain.User{ID: 1, RoleName: domain.RoleClient}, Role: domain.RoleClient}
		err, reached := runGuard(t, principal, RequireAuthenticated())
		require.NoError(t, err)
		assert.True(t, reached)
	})
}
