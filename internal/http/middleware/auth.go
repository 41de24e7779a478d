package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"backoffice/internal/model"
)

// PrincipalLocalKey is the context locals key holding the authenticated *model.Principal.
const PrincipalLocalKey = "principal"

// ErrForbidden is returned when the caller lacks the route's permission.
var ErrForbidden = errors.New("insufficient permissions")

// Authenticator resolves a bearer token to the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header.
// Failures are returned to the global error handler.
func Authenticate(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := a.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.Locals(PrincipalLocalKey, p)
		return c.Next()
	}
}

// RequirePermission rejects callers whose role does not grant perm.
func RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !PrincipalFrom(c).Can(perm) {
			return ErrForbidden
		}
		return c.Next()
	}
}

// PrincipalFrom returns the principal stored by Authenticate, or nil.
func PrincipalFrom(c *fiber.Ctx) *model.Principal {
	p, _ := c.Locals(PrincipalLocalKey).(*model.Principal)
	return p
}
