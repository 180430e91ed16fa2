package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"zapateria/internal/apperrors"
	"zapateria/internal/models"
	"zapateria/internal/services"
)

// IdentityKey is the Locals key the auth middlewares store the resolved
// caller identity under.
const IdentityKey = "identity"

// AuthRequired is a Fiber middleware that rejects requests without a valid
// bearer token and stores the resolved identity for downstream handlers.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Token required. Format: Bearer <token>",
			})
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid token",
			})
		}

		c.Locals(IdentityKey, services.IdentityFromClaims(claims))
		return c.Next()
	}
}

// AuthOptional resolves the identity when a bearer token is present but
// lets anonymous requests through. Used on the GraphQL endpoint, where the
// mutation resolvers apply the role gate themselves.
func AuthOptional(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid token",
			})
		}

		c.Locals(IdentityKey, services.IdentityFromClaims(claims))
		return c.Next()
	}
}

// RequireRoles enforces the write-role policy. It must run after
// AuthRequired; the role check itself is services.AssertRoles, the same
// gate the GraphQL resolvers use.
func RequireRoles(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := c.Locals(IdentityKey).(*models.Identity)
		if err := services.AssertRoles(identity, allowedRoles...); err != nil {
			log.Printf("Blocked %s %s: %v", c.Method(), c.Path(), err)
			if errors.Is(err, apperrors.ErrUnauthenticated) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"message": "Authentication required",
				})
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "You do not have permission to perform this action",
			})
		}
		return c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. ok is false when the header is missing or malformed.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
