package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"district_platform/internals/configs"
	helper "district_platform/internals/helpers"
)

// Locals keys set for downstream handlers.
const (
	LocalUserID       = "user_id"
	LocalUsername     = "username"
	LocalUserRole     = "userRole"
	LocalDistrictName = "district_name"
)

// AuthMiddleware verifies the bearer token and stores the identity in
// Locals. The token payload is trusted as-is; no user row lookup per
// request.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Not authenticated.")
		}

		if configs.JWTSecret == "" {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Server misconfigured: missing JWT secret.")
		}

		claims, err := helper.ParseUserToken(configs.JWTSecret, tokenString)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid token.")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalUserRole, claims.Role)
		c.Locals(LocalDistrictName, claims.DistrictName)
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) (string, error) {
	hdr := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(hdr, "Bearer ") {
		return "", fiber.ErrUnauthorized
	}
	token := strings.TrimSpace(strings.TrimPrefix(hdr, "Bearer "))
	if token == "" {
		return "", fiber.ErrUnauthorized
	}
	return token, nil
}

// UserID reads the authenticated user's id out of Locals.
func UserID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(LocalUserID).(int64)
	return id, ok
}
