package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"outreachly/config"
	"outreachly/models"
	"outreachly/utils"
)

// Protected verifies the access token and loads the current user into Locals
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Missing authentication token", nil)
		}

		claims, err := utils.ParseJWTToken(tokenString)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token", err)
		}

		var user models.User
		if err := config.DB.First(&user, claims.UserID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", nil)
		}

		if !user.IsActive {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Account is deactivated", nil)
		}

		// Tokens issued before a password change carry a stale version
		if claims.TokenVersion != user.TokenVersion {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Token has been revoked", nil)
		}

		c.Locals("user", &user)
		c.Locals("userID", user.ID)

		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return c.Cookies("access_token")
}
