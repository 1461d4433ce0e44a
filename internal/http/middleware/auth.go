package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/qrjet/qrjet/internal/app/model"
	"github.com/qrjet/qrjet/internal/app/repository"
	"github.com/qrjet/qrjet/internal/http/util"
	"go.uber.org/zap"
)

// UserLocalsKey is where the authenticated account is stashed per request.
const UserLocalsKey = "current_user"

// Auth validates the bearer token and loads the account behind it.
func Auth(tokens *util.TokenSigner, users repository.UserRepository, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		subject, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		ctx := c.UserContext()
		if ctx == nil {
			ctx = context.Background()
		}

		user, err := users.GetByID(ctx, subject)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "unknown account",
				})
			}
			logger.Error("failed to load account", zap.String("user_id", subject), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}

		c.Locals(UserLocalsKey, user)
		return c.Next()
	}
}

// CurrentUser returns the account set by Auth, or nil on unauthenticated
// routes.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(UserLocalsKey).(*model.User)
	return user
}
