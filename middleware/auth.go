package middleware

import (
	"strings"

	"consumable-app/config"
	"consumable-app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AuthMiddleware validates the bearer token and stores the identity claims in
// ctx.Locals for downstream handlers.
func AuthMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if authHeader == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Missing Authorization header",
		})
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid Authorization header format",
		})
	}

	token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: Invalid signing method")
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized: Invalid token",
		})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized: Invalid token claims",
		})
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized: Invalid user ID",
		})
	}

	ctx.Locals("userID", uint(userID))
	if username, ok := claims["username"].(string); ok {
		ctx.Locals("username", username)
	}
	if fullName, ok := claims["full_name"].(string); ok {
		ctx.Locals("fullName", fullName)
	}
	return ctx.Next()
}

type PermissionMiddleware struct {
	DB *gorm.DB
}

// RequireRole gates a route on the role ladder: the user's best role priority
// must be at least minPriority.
func (p *PermissionMiddleware) RequireRole(minPriority int) fiber.Handler {
	perms := services.NewPermissionService(p.DB)
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: Invalid user ID",
			})
		}
		allowed, err := perms.HasMinRole(userID, minPriority)
		if err != nil || !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Forbidden: この操作を行う権限がありません",
			})
		}
		return c.Next()
	}
}

// RequireApprover gates a route on dispatch approval rights: 課長 or above, or
// an approve_dispatch override.
func (p *PermissionMiddleware) RequireApprover() fiber.Handler {
	perms := services.NewPermissionService(p.DB)
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: Invalid user ID",
			})
		}
		allowed, err := perms.CanApproveDispatchOrder(userID)
		if err != nil || !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Forbidden: 承認権限がありません",
			})
		}
		return c.Next()
	}
}
