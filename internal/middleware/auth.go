package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/models"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/utils"
)

const (
	CookieName = "jm_token"
	profileKey = "profile"
)

// Authenticate resolves the caller from a bearer token (or the jm_token
// cookie) and attaches the stored profile to the request locals.
func Authenticate(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenStr == "" {
			tokenStr = c.Cookies(CookieName)
		}
		if tokenStr == "" {
			return unauthorized(c)
		}

		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return unauthorized(c)
		}
		profileID, err := uuid.Parse(strings.TrimSpace(claims.ProfileID))
		if err != nil {
			return unauthorized(c)
		}

		var profile models.Profile
		err = db.WithContext(c.UserContext()).First(&profile, "id = ?", profileID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return unauthorized(c)
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "internal server error",
			})
		}

		c.Locals(profileKey, &profile)
		return c.Next()
	}
}

// Profile returns the caller attached by Authenticate.
func Profile(c *fiber.Ctx) (*models.Profile, bool) {
	p, ok := c.Locals(profileKey).(*models.Profile)
	return p, ok && p != nil
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "unauthorized",
	})
}
