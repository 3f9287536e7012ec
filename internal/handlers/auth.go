package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/models"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/wallet"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/utils"
)

type AuthHandler struct {
	DB        *gorm.DB
	Wallet    *wallet.WalletService
	JWTSecret string
	Expires   int
	Log       zerolog.Logger
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "validation error",
		"errors":  errs,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "email is required")
	}
	if password == "" {
		errs.Add("password", "password is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var p models.Profile
	err := h.DB.WithContext(c.UserContext()).Where("email = ?", email).First(&p).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return handleError(c, h.Log, err)
	}
	if err != nil || !utils.CheckPassword(p.PasswordHash, password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "wrong email or password",
		})
	}

	token, err := utils.SignJWT(h.JWTSecret, p.ID.String(), string(p.Role), h.Expires)
	if err != nil {
		return handleError(c, h.Log, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})

	return ok(c, fiber.Map{
		"token":   token,
		"profile": p,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{"success": true})
}

// Me returns the caller with a balance read fresh from the store.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	profile, found := middleware.Profile(c)
	if !found {
		return unauthorized(c)
	}

	balance, err := h.Wallet.GetBalance(c.UserContext(), profile.ID)
	if err != nil {
		return handleError(c, h.Log, err)
	}

	me := *profile
	me.Balance = balance
	return ok(c, me)
}
