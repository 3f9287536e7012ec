package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/wallet"
)

type BalanceHandler struct {
	Wallet *wallet.WalletService
	Log    zerolog.Logger
}

// ListEntries handles GET /balances/:profile_id/entries. Profiles only see
// their own ledger.
func (h *BalanceHandler) ListEntries(c *fiber.Ctx) error {
	profile, found := middleware.Profile(c)
	if !found {
		return unauthorized(c)
	}

	id, valid := uuidParam(c, "profile_id")
	if !valid {
		return badRequest(c, "invalid profile id")
	}
	if id != profile.ID {
		return handleError(c, h.Log, apperr.Forbidden("ledger belongs to another profile"))
	}

	entries, err := h.Wallet.ListEntries(c.UserContext(), id, c.QueryInt("limit", 50))
	if err != nil {
		return handleError(c, h.Log, err)
	}
	return ok(c, entries)
}
