package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/contracts"
)

type ContractHandler struct {
	Contracts *contracts.Service
	Log       zerolog.Logger
}

func NewContractHandler(svc *contracts.Service, log zerolog.Logger) *ContractHandler {
	return &ContractHandler{Contracts: svc, Log: log}
}

// GetContract handles GET /contracts/:id
func (h *ContractHandler) GetContract(c *fiber.Ctx) error {
	profile, found := middleware.Profile(c)
	if !found {
		return unauthorized(c)
	}

	id, valid := uuidParam(c, "id")
	if !valid {
		// ids are uuids; anything else cannot exist
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "not found"})
	}

	contract, err := h.Contracts.GetContract(c.UserContext(), profile.ID, id)
	if err != nil {
		return handleError(c, h.Log, err)
	}
	return ok(c, contract)
}

// ListContracts handles GET /contracts
func (h *ContractHandler) ListContracts(c *fiber.Ctx) error {
	profile, found := middleware.Profile(c)
	if !found {
		return unauthorized(c)
	}

	list, err := h.Contracts.ListActiveContracts(c.UserContext(), profile.ID)
	if err != nil {
		return handleError(c, h.Log, err)
	}
	return ok(c, list)
}
