package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/contracts"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/payment"
)

type JobHandler struct {
	Contracts *contracts.Service
	Payments  *payment.Engine
	Log       zerolog.Logger
}

func NewJobHandler(svc *contracts.Service, engine *payment.Engine, log zerolog.Logger) *JobHandler {
	return &JobHandler{Contracts: svc, Payments: engine, Log: log}
}

// ListUnpaid handles GET /jobs/unpaid
func (h *JobHandler) ListUnpaid(c *fiber.Ctx) error {
	profile, found := middleware.Profile(c)
	if !found {
		return unauthorized(c)
	}

	jobs, err := h.Contracts.ListUnpaidJobs(c.UserContext(), profile.ID)
	if err != nil {
		return handleError(c, h.Log, err)
	}
	return ok(c, jobs)
}

// GetJob handles GET /jobs/:job_id
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	profile, found := middleware.Profile(c)
	if !found {
		return unauthorized(c)
	}

	id, valid := uuidParam(c, "job_id")
	if !valid {
		return badRequest(c, "invalid job id")
	}

	job, err := h.Contracts.GetJob(c.UserContext(), profile.ID, id)
	if err != nil {
		return handleError(c, h.Log, err)
	}
	return ok(c, job)
}

// Pay handles POST /jobs/:job_id/pay
func (h *JobHandler) Pay(c *fiber.Ctx) error {
	profile, found := middleware.Profile(c)
	if !found {
		return unauthorized(c)
	}

	id, valid := uuidParam(c, "job_id")
	if !valid {
		return badRequest(c, "invalid job id")
	}

	job, err := h.Payments.PayJob(c.UserContext(), profile, id)
	if err != nil {
		return handleError(c, h.Log, err)
	}
	return ok(c, job)
}
