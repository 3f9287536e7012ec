package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type Router struct {
	Auth          *AuthHandler
	Contracts     *ContractHandler
	Jobs          *JobHandler
	Balances      *BalanceHandler
	Notifications *NotificationHandler
	Authenticate  fiber.Handler
}

func (r *Router) Register(app *fiber.App) {
	app.Post("/auth/login", r.Auth.Login)
	app.Post("/auth/logout", r.Auth.Logout)

	protected := app.Group("/", r.Authenticate)

	protected.Get("/me", r.Auth.Me)

	protected.Get("/contracts", r.Contracts.ListContracts)
	protected.Get("/contracts/:id", r.Contracts.GetContract)

	protected.Get("/jobs/unpaid", r.Jobs.ListUnpaid)
	protected.Get("/jobs/:job_id", r.Jobs.GetJob)
	protected.Post("/jobs/:job_id/pay", r.Jobs.Pay)

	protected.Get("/balances/:profile_id/entries", r.Balances.ListEntries)

	if r.Notifications != nil {
		protected.Get("/ws/notifications", r.Notifications.Upgrade, websocket.New(r.Notifications.Stream))
	}
}
