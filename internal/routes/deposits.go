package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/laxo-exchange/laxo/internal/deposits"
)

// RegisterDepositRoutes wires deposit creation and history.
func RegisterDepositRoutes(r fiber.Router, h *deposits.Handler) {
	r.Post("/deposits", h.Create)
	r.Get("/deposits", h.List)
}
