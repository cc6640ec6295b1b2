package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/laxo-exchange/laxo/internal/middleware"
	"github.com/laxo-exchange/laxo/internal/withdrawals"
)

// RegisterWithdrawalRoutes wires withdrawal requests and the admin decision
// endpoint.
func RegisterWithdrawalRoutes(r fiber.Router, h *withdrawals.Handler) {
	r.Post("/withdrawals", h.Create)
	r.Get("/withdrawals", h.List)
	r.Post("/admin/withdrawals/:withdrawalId/decide", middleware.RequireAdmin(), h.Decide)
}
