package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/laxo-exchange/laxo/internal/trading"
)

// RegisterTradingRoutes wires market order execution and order history.
func RegisterTradingRoutes(r fiber.Router, h *trading.Handler) {
	r.Post("/orders", h.Execute)
	r.Get("/orders", h.List)
}
