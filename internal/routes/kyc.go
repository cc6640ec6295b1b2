package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/laxo-exchange/laxo/internal/kyc"
)

// RegisterKYCRoutes wires document submission and review status.
func RegisterKYCRoutes(r fiber.Router, h *kyc.Handler) {
	r.Post("/kyc", h.Submit)
	r.Get("/kyc", h.Status)
}
