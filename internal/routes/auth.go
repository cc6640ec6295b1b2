package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/laxo-exchange/laxo/internal/auth"
)

// RegisterAuthRoutes wires registration, login and token refresh.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, loginLimiter fiber.Handler) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", loginLimiter, h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.Post("/admin/bootstrap", h.BootstrapAdmin)
}
