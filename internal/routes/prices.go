package routes

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/laxo-exchange/laxo/internal/pricing"
)

// RegisterPriceRoutes exposes the cached reference prices. Quotes are public:
// they carry no account data.
func RegisterPriceRoutes(r fiber.Router, oracle *pricing.Oracle) {
	r.Get("/prices", func(c *fiber.Ctx) error {
		prices, asOf := oracle.All(c.UserContext())
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"prices": prices,
			"as_of":  asOf,
		})
	})

	r.Get("/prices/:asset", func(c *fiber.Ctx) error {
		asset := strings.ToUpper(c.Params("asset"))
		q := oracle.Quote(c.UserContext(), asset)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"asset": q.Asset,
			"price": q.Price,
			"as_of": q.AsOf,
		})
	})
}
