package routes

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/laxo-exchange/laxo/internal/ledger"
)

type walletResponse struct {
	Asset     string          `json:"asset"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RegisterWalletRoutes wires balance views over the ledger. The store is used
// directly; reads need no service layer.
func RegisterWalletRoutes(r fiber.Router, wallets ledger.Store) {
	r.Get("/wallets", func(c *fiber.Ctx) error {
		accountID, _ := c.Locals("user_id").(string)
		out := make([]walletResponse, 0, len(ledger.SupportedAssets))
		for _, asset := range ledger.SupportedAssets {
			w, err := wallets.Get(c.UserContext(), accountID, asset)
			if err != nil {
				if errors.Is(err, ledger.ErrNotFound) {
					continue
				}
				return fiber.NewError(http.StatusInternalServerError, err.Error())
			}
			out = append(out, toWalletResponse(w))
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"wallets": out})
	})

	r.Get("/wallets/:asset", func(c *fiber.Ctx) error {
		accountID, _ := c.Locals("user_id").(string)
		asset := strings.ToUpper(c.Params("asset"))
		w, err := wallets.Get(c.UserContext(), accountID, asset)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "wallet not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(toWalletResponse(w))
	})
}

func toWalletResponse(w ledger.Wallet) walletResponse {
	return walletResponse{
		Asset:     w.Asset,
		Balance:   w.Balance,
		Available: w.Available,
		UpdatedAt: w.UpdatedAt,
	}
}
