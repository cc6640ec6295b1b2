package trading

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/laxo-exchange/laxo/internal/ledger"
)

// Handler exposes trade HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a trading handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type executeRequest struct {
	Side      string          `json:"side"`
	BaseAsset string          `json:"base_asset"`
	Amount    decimal.Decimal `json:"amount"`
}

type orderResponse struct {
	ID         string          `json:"order_id"`
	Side       string          `json:"side"`
	BaseAsset  string          `json:"base_asset"`
	QuoteAsset string          `json:"quote_asset"`
	Amount     decimal.Decimal `json:"amount"`
	Price      decimal.Decimal `json:"price"`
	QuoteValue decimal.Decimal `json:"quote_value"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Execute settles a market order for the authenticated account.
func (h *Handler) Execute(c *fiber.Ctx) error {
	accountID, _ := c.Locals("user_id").(string)
	var req executeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	order, err := h.service.Execute(c.UserContext(), ExecuteInput{
		AccountID: accountID,
		Side:      strings.ToLower(req.Side),
		BaseAsset: strings.ToUpper(req.BaseAsset),
		Amount:    req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedMarket):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrMarketUnavailable):
			return fiber.NewError(http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, ErrInvalidSide), errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(toResponse(order))
}

// List returns the authenticated account's orders.
func (h *Handler) List(c *fiber.Ctx) error {
	accountID, _ := c.Locals("user_id").(string)
	orders, err := h.service.ListByAccount(c.UserContext(), accountID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toResponse(order))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"orders": out})
}

func toResponse(order Order) orderResponse {
	return orderResponse{
		ID:         order.ID,
		Side:       order.Side,
		BaseAsset:  order.BaseAsset,
		QuoteAsset: order.QuoteAsset,
		Amount:     order.Amount,
		Price:      order.Price,
		QuoteValue: order.QuoteValue,
		CreatedAt:  order.CreatedAt,
	}
}
