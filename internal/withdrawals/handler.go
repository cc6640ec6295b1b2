package withdrawals

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/laxo-exchange/laxo/internal/ledger"
)

// Handler exposes withdrawal HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a withdrawal handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Asset       string          `json:"asset"`
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination"`
}

type decideRequest struct {
	Approve bool `json:"approve"`
}

type withdrawalResponse struct {
	ID          string          `json:"withdrawal_id"`
	Asset       string          `json:"asset"`
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Create reserves funds for the authenticated account and records the request.
func (h *Handler) Create(c *fiber.Ctx) error {
	accountID, _ := c.Locals("user_id").(string)
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	wd, err := h.service.Create(c.UserContext(), CreateInput{
		AccountID:   accountID,
		Asset:       req.Asset,
		Amount:      req.Amount,
		Destination: req.Destination,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		case errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ledger.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(toResponse(wd))
}

// Decide applies the administrative approval or rejection.
func (h *Handler) Decide(c *fiber.Ctx) error {
	var req decideRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	actor := Actor{}
	actor.AccountID, _ = c.Locals("user_id").(string)
	actor.Admin, _ = c.Locals("is_admin").(bool)

	wd, err := h.service.Decide(c.UserContext(), c.Params("withdrawalId"), req.Approve, actor)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			return fiber.NewError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrAlreadyDecided):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusOK).JSON(toResponse(wd))
}

// List returns the authenticated account's withdrawals.
func (h *Handler) List(c *fiber.Ctx) error {
	accountID, _ := c.Locals("user_id").(string)
	wds, err := h.service.ListByAccount(c.UserContext(), accountID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]withdrawalResponse, 0, len(wds))
	for _, wd := range wds {
		out = append(out, toResponse(wd))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"withdrawals": out})
}

func toResponse(wd Withdrawal) withdrawalResponse {
	return withdrawalResponse{
		ID:          wd.ID,
		Asset:       wd.Asset,
		Amount:      wd.Amount,
		Destination: wd.Destination,
		Status:      wd.Status,
		CreatedAt:   wd.CreatedAt,
	}
}
