package deposits

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/laxo-exchange/laxo/internal/ledger"
)

// Handler exposes deposit HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a deposit handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Asset       string          `json:"asset"`
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination"`
}

type depositResponse struct {
	ID          string          `json:"deposit_id"`
	Asset       string          `json:"asset"`
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Create opens a deposit for the authenticated account and runs it through
// the confirmation hook.
func (h *Handler) Create(c *fiber.Ctx) error {
	accountID, _ := c.Locals("user_id").(string)
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	dep, err := h.service.Create(c.UserContext(), CreateInput{
		AccountID:   accountID,
		Asset:       req.Asset,
		Amount:      req.Amount,
		Destination: req.Destination,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(toResponse(dep))
}

// List returns the authenticated account's deposits.
func (h *Handler) List(c *fiber.Ctx) error {
	accountID, _ := c.Locals("user_id").(string)
	deps, err := h.service.ListByAccount(c.UserContext(), accountID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]depositResponse, 0, len(deps))
	for _, dep := range deps {
		out = append(out, toResponse(dep))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"deposits": out})
}

func toResponse(dep Deposit) depositResponse {
	return depositResponse{
		ID:          dep.ID,
		Asset:       dep.Asset,
		Amount:      dep.Amount,
		Destination: dep.Destination,
		Status:      dep.Status,
		CreatedAt:   dep.CreatedAt,
	}
}
