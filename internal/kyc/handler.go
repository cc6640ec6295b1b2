package kyc

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes KYC HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a KYC handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type submitRequest struct {
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	FullName       string `json:"full_name"`
	DateOfBirth    string `json:"date_of_birth"`
	Address        string `json:"address"`
}

type submissionResponse struct {
	ID          string    `json:"submission_id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Submit records the authenticated account's identity documents.
func (h *Handler) Submit(c *fiber.Ctx) error {
	accountID, _ := c.Locals("user_id").(string)
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	sub, err := h.service.Submit(c.UserContext(), accountID, SubmitInput{
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		FullName:       req.FullName,
		DateOfBirth:    req.DateOfBirth,
		Address:        req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrIncompleteDetails):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrAlreadySubmitted):
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(submissionResponse{
		ID:          sub.ID,
		Status:      sub.Status,
		SubmittedAt: sub.SubmittedAt,
	})
}

// Status reports the account's latest submission state.
func (h *Handler) Status(c *fiber.Ctx) error {
	accountID, _ := c.Locals("user_id").(string)
	sub, err := h.service.Status(c.UserContext(), accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(submissionResponse{
		ID:          sub.ID,
		Status:      sub.Status,
		SubmittedAt: sub.SubmittedAt,
	})
}
