package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
	"github.com/pedro17pedroo/sal-o-beleza/internal/services"
	"github.com/shopspring/decimal"
)

type FinanceHandler struct {
	service *services.FinanceService
}

func NewFinanceHandler(service *services.FinanceService) *FinanceHandler {
	return &FinanceHandler{service: service}
}

type transactionRequest struct {
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        *string         `json:"date"`
}

func (h *FinanceHandler) ListTransactions(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	filter := repository.TransactionListFilter{Type: c.Query("type")}
	if filter.Type != "" && filter.Type != models.TransactionRevenue && filter.Type != models.TransactionExpense {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "type must be revenue or expense"})
	}
	if from := strings.TrimSpace(c.Query("from")); from != "" {
		parsed, err := parseDateParam(from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be a valid date"})
		}
		filter.From = &parsed
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		parsed, err := parseDateParam(to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be a valid date"})
		}
		filter.To = &parsed
	}

	transactions, err := h.service.ListTransactions(c.Context(), ownerID, filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list transactions"})
	}
	return c.JSON(fiber.Map{"transactions": transactions})
}

func (h *FinanceHandler) CreateTransaction(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := services.CreateTransactionInput{
		Type:        strings.TrimSpace(req.Type),
		Category:    strings.TrimSpace(req.Category),
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
	}
	if req.Date != nil {
		parsed, err := parseDateParam(strings.TrimSpace(*req.Date))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be a valid date"})
		}
		input.Date = parsed
	}

	transaction, err := h.service.CreateTransaction(c.Context(), ownerID, input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create transaction"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transaction": transaction})
}

func (h *FinanceHandler) DeleteTransaction(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction id"})
	}

	if err := h.service.DeleteTransaction(c.Context(), ownerID, transactionID); err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete transaction"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Summary totals revenue, expense, and balance over an optional window.
// Without parameters it covers the current month.
func (h *FinanceHandler) Summary(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)
	if param := strings.TrimSpace(c.Query("from")); param != "" {
		if from, err = parseDateParam(param); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be a valid date"})
		}
	}
	if param := strings.TrimSpace(c.Query("to")); param != "" {
		if to, err = parseDateParam(param); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be a valid date"})
		}
	}

	summary, err := h.service.Summary(c.Context(), ownerID, from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute summary"})
	}
	return c.JSON(fiber.Map{"summary": summary})
}

func (h *FinanceHandler) DashboardStats(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	stats, err := h.service.Stats(c.Context(), ownerID, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute dashboard stats"})
	}
	return c.JSON(fiber.Map{"stats": stats})
}
