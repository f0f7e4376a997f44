package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
	"github.com/shopspring/decimal"
)

type ServiceHandler struct {
	services *repository.ServiceRepository
}

func NewServiceHandler(services *repository.ServiceRepository) *ServiceHandler {
	return &ServiceHandler{services: services}
}

type serviceRequest struct {
	Name     string          `json:"name"`
	Duration int             `json:"duration"`
	Price    decimal.Decimal `json:"price"`
}

func (r *serviceRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Duration <= 0 {
		return errors.New("duration must be greater than 0")
	}
	if r.Price.IsNegative() {
		return errors.New("price must not be negative")
	}
	return nil
}

func (h *ServiceHandler) List(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	services, err := h.services.List(c.Context(), ownerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list services"})
	}
	return c.JSON(fiber.Map{"services": services})
}

func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req serviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := req.validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	service, err := h.services.Create(c.Context(), ownerID, repository.CreateServiceInput{
		Name:            req.Name,
		DurationMinutes: req.Duration,
		Price:           req.Price,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create service"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"service": service})
}

func (h *ServiceHandler) Update(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	serviceID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid service id"})
	}

	var req serviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := req.validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	service, err := h.services.Update(c.Context(), serviceID, ownerID, repository.CreateServiceInput{
		Name:            req.Name,
		DurationMinutes: req.Duration,
		Price:           req.Price,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update service"})
	}
	return c.JSON(fiber.Map{"service": service})
}

func (h *ServiceHandler) Delete(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	serviceID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid service id"})
	}

	deleted, err := h.services.Delete(c.Context(), serviceID, ownerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete service"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
