package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/services"
)

type publicBookingService interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	WorkingDays(ctx context.Context) ([]int, error)
	TimeSlots(ctx context.Context, date time.Time, serviceID int64) ([]services.TimeSlot, error)
	Book(ctx context.Context, input services.PublicBookingInput) (*services.PublicBookingResult, error)
}

// BookingHandler serves the unauthenticated booking funnel. Its JSON is
// camelCase because the public page is the one consumer.
type BookingHandler struct {
	service publicBookingService
}

func NewBookingHandler(service *services.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

type publicBookingRequest struct {
	ClientName      string  `json:"clientName"`
	ClientPhone     string  `json:"clientPhone"`
	ServiceID       int64   `json:"serviceId"`
	AppointmentDate string  `json:"appointmentDate"`
	Notes           *string `json:"notes"`
}

func (h *BookingHandler) ListServices(c *fiber.Ctx) error {
	list, err := h.service.ListServices(c.Context())
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"services": list})
}

func (h *BookingHandler) WorkingDays(c *fiber.Ctx) error {
	days, err := h.service.WorkingDays(c.Context())
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"workingDays": days})
}

func (h *BookingHandler) TimeSlots(c *fiber.Ctx) error {
	dateParam := strings.TrimSpace(c.Query("date"))
	date, err := parseDateParam(dateParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}
	serviceID, err := strconv.ParseInt(c.Query("serviceId"), 10, 64)
	if err != nil || serviceID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "serviceId is required"})
	}

	slots, err := h.service.TimeSlots(c.Context(), date, serviceID)
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"timeSlots": slots})
}

func (h *BookingHandler) Book(c *fiber.Ctx) error {
	var req publicBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(req.AppointmentDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "appointmentDate must be a valid RFC3339 timestamp"})
	}

	result, err := h.service.Book(c.Context(), services.PublicBookingInput{
		ClientName:  strings.TrimSpace(req.ClientName),
		ClientPhone: strings.TrimSpace(req.ClientPhone),
		ServiceID:   req.ServiceID,
		Date:        date,
		Notes:       req.Notes,
	})
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": result})
}

func mapBookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking request"})
	case errors.Is(err, services.ErrServiceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service not found"})
	case errors.Is(err, services.ErrSlotUnavailable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Selected time is no longer available"})
	case errors.Is(err, services.ErrBookingUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Online booking is not available"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process booking"})
	}
}
