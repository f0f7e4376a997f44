package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/services"
)

type appointmentApplicationService interface {
	Create(ctx context.Context, ownerID int64, input services.CreateAppointmentInput) (*models.AppointmentDetail, error)
	Update(ctx context.Context, ownerID, appointmentID int64, input services.UpdateAppointmentInput) (*models.AppointmentDetail, error)
	Delete(ctx context.Context, ownerID, appointmentID int64) error
	Get(ctx context.Context, ownerID, appointmentID int64) (*models.AppointmentDetail, error)
	List(ctx context.Context, ownerID int64) ([]models.AppointmentDetail, error)
	ListByDay(ctx context.Context, ownerID int64, day time.Time) ([]models.AppointmentDetail, error)
	ListByRange(ctx context.Context, ownerID int64, from, to time.Time) ([]models.AppointmentDetail, error)
}

type conflictChecker interface {
	CheckConflict(ctx context.Context, ownerID int64, professionalID *int64, start time.Time, serviceID int64, excludeID *int64) (bool, error)
}

type paymentService interface {
	MarkAppointmentPaid(ctx context.Context, ownerID, appointmentID int64) (*models.AppointmentDetail, error)
}

type AppointmentHandler struct {
	service      appointmentApplicationService
	availability conflictChecker
	payments     paymentService
}

func NewAppointmentHandler(
	service *services.AppointmentService,
	availability *services.AvailabilityService,
	payments *services.FinanceService,
) *AppointmentHandler {
	return &AppointmentHandler{
		service:      service,
		availability: availability,
		payments:     payments,
	}
}

type appointmentRequest struct {
	ClientID       int64   `json:"client_id"`
	ServiceID      int64   `json:"service_id"`
	ProfessionalID *int64  `json:"professional_id"`
	Date           string  `json:"date"`
	Notes          *string `json:"notes"`
	Status         string  `json:"status"`
}

type updateAppointmentRequest struct {
	ClientID       *int64  `json:"client_id"`
	ServiceID      *int64  `json:"service_id"`
	ProfessionalID *int64  `json:"professional_id"`
	Date           *string `json:"date"`
	Notes          *string `json:"notes"`
	Status         *string `json:"status"`
}

type checkConflictRequest struct {
	ProfessionalID *int64 `json:"professional_id"`
	ServiceID      int64  `json:"service_id"`
	Date           string `json:"date"`
	ExcludeID      *int64 `json:"exclude_id"`
}

func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if day := strings.TrimSpace(c.Query("date")); day != "" {
		parsed, err := parseDateParam(day)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
		}
		appointments, err := h.service.ListByDay(c.Context(), ownerID, parsed)
		if err != nil {
			return mapAppointmentError(c, err)
		}
		return c.JSON(fiber.Map{"appointments": appointments})
	}

	startParam := strings.TrimSpace(c.Query("start"))
	endParam := strings.TrimSpace(c.Query("end"))
	if startParam != "" || endParam != "" {
		start, err := parseDateParam(startParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be a valid date"})
		}
		end, err := parseDateParam(endParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end must be a valid date"})
		}
		appointments, err := h.service.ListByRange(c.Context(), ownerID, start, end)
		if err != nil {
			return mapAppointmentError(c, err)
		}
		return c.JSON(fiber.Map{"appointments": appointments})
	}

	appointments, err := h.service.List(c.Context(), ownerID)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return c.JSON(fiber.Map{"appointments": appointments})
}

func (h *AppointmentHandler) Get(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	appointmentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	appointment, err := h.service.Get(c.Context(), ownerID, appointmentID)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req appointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Date))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be a valid RFC3339 timestamp"})
	}

	appointment, err := h.service.Create(c.Context(), ownerID, services.CreateAppointmentInput{
		ClientID:       req.ClientID,
		ServiceID:      req.ServiceID,
		ProfessionalID: req.ProfessionalID,
		Date:           date,
		Notes:          req.Notes,
		Status:         req.Status,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) Update(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	appointmentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	var req updateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := services.UpdateAppointmentInput{
		ClientID:       req.ClientID,
		ServiceID:      req.ServiceID,
		ProfessionalID: req.ProfessionalID,
		Notes:          req.Notes,
		Status:         req.Status,
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.Date))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be a valid RFC3339 timestamp"})
		}
		input.Date = &date
	}

	appointment, err := h.service.Update(c.Context(), ownerID, appointmentID, input)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) Delete(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	appointmentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	if err := h.service.Delete(c.Context(), ownerID, appointmentID); err != nil {
		return mapAppointmentError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CheckConflict answers the calendar's dry-run question without writing
// anything. A positive answer is advisory: the create path re-checks under
// its own lock.
func (h *AppointmentHandler) CheckConflict(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req checkConflictRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ServiceID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "service_id is required"})
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Date))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be a valid RFC3339 timestamp"})
	}

	conflict, err := h.availability.CheckConflict(c.Context(), ownerID, req.ProfessionalID, date, req.ServiceID, req.ExcludeID)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return c.JSON(fiber.Map{"hasConflict": conflict})
}

func (h *AppointmentHandler) MarkPaid(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	appointmentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	appointment, err := h.payments.MarkAppointmentPaid(c.Context(), ownerID, appointmentID)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

func mapAppointmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Requested time conflicts with another appointment"})
	case errors.Is(err, services.ErrAlreadyPaid):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Appointment is already paid"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrClientNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	case errors.Is(err, services.ErrServiceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service not found"})
	case errors.Is(err, services.ErrProfessionalNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Professional not found"})
	case errors.Is(err, services.ErrAppointmentNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Appointment not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process appointment request"})
	}
}
