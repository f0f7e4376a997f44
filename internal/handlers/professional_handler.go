package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
	"github.com/pedro17pedroo/sal-o-beleza/pkg/utils"
)

type ProfessionalHandler struct {
	db            *pgxpool.Pool
	professionals *repository.ProfessionalRepository
	schedules     *repository.ScheduleRepository
	users         *repository.UserRepository
}

func NewProfessionalHandler(
	db *pgxpool.Pool,
	professionals *repository.ProfessionalRepository,
	schedules *repository.ScheduleRepository,
	users *repository.UserRepository,
) *ProfessionalHandler {
	return &ProfessionalHandler{
		db:            db,
		professionals: professionals,
		schedules:     schedules,
		users:         users,
	}
}

type professionalRequest struct {
	Name      string  `json:"name"`
	Specialty string  `json:"specialty"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
}

func (r *professionalRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Specialty = strings.TrimSpace(r.Specialty)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type scheduleRequest struct {
	WorkDays   models.WeekdaySet   `json:"work_days"`
	WorkStart  models.MinuteOfDay  `json:"work_start_time"`
	WorkEnd    models.MinuteOfDay  `json:"work_end_time"`
	LunchStart *models.MinuteOfDay `json:"lunch_start_time"`
	LunchEnd   *models.MinuteOfDay `json:"lunch_end_time"`
}

type createAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *ProfessionalHandler) List(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	professionals, err := h.professionals.List(c.Context(), ownerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list professionals"})
	}
	return c.JSON(fiber.Map{"professionals": professionals})
}

func (h *ProfessionalHandler) Create(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req professionalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := req.validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	professional, err := h.professionals.Create(c.Context(), ownerID, repository.CreateProfessionalInput{
		Name:      req.Name,
		Specialty: req.Specialty,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create professional"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"professional": professional})
}

func (h *ProfessionalHandler) Update(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	professionalID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid professional id"})
	}

	var req professionalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := req.validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	professional, err := h.professionals.Update(c.Context(), professionalID, ownerID, repository.CreateProfessionalInput{
		Name:      req.Name,
		Specialty: req.Specialty,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Professional not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update professional"})
	}
	return c.JSON(fiber.Map{"professional": professional})
}

func (h *ProfessionalHandler) Delete(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	professionalID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid professional id"})
	}

	deleted, err := h.professionals.Delete(c.Context(), professionalID, ownerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete professional"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Professional not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProfessionalHandler) GetSchedule(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	professionalID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid professional id"})
	}

	schedule, err := h.schedules.GetByProfessionalID(c.Context(), professionalID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Schedule not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch schedule"})
	}
	return c.JSON(fiber.Map{"schedule": schedule})
}

// PutSchedule creates or replaces the professional's weekly schedule.
func (h *ProfessionalHandler) PutSchedule(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	professionalID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid professional id"})
	}

	if _, err := h.professionals.GetByID(c.Context(), professionalID, ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Professional not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch professional"})
	}

	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	schedule := models.WorkSchedule{
		ProfessionalID: professionalID,
		UserID:         ownerID,
		WorkDays:       req.WorkDays,
		WorkStart:      req.WorkStart,
		WorkEnd:        req.WorkEnd,
		LunchStart:     req.LunchStart,
		LunchEnd:       req.LunchEnd,
	}
	if err := schedule.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	saved, err := h.schedules.Upsert(c.Context(), &schedule)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save schedule"})
	}
	return c.JSON(fiber.Map{"schedule": saved})
}

// CreateAccount gives a professional a login bound to the admin's salon.
// The account starts with no permissions; grants come separately.
func (h *ProfessionalHandler) CreateAccount(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	professionalID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid professional id"})
	}

	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username is required"})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Password must be at least 8 characters"})
	}

	professional, err := h.professionals.GetByID(c.Context(), professionalID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Professional not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch professional"})
	}

	if _, err := h.users.GetByProfessionalID(c.Context(), professionalID); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Professional already has an account"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check existing account"})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := &models.User{
		Username:       req.Username,
		PasswordHash:   hashed,
		Name:           professional.Name,
		Email:          professional.Email,
		Role:           models.RoleProfessional,
		OwnerUserID:    &ownerID,
		ProfessionalID: &professionalID,
	}
	if err := h.users.CreateUser(c.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create account"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": fiber.Map{
			"id":              user.ID,
			"username":        user.Username,
			"name":            user.Name,
			"role":            user.Role,
			"professional_id": user.ProfessionalID,
		},
	})
}
