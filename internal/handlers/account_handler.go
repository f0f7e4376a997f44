package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
)

// AccountHandler manages the professional accounts of a salon and their
// permission grants. Every route behind it is admin-only.
type AccountHandler struct {
	db             *pgxpool.Pool
	users          *repository.UserRepository
	permissionRepo *repository.PermissionRepository
}

func NewAccountHandler(
	db *pgxpool.Pool,
	users *repository.UserRepository,
	permissionRepo *repository.PermissionRepository,
) *AccountHandler {
	return &AccountHandler{
		db:             db,
		users:          users,
		permissionRepo: permissionRepo,
	}
}

type replacePermissionsRequest struct {
	Permissions []models.Permission `json:"permissions"`
}

func (h *AccountHandler) List(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	accounts, err := h.users.ListByOwner(c.Context(), ownerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list accounts"})
	}
	return c.JSON(fiber.Map{"accounts": accounts})
}

func (h *AccountHandler) GetPermissions(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	accountID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account id"})
	}

	if err := h.checkOwnedProfessionalAccount(c, accountID, ownerID); err != nil {
		return mapAccountError(c, err)
	}

	permissions, err := h.permissionRepo.ListByUserID(c.Context(), accountID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch permissions"})
	}
	return c.JSON(fiber.Map{"permissions": permissions})
}

// ReplacePermissions swaps the full grant set in one transaction.
func (h *AccountHandler) ReplacePermissions(c *fiber.Ctx) error {
	ownerID, err := ownerScope(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	accountID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account id"})
	}

	var req replacePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	for _, permission := range req.Permissions {
		if !models.ValidPermission(permission) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown permission: " + string(permission)})
		}
	}

	if err := h.checkOwnedProfessionalAccount(c, accountID, ownerID); err != nil {
		return mapAccountError(c, err)
	}

	tx, err := h.db.Begin(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update permissions"})
	}
	defer func() {
		_ = tx.Rollback(c.Context())
	}()

	txPermissionRepo := repository.NewPermissionRepository(tx)
	if err := txPermissionRepo.ReplaceForUser(c.Context(), accountID, req.Permissions); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update permissions"})
	}
	if err := tx.Commit(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update permissions"})
	}

	return c.JSON(fiber.Map{"permissions": req.Permissions})
}

var errAccountNotFound = errors.New("account not found")

// checkOwnedProfessionalAccount confirms the account exists, is a
// professional, and belongs to the caller's salon.
func (h *AccountHandler) checkOwnedProfessionalAccount(c *fiber.Ctx, accountID, ownerID int64) error {
	account, err := h.users.GetByID(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errAccountNotFound
		}
		return err
	}
	if account.Role != models.RoleProfessional || account.OwnerUserID == nil || *account.OwnerUserID != ownerID {
		return errAccountNotFound
	}
	return nil
}

func mapAccountError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errAccountNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch account"})
}
