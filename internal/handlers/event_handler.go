package handlers

import (
	"errors"
	"strconv"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
	eventws "github.com/pedro17pedroo/sal-o-beleza/internal/websocket"
	"github.com/pedro17pedroo/sal-o-beleza/pkg/utils"
)

// EventHandler upgrades dashboard connections onto the appointment event
// feed. Tokens arrive via query parameter because browsers cannot set
// headers on websocket upgrades.
type EventHandler struct {
	hub       *eventws.Hub
	users     *repository.UserRepository
	jwtSecret string
}

func NewEventHandler(hub *eventws.Hub, users *repository.UserRepository, jwtSecret string) *EventHandler {
	return &EventHandler{
		hub:       hub,
		users:     users,
		jwtSecret: jwtSecret,
	}
}

func (h *EventHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	ownerID, err := h.resolveOwner(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("owner_id", ownerID)
	return c.Next()
}

func (h *EventHandler) HandleWebSocket(conn *websocket.Conn) {
	ownerID, ok := conn.Locals("owner_id").(int64)
	if !ok {
		_ = conn.Close()
		return
	}
	client := eventws.NewClient(h.hub, conn, ownerID)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func (h *EventHandler) resolveOwner(c *fiber.Ctx) (int64, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}
	if tokenString == "" {
		return 0, errors.New("missing token")
	}

	claims, err := utils.ValidateToken(tokenString, h.jwtSecret)
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return 0, err
	}
	user, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		return 0, err
	}
	return user.OwnerScope(), nil
}
