package main

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5"
	"github.com/pedro17pedroo/sal-o-beleza/internal/config"
	"github.com/pedro17pedroo/sal-o-beleza/internal/database"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
	"github.com/pedro17pedroo/sal-o-beleza/internal/routes"
	"github.com/pedro17pedroo/sal-o-beleza/pkg/logger"
	"github.com/pedro17pedroo/sal-o-beleza/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get().Fatal("Failed to load config", zap.Error(err))
	}
	logger.Init(cfg.AppEnv)
	defer func() {
		_ = logger.Get().Sync()
	}()

	if cfg.DBUrl == "" {
		logger.Get().Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		logger.Get().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB()

	if err := seedDefaultAdmin(context.Background(), cfg); err != nil {
		logger.Get().Fatal("Failed to seed default admin", zap.Error(err))
	}

	app := fiber.New()

	app.Use(cors.New())
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	routes.RegisterRoutes(app, cfg, database.DB)

	logger.Get().Info("Server starting", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Get().Fatal("Server failed to start", zap.Error(err))
	}
}

// seedDefaultAdmin bootstraps the first admin account on an empty database.
// Without an admin there is no way to log in and no tenant for the public
// booking funnel.
func seedDefaultAdmin(ctx context.Context, cfg *config.Config) error {
	if cfg.DefaultAdminUsername == "" || cfg.DefaultAdminPassword == "" {
		return nil
	}

	userRepo := repository.NewUserRepository(database.DB)
	if _, err := userRepo.GetOldestAdmin(ctx); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hashed, err := utils.HashPassword(cfg.DefaultAdminPassword)
	if err != nil {
		return err
	}
	admin := &models.User{
		Username:     cfg.DefaultAdminUsername,
		PasswordHash: hashed,
		Name:         cfg.DefaultAdminName,
		Role:         models.RoleAdmin,
	}
	if err := userRepo.CreateUser(ctx, admin); err != nil {
		return err
	}
	logger.Get().Info("Seeded default admin account", zap.String("username", admin.Username))
	return nil
}
