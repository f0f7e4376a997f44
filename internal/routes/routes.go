package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pedro17pedroo/sal-o-beleza/internal/config"
	"github.com/pedro17pedroo/sal-o-beleza/internal/handlers"
	"github.com/pedro17pedroo/sal-o-beleza/internal/middleware"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
	"github.com/pedro17pedroo/sal-o-beleza/internal/services"
	eventws "github.com/pedro17pedroo/sal-o-beleza/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	professionalRepo := repository.NewProfessionalRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)

	eventHub := eventws.NewHub()
	go eventHub.Run()

	availabilityService := services.NewAvailabilityService(scheduleRepo, serviceRepo, appointmentRepo, cfg.BookingSlotMinutes)
	appointmentService := services.NewAppointmentService(db, appointmentRepo, serviceRepo, clientRepo, professionalRepo, eventHub)
	financeService := services.NewFinanceService(db, appointmentRepo, transactionRepo, clientRepo, eventHub)
	bookingService := services.NewBookingService(db, userRepo, serviceRepo, availabilityService, cfg.PublicBookingOwner)

	authHandler := handlers.NewAuthHandler(userRepo, permissionRepo, cfg.JWTSecret)
	clientHandler := handlers.NewClientHandler(clientRepo)
	serviceHandler := handlers.NewServiceHandler(serviceRepo)
	professionalHandler := handlers.NewProfessionalHandler(db, professionalRepo, scheduleRepo, userRepo)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, availabilityService, financeService)
	financeHandler := handlers.NewFinanceHandler(financeService)
	accountHandler := handlers.NewAccountHandler(db, userRepo, permissionRepo)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	eventHandler := handlers.NewEventHandler(eventHub, userRepo, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret, userRepo), authHandler.Me)

	// Unauthenticated booking funnel, throttled per client IP.
	public := api.Group("/public", middleware.RateLimit(cfg.PublicRatePerMinute))
	public.Get("/services", bookingHandler.ListServices)
	public.Get("/availability/working-days", bookingHandler.WorkingDays)
	public.Get("/availability/time-slots", bookingHandler.TimeSlots)
	public.Post("/booking", bookingHandler.Book)

	protected := api.Group("", middleware.AuthRequired(cfg.JWTSecret, userRepo))

	clients := protected.Group("/clients")
	clients.Get("", middleware.RequirePermission(models.PermViewClients, permissionRepo), clientHandler.List)
	clients.Get("/:id", middleware.RequirePermission(models.PermViewClients, permissionRepo), clientHandler.Get)
	clients.Post("", middleware.RequirePermission(models.PermManageClients, permissionRepo), clientHandler.Create)
	clients.Put("/:id", middleware.RequirePermission(models.PermManageClients, permissionRepo), clientHandler.Update)
	clients.Delete("/:id", middleware.RequirePermission(models.PermManageClients, permissionRepo), clientHandler.Delete)

	catalog := protected.Group("/services")
	catalog.Get("", middleware.RequirePermission(models.PermViewServices, permissionRepo), serviceHandler.List)
	catalog.Post("", middleware.RequirePermission(models.PermManageServices, permissionRepo), serviceHandler.Create)
	catalog.Put("/:id", middleware.RequirePermission(models.PermManageServices, permissionRepo), serviceHandler.Update)
	catalog.Delete("/:id", middleware.RequirePermission(models.PermManageServices, permissionRepo), serviceHandler.Delete)

	professionals := protected.Group("/professionals")
	professionals.Get("", professionalHandler.List)
	professionals.Post("", middleware.RequireAdmin(), professionalHandler.Create)
	professionals.Put("/:id", middleware.RequireAdmin(), professionalHandler.Update)
	professionals.Delete("/:id", middleware.RequireAdmin(), professionalHandler.Delete)
	professionals.Get("/:id/schedule", professionalHandler.GetSchedule)
	professionals.Put("/:id/schedule", middleware.RequireAdmin(), professionalHandler.PutSchedule)
	professionals.Post("/:id/account", middleware.RequireAdmin(), professionalHandler.CreateAccount)

	appointments := protected.Group("/appointments")
	appointments.Get("", middleware.RequirePermission(models.PermViewAppointments, permissionRepo), appointmentHandler.List)
	appointments.Post("/check-conflict", middleware.RequirePermission(models.PermViewAppointments, permissionRepo), appointmentHandler.CheckConflict)
	appointments.Get("/:id", middleware.RequirePermission(models.PermViewAppointments, permissionRepo), appointmentHandler.Get)
	appointments.Post("", middleware.RequirePermission(models.PermManageAppointments, permissionRepo), appointmentHandler.Create)
	appointments.Put("/:id", middleware.RequirePermission(models.PermManageAppointments, permissionRepo), appointmentHandler.Update)
	appointments.Delete("/:id", middleware.RequirePermission(models.PermManageAppointments, permissionRepo), appointmentHandler.Delete)
	appointments.Post("/:id/mark-paid", middleware.RequirePermission(models.PermManageFinancial, permissionRepo), appointmentHandler.MarkPaid)

	finance := protected.Group("/transactions")
	finance.Get("", middleware.RequirePermission(models.PermViewFinancial, permissionRepo), financeHandler.ListTransactions)
	finance.Get("/summary", middleware.RequirePermission(models.PermViewFinancial, permissionRepo), financeHandler.Summary)
	finance.Post("", middleware.RequirePermission(models.PermManageFinancial, permissionRepo), financeHandler.CreateTransaction)
	finance.Delete("/:id", middleware.RequirePermission(models.PermManageFinancial, permissionRepo), financeHandler.DeleteTransaction)

	protected.Get("/dashboard/stats", middleware.RequirePermission(models.PermViewAppointments, permissionRepo), financeHandler.DashboardStats)

	accounts := protected.Group("/accounts", middleware.RequireAdmin())
	accounts.Get("", accountHandler.List)
	accounts.Get("/:id/permissions", accountHandler.GetPermissions)
	accounts.Put("/:id/permissions", accountHandler.ReplacePermissions)

	api.Use("/ws", eventHandler.WebSocketAuth)
	api.Get("/ws", websocket.New(eventHandler.HandleWebSocket))
}
