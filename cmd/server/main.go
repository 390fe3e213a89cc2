package main

import (
	"strings"

	"forestry-backend/internal/attendance"
	"forestry-backend/internal/audit"
	"forestry-backend/internal/auth"
	"forestry-backend/internal/config"
	"forestry-backend/internal/dashboard"
	"forestry-backend/internal/database"
	"forestry-backend/internal/distribution"
	"forestry-backend/internal/goals"
	"forestry-backend/internal/inventory"
	"forestry-backend/internal/ledger"
	"forestry-backend/internal/logging"
	"forestry-backend/internal/members"
	"forestry-backend/internal/models"
	"forestry-backend/internal/staff"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	logg := logging.GetLogger()

	cfg := config.Load()
	database.Init(cfg)

	registry := ledger.NewRegistry(database.DB)
	coordinator := ledger.NewCoordinator(database.DB, logg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logg.WithError(err).Error("unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-chairman", auth.RegisterChairmanHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/request-password-reset", auth.RequestPasswordResetHandler())
	api.Post("/auth/reset-password", auth.ResetPasswordHandler())

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/auth/change-password", auth.ChangePasswordHandler())
	protected.Post("/auth/users",
		auth.RequireRole(models.RoleChairman),
		auth.CreateUserHandler(cfg))

	officeRoles := auth.RequireRole(models.RoleChairman, models.RoleSecretary, models.RoleOfficeManager)
	approverRoles := auth.RequireRole(models.RoleChairman, models.RoleSecretary)

	// Stock ledger
	protected.Post("/inventory", officeRoles, inventory.CreateStockHandler(registry))
	protected.Get("/inventory", inventory.ListStockHandler(registry))
	protected.Get("/inventory/low-stock", inventory.LowStockHandler(registry))
	protected.Get("/inventory/expiring", inventory.ExpiringStockHandler(registry))
	protected.Get("/inventory/summary", inventory.StockSummaryHandler(registry))
	protected.Get("/inventory/:id", inventory.GetStockHandler(registry))
	protected.Put("/inventory/:id", officeRoles, inventory.UpdateStockHandler(registry))
	protected.Post("/inventory/:id/add-stock", officeRoles, inventory.AddStockHandler(registry))
	protected.Post("/inventory/:id/reserve", officeRoles, inventory.ReserveStockHandler(registry))
	protected.Delete("/inventory/:id",
		auth.RequireRole(models.RoleChairman),
		inventory.DeleteStockHandler(registry))

	// Distribution workflow
	protected.Post("/distributions", distribution.CreateHandler(coordinator))
	protected.Get("/distributions", distribution.ListHandler(coordinator))
	protected.Get("/distributions/pending", distribution.PendingHandler(coordinator))
	protected.Get("/distributions/stats", distribution.StatsHandler(coordinator))
	protected.Get("/distributions/member/:memberId", distribution.MemberHistoryHandler(coordinator))
	protected.Get("/distributions/:id", distribution.GetHandler(coordinator))
	protected.Post("/distributions/:id/approve", approverRoles, distribution.ApproveHandler(coordinator))
	protected.Post("/distributions/:id/deliver", officeRoles, distribution.DeliverHandler(coordinator))
	protected.Post("/distributions/:id/cancel", officeRoles, distribution.CancelHandler(coordinator))
	protected.Post("/distributions/:id/return", officeRoles, distribution.ReturnHandler(coordinator))

	// Members
	protected.Post("/members", officeRoles, members.CreateMemberHandler())
	protected.Get("/members", members.ListMembersHandler())
	protected.Get("/members/category-summary", members.CategorySummaryHandler())
	protected.Get("/members/:id", members.GetMemberHandler())
	protected.Put("/members/:id", officeRoles, members.UpdateMemberHandler())
	protected.Delete("/members/:id",
		auth.RequireRole(models.RoleChairman),
		members.DeleteMemberHandler())
	protected.Get("/members/:id/stats", members.MemberStatsHandler())

	// Attendance
	protected.Post("/attendance", officeRoles, attendance.CreateAttendanceHandler())
	protected.Get("/attendance", attendance.ListAttendanceHandler())
	protected.Get("/attendance/member/:memberId", attendance.MemberAttendanceHandler())
	protected.Delete("/attendance/:id", officeRoles, attendance.DeleteAttendanceHandler())

	// Staff
	protected.Post("/staff", approverRoles, staff.CreateStaffHandler())
	protected.Get("/staff", staff.ListStaffHandler())
	protected.Get("/staff/:id", staff.GetStaffHandler())
	protected.Put("/staff/:id", approverRoles, staff.UpdateStaffHandler())
	protected.Delete("/staff/:id",
		auth.RequireRole(models.RoleChairman),
		staff.DeleteStaffHandler())

	// Yearly goals
	protected.Post("/goals", approverRoles, goals.CreateGoalHandler())
	protected.Get("/goals", goals.ListGoalsHandler())
	protected.Get("/goals/:year", goals.GetGoalHandler())
	protected.Put("/goals/:year", approverRoles, goals.UpdateGoalHandler())
	protected.Delete("/goals/:year",
		auth.RequireRole(models.RoleChairman),
		goals.DeleteGoalHandler())
	protected.Get("/goals/:year/progress", goals.GoalProgressHandler())

	// Dashboard
	protected.Get("/dashboard", dashboard.OverviewHandler(registry, coordinator))
	protected.Get("/dashboard/recent-activity", dashboard.RecentActivityHandler())

	// Audit logs
	protected.Get("/audit-logs", approverRoles, audit.ListAuditLogsHandler())

	logg.WithField("port", cfg.HTTPPort).Info("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logg.Fatal(err)
	}
}
