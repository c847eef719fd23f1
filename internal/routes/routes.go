package routes

import (
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"biomed-inventory/internal/authz"
	"biomed-inventory/internal/controllers"
	"biomed-inventory/internal/repositories"
	"biomed-inventory/internal/services"
	"biomed-inventory/pkg/middleware"
	"biomed-inventory/pkg/service"
)

const permissionsCacheTTL = 10 * time.Minute

type Loggers struct {
	Main *zap.Logger
	Auth *zap.Logger
	Acta *zap.Logger
}

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, loggers *Loggers) {
	api := e.Group("/api")

	// --- РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, loggers.Main)
	permissionRepo := repositories.NewPermissionRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn)
	assignmentRepo := repositories.NewAssignmentRepository(dbConn)
	actaRepo := repositories.NewActaRepository(dbConn)

	// --- СЕРВИСЫ ---
	authPermissionService := services.NewAuthPermissionService(permissionRepo, cacheRepo, loggers.Auth, permissionsCacheTTL)
	authService := services.NewAuthService(userRepo, cacheRepo, jwtSvc, loggers.Auth)
	userService := services.NewUserService(userRepo, loggers.Main)
	equipmentService := services.NewEquipmentService(equipmentRepo, loggers.Main)
	importService := services.NewEquipmentImportService(dbConn, loggers.Main)
	assignmentService := services.NewAssignmentService(assignmentRepo, loggers.Main)
	maintenanceService := services.NewMaintenanceService(equipmentRepo, loggers.Main)
	actaService := services.NewActaService(actaRepo, equipmentRepo, assignmentRepo, userRepo, authz.NewGatekeeper(), loggers.Acta)

	// --- КОНТРОЛЛЕРЫ ---
	authController := controllers.NewAuthController(authService, loggers.Auth)
	userController := controllers.NewUserController(userService, loggers.Main)
	equipmentController := controllers.NewEquipmentController(equipmentService, importService, loggers.Main)
	assignmentController := controllers.NewAssignmentController(assignmentService, loggers.Main)
	maintenanceController := controllers.NewMaintenanceController(maintenanceService, loggers.Main)
	actaController := controllers.NewActaController(actaService, loggers.Acta)

	authMW := middleware.NewAuthMiddleware(jwtSvc, authPermissionService, loggers.Auth)
	secure := api.Group("", authMW.Auth)

	// --- МАРШРУТЫ ---
	api.POST("/auth/login", authController.Login)
	api.POST("/auth/refresh", authController.Refresh)

	runActaRouter(secure, actaController, authMW)
	runEquipmentRouter(secure, equipmentController, authMW)
	runAssignmentRouter(secure, assignmentController, authMW)
	runUserRouter(secure, userController, authMW)
	runMaintenanceRouter(secure, maintenanceController, authMW)

	loggers.Main.Info("InitRouter: создание маршрутов завершено")
}

func runActaRouter(g *echo.Group, c *controllers.ActaController, authMW *middleware.AuthMiddleware) {
	actas := g.Group("/actas")

	// Вспомогательные списки объявлены раньше параметрического :id.
	actas.GET("/eligible-equipment", c.GetEligibleEquipment, authMW.RequirePermission(authz.ActasCreate))
	actas.GET("/receivers", c.GetReceivers, authMW.RequirePermission(authz.ActasCreate))

	actas.POST("", c.CreateActa, authMW.RequirePermission(authz.ActasCreate))
	actas.GET("", c.GetActas, authMW.RequirePermission(authz.ActasView))
	actas.GET("/:id", c.FindActa, authMW.RequirePermission(authz.ActasView))
	actas.POST("/:id/accept", c.AcceptActa, authMW.RequirePermission(authz.ActasAccept))
}

func runEquipmentRouter(g *echo.Group, c *controllers.EquipmentController, authMW *middleware.AuthMiddleware) {
	equipments := g.Group("/equipments")

	equipments.GET("", c.GetEquipments, authMW.RequirePermission(authz.EquipmentView))
	equipments.GET("/:id", c.FindEquipment, authMW.RequirePermission(authz.EquipmentView))
	equipments.POST("", c.CreateEquipment, authMW.RequirePermission(authz.EquipmentCreate))
	equipments.PUT("/:id", c.UpdateEquipment, authMW.RequirePermission(authz.EquipmentUpdate))
	equipments.DELETE("/:id", c.DeleteEquipment, authMW.RequirePermission(authz.EquipmentDelete))
	equipments.POST("/import", c.ImportEquipments, authMW.RequirePermission(authz.EquipmentImport))
}

func runAssignmentRouter(g *echo.Group, c *controllers.AssignmentController, authMW *middleware.AuthMiddleware) {
	assignments := g.Group("/assignments")

	assignments.GET("", c.GetAssignments, authMW.RequirePermission(authz.AssignmentsView))
	assignments.POST("", c.CreateAssignment, authMW.RequirePermission(authz.AssignmentsCreate))
	assignments.POST("/:id/release", c.ReleaseAssignment, authMW.RequirePermission(authz.AssignmentsRelease))
}

func runUserRouter(g *echo.Group, c *controllers.UserController, authMW *middleware.AuthMiddleware) {
	users := g.Group("/users")

	users.GET("", c.GetUsers, authMW.RequirePermission(authz.UsersView))
	users.GET("/:id", c.FindUser, authMW.RequirePermission(authz.UsersView))
	users.POST("", c.CreateUser, authMW.RequirePermission(authz.UsersCreate))
	users.PUT("/:id", c.UpdateUser, authMW.RequirePermission(authz.UsersUpdate))
}

func runMaintenanceRouter(g *echo.Group, c *controllers.MaintenanceController, authMW *middleware.AuthMiddleware) {
	maintenance := g.Group("/maintenance")

	maintenance.POST("/rebuild-visitador-flags", c.RebuildVisitadorFlags, authMW.RequirePermission(authz.MaintenanceRebuildFlags))
}
