package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/repositories"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/config"
	"maintenance-system/pkg/middleware"
	"maintenance-system/pkg/service"
)

// InitRouter собирает весь граф зависимостей и вешает маршруты.
// Репозитории и сервисы создаются в одном месте, чтобы общие зависимости
// (кэш актора, jwt) не дублировались по доменным роутерам.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	logger *zap.Logger,
	cfg *config.Config,
) {
	logger.Info("InitRouter: начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)

	// --- репозитории ---
	userRepo := repositories.NewUserRepository(dbConn, logger)
	teamRepo := repositories.NewTeamRepository(dbConn, logger)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn, logger)
	workCenterRepo := repositories.NewWorkCenterRepository(dbConn, logger)
	requestRepo := repositories.NewRequestRepository(dbConn, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- сервисы ---
	actorService := services.NewActorService(userRepo, cacheRepo, logger, cfg.Maintenance.ActorCacheTTL)
	autofillService := services.NewAutoFillService(equipmentRepo, workCenterRepo, logger)
	authService := services.NewAuthService(userRepo, equipmentRepo, jwtSvc, logger, cfg.Maintenance.PortalStarterEquipment)
	requestService := services.NewRequestService(
		dbConn, requestRepo, equipmentRepo, teamRepo,
		actorService, autofillService, logger, cfg.Maintenance,
	)
	equipmentService := services.NewEquipmentService(equipmentRepo, actorService, logger)
	teamService := services.NewTeamService(teamRepo, userRepo, actorService, logger)
	workCenterService := services.NewWorkCenterService(workCenterRepo, actorService, logger)
	userService := services.NewUserService(userRepo, actorService, logger)
	reportService := services.NewReportService(requestRepo, actorService, logger)

	// --- контроллеры ---
	authCtrl := controllers.NewAuthController(authService, logger)
	requestCtrl := controllers.NewRequestController(requestService, logger)
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, logger)
	teamCtrl := controllers.NewTeamController(teamService, logger)
	workCenterCtrl := controllers.NewWorkCenterController(workCenterService, logger)
	userCtrl := controllers.NewUserController(userService, logger)
	reportCtrl := controllers.NewReportController(reportService, logger)

	// --- маршруты ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authCtrl)
	runRequestRouter(secureGroup, requestCtrl)
	runEquipmentRouter(secureGroup, equipmentCtrl)
	runTeamRouter(secureGroup, teamCtrl)
	runWorkCenterRouter(secureGroup, workCenterCtrl)
	runUserRouter(secureGroup, userCtrl)
	runReportRouter(secureGroup, reportCtrl)

	logger.Info("InitRouter: создание маршрутов завершено")
}
