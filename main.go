package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"backend_frota/api"
	"backend_frota/config"
	"backend_frota/database"
	"backend_frota/middleware"
	"backend_frota/services"
)

// initDB инициализирует подключение к базе данных
func initDB() {
	log.Println("🔧 Инициализация базы данных...")

	// Создаем базу данных, если она не существует
	if err := database.CreateDatabaseIfNotExists(); err != nil {
		log.Fatal("❌ Ошибка при создании базы данных:", err)
	}

	// Подключаемся к базе данных
	if err := database.ConnectDatabase(); err != nil {
		log.Fatal("❌ Ошибка подключения к базе данных:", err)
	}

	// Индексы для тяжелых выборок dashboard
	if err := database.CreatePerformanceIndexes(database.DB); err != nil {
		log.Printf("⚠️  Не все индексы созданы: %v", err)
	}

	log.Println("✅ База данных успешно инициализирована")
}

func main() {
	// Загружаем конфигурацию (включая .env файл)
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("❌ Ошибка загрузки конфигурации:", err)
	}

	// Инициализируем базу данных
	initDB()

	// Redis необязателен: без него отключаются кэш и rate limiting
	if err := database.InitRedis(); err != nil {
		log.Printf("⚠️  Redis недоступен, кэширование отключено: %v", err)
	}

	logger := log.Default()

	// Сервисы
	auditService := services.NewAuditService(database.DB, logger)
	workOrderService := services.NewWorkOrderService(database.DB, auditService, logger)
	equipmentService := services.NewEquipmentService(database.DB, auditService, logger)
	reliabilityService := services.NewReliabilityService(database.DB)
	cacheService := services.NewCacheService(database.GetRedis(), logger)

	reportService := services.NewReportService(database.DB, reliabilityService)
	reportService.OutputDir = cfg.Maintenance.ReportsDir

	// Telegram-уведомления о срочных OS (необязательно)
	if cfg.Telegram.BotToken != "" {
		telegramClient, err := services.NewTelegramClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("⚠️  Telegram недоступен: %v", err)
		} else {
			workOrderService.SetTelegramClient(telegramClient)
			log.Println("✅ Telegram-уведомления включены")
		}
	}

	// Ежедневный отчет по расписанию
	scheduler := services.NewReportSchedulerService(reportService, logger)
	if err := scheduler.Start(); err != nil {
		log.Printf("⚠️  Планировщик отчетов не запущен: %v", err)
	}
	defer scheduler.Stop()

	// Настраиваем Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}))

	// Базовые роуты
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "success",
			"message":  "pong",
			"database": "connected",
		})
	})

	// Публичные роуты (логин)
	public := r.Group("/api")
	authAPI := api.NewAuthAPI(database.DB, cfg, auditService)
	authAPI.RegisterRoutes(public)

	// Защищенные роуты
	authMiddleware := middleware.NewAuthMiddleware(cfg)
	protected := r.Group("/api")
	protected.Use(authMiddleware.RequireAuth())
	protected.Use(middleware.APIRateLimit())

	api.NewWorkOrdersAPI(workOrderService).RegisterRoutes(protected)
	api.NewEquipmentAPI(database.DB, equipmentService).RegisterRoutes(protected)
	api.NewCatalogAPI(database.DB, auditService).RegisterRoutes(protected)
	api.NewDashboardAPI(database.DB, reliabilityService, cacheService, cfg).RegisterRoutes(protected)
	api.NewReportsAPI(database.DB, reportService, cfg).RegisterRoutes(protected)
	api.NewAuditAPI(auditService).RegisterRoutes(protected)
	api.NewMessagesAPI(database.DB, auditService).RegisterRoutes(protected)

	log.Printf("🚀 Сервер запущен на порту %s", cfg.App.Port)
	if err := r.Run(cfg.App.Host + ":" + cfg.App.Port); err != nil {
		log.Fatal("❌ Ошибка запуска сервера:", err)
	}
}
