package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backend_frota/config"
	"backend_frota/models"
	"backend_frota/services"
)

// DashboardAPI отдает показатели надежности для dashboard
type DashboardAPI struct {
	db          *gorm.DB
	reliability *services.ReliabilityService
	cache       *services.CacheService
	cfg         *config.Config
}

// NewDashboardAPI создает новый экземпляр DashboardAPI
func NewDashboardAPI(db *gorm.DB, reliability *services.ReliabilityService, cache *services.CacheService, cfg *config.Config) *DashboardAPI {
	return &DashboardAPI{db: db, reliability: reliability, cache: cache, cfg: cfg}
}

// RegisterRoutes регистрирует маршруты dashboard
func (da *DashboardAPI) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("/kpi", da.GetKPI)
		dashboard.GET("/summary", da.GetSummary)
	}
}

// parseWindow читает окно дат из query-параметров; по умолчанию последние 30 дней
func parseWindow(c *gin.Context) (time.Time, time.Time) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if from := c.Query("date_from"); from != "" {
		if t, err := time.ParseInLocation("2006-01-02", from, time.Local); err == nil {
			start = t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.ParseInLocation("2006-01-02", to, time.Local); err == nil {
			end = t
		}
	}

	return start, end
}

// GetKPI возвращает MTBF/MTTR/доступность за окно с разбивками. Результат
// для окна без дополнительных фильтров кэшируется в Redis с коротким TTL.
func (da *DashboardAPI) GetKPI(c *gin.Context) {
	start, end := parseWindow(c)
	filters := parseFilters(c)

	params := services.ReliabilityParams{
		Start:                  start,
		End:                    end,
		OperationalHoursPerDay: da.cfg.Maintenance.OperationalHoursPerDay,
		TopN:                   da.cfg.Maintenance.TopEquipmentLimit,
	}

	unfiltered := len(filters.Statuses) == 0 && len(filters.Priorities) == 0 &&
		len(filters.Classifications) == 0 && len(filters.FleetTags) == 0 &&
		len(filters.OperationTypes) == 0 && len(filters.Managers) == 0

	cacheKey := services.DashboardKey(start, end)
	if unfiltered && da.cache != nil {
		var cached services.ReliabilityReport
		if ok, err := da.cache.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil && ok {
			c.JSON(http.StatusOK, gin.H{"status": "success", "data": cached, "cached": true})
			return
		}
	}

	report, err := da.reliability.AggregateWindow(params, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	if unfiltered && da.cache != nil {
		// Сбой кэша не является ошибкой ответа
		_ = da.cache.SetJSON(c.Request.Context(), cacheKey, report, services.CacheTTLShort)
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": report})
}

// DashboardSummary агрегированные счетчики для шапки dashboard
type DashboardSummary struct {
	TotalWorkOrders  int64     `json:"total_work_orders"`
	OpenWorkOrders   int64     `json:"open_work_orders"`
	ClosedWorkOrders int64     `json:"closed_work_orders"`
	HighPriority     int64     `json:"high_priority_open"`
	StoppedMachines  int64     `json:"stopped_machines"`
	TotalEquipment   int64     `json:"total_equipment"`
	LastUpdated      time.Time `json:"last_updated"`
}

// GetSummary возвращает счетчики состояния парка
func (da *DashboardAPI) GetSummary(c *gin.Context) {
	summary := DashboardSummary{LastUpdated: time.Now()}

	da.db.Model(&models.WorkOrder{}).Count(&summary.TotalWorkOrders)
	da.db.Model(&models.WorkOrder{}).Where("status <> ?", models.StatusFechada).Count(&summary.OpenWorkOrders)
	da.db.Model(&models.WorkOrder{}).Where("status = ?", models.StatusFechada).Count(&summary.ClosedWorkOrders)
	da.db.Model(&models.WorkOrder{}).
		Where("status <> ? AND prioridade = ?", models.StatusFechada, models.PriorityHigh).
		Count(&summary.HighPriority)
	da.db.Model(&models.WorkOrder{}).
		Where("status <> ? AND maquina_parada = ?", models.StatusFechada, true).
		Count(&summary.StoppedMachines)
	da.db.Model(&models.Equipment{}).Count(&summary.TotalEquipment)

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": summary})
}
