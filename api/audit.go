package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"backend_frota/services"
)

// AuditAPI отдает журнал аудита только для чтения
type AuditAPI struct {
	audit *services.AuditService
}

// NewAuditAPI создает новый экземпляр AuditAPI
func NewAuditAPI(audit *services.AuditService) *AuditAPI {
	return &AuditAPI{audit: audit}
}

// RegisterRoutes регистрирует маршруты журнала аудита
func (aa *AuditAPI) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/audit")
	{
		audit.GET("/logs", aa.GetLogs)
		audit.GET("/stats", aa.GetStats)
	}
}

// GetLogs возвращает записи журнала с фильтрацией
func (aa *AuditAPI) GetLogs(c *gin.Context) {
	filters := services.AuditFilters{
		Username: c.Query("username"),
		Action:   services.AuditAction(c.Query("action")),
		Search:   c.Query("search"),
		Limit:    100,
	}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= 1000 {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filters.Offset = offset
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.ParseInLocation("2006-01-02", from, time.Local); err == nil {
			filters.StartDate = t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.ParseInLocation("2006-01-02", to, time.Local); err == nil {
			// Включительно до конца дня
			filters.EndDate = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}

	logs, err := aa.audit.GetLogs(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": logs, "count": len(logs)})
}

// GetStats возвращает сводку журнала за период day/week/month
func (aa *AuditAPI) GetStats(c *gin.Context) {
	period := c.DefaultQuery("period", "week")

	stats, err := aa.audit.GetStats(period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": stats})
}
