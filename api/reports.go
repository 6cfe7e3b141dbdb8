package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backend_frota/config"
	"backend_frota/middleware"
	"backend_frota/models"
	"backend_frota/services"
)

// ReportsAPI обрабатывает генерацию и скачивание отчетов
type ReportsAPI struct {
	db      *gorm.DB
	reports *services.ReportService
	cfg     *config.Config
}

// NewReportsAPI создает новый экземпляр ReportsAPI
func NewReportsAPI(db *gorm.DB, reports *services.ReportService, cfg *config.Config) *ReportsAPI {
	return &ReportsAPI{db: db, reports: reports, cfg: cfg}
}

// RegisterRoutes регистрирует маршруты отчетов
func (ra *ReportsAPI) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.GET("", ra.ListReports)
		reports.POST("/generate", ra.GenerateReport)
		reports.GET("/:id", ra.GetReport)
		reports.GET("/:id/download", ra.DownloadReport)
	}
}

// GenerateReportRequest параметры запроса генерации отчета
type GenerateReportRequest struct {
	DateFrom string `json:"date_from" binding:"required"` // Формат 2006-01-02
	DateTo   string `json:"date_to" binding:"required"`
	Format   string `json:"format"`
}

// GenerateReport считает показатели за окно и генерирует файл отчета
func (ra *ReportsAPI) GenerateReport(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Dados inválidos: " + err.Error()})
		return
	}

	start, end, err := parseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	format := models.ReportFormat(req.Format)
	if format == "" {
		format = models.ReportFormatPDF
	}
	switch format {
	case models.ReportFormatPDF, models.ReportFormatExcel, models.ReportFormatCSV, models.ReportFormatJSON:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Formato não suportado: " + req.Format})
		return
	}

	params := services.ReliabilityParams{
		Start:                  start,
		End:                    end,
		OperationalHoursPerDay: ra.cfg.Maintenance.OperationalHoursPerDay,
		TopN:                   ra.cfg.Maintenance.TopEquipmentLimit,
	}

	report, err := ra.reports.GenerateReliabilityReport(middleware.GetUsername(c), params, parseFilters(c), format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": report})
}

// ListReports возвращает историю сгенерированных отчетов
func (ra *ReportsAPI) ListReports(c *gin.Context) {
	var reports []models.Report

	query := ra.db.Model(&models.Report{}).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	limit := 50
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}

	if err := query.Limit(limit).Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao listar relatórios"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": reports})
}

// GetReport возвращает метаданные отчета
func (ra *ReportsAPI) GetReport(c *gin.Context) {
	report, ok := ra.findReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": report})
}

// DownloadReport отдает сгенерированный файл отчета
func (ra *ReportsAPI) DownloadReport(c *gin.Context) {
	report, ok := ra.findReport(c)
	if !ok {
		return
	}

	if report.Status != models.ReportStatusCompleted || report.FilePath == "" {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": "Relatório ainda não está disponível"})
		return
	}

	c.FileAttachment(report.FilePath, filepath.Base(report.FilePath))
}

// parseDateRange разбирает границы окна отчета в локальной временной зоне
func parseDateRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", from, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data inicial inválida: %s", from)
	}
	end, err := time.ParseInLocation("2006-01-02", to, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data final inválida: %s", to)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("data final anterior à data inicial")
	}
	return start, end, nil
}

// findReport загружает отчет по :id и пишет ошибку в ответ при неудаче
func (ra *ReportsAPI) findReport(c *gin.Context) (*models.Report, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "ID inválido"})
		return nil, false
	}

	var report models.Report
	if err := ra.db.First(&report, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Relatório não encontrado"})
		return nil, false
	}
	return &report, true
}
