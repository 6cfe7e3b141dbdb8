package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"backend_frota/middleware"
	"backend_frota/models"
	"backend_frota/services"
)

// WorkOrdersAPI обрабатывает маршруты заявок на обслуживание
type WorkOrdersAPI struct {
	workOrders *services.WorkOrderService
}

// NewWorkOrdersAPI создает новый экземпляр WorkOrdersAPI
func NewWorkOrdersAPI(workOrders *services.WorkOrderService) *WorkOrdersAPI {
	return &WorkOrdersAPI{workOrders: workOrders}
}

// RegisterRoutes регистрирует маршруты заявок
func (wa *WorkOrdersAPI) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/work-orders")
	{
		orders.GET("", wa.List)
		orders.POST("", wa.Create)
		orders.GET("/:id", wa.Get)
		orders.PUT("/:id", wa.Update)
		orders.PUT("/:id/status", wa.UpdateStatus)
		orders.DELETE("/:id", wa.Delete)
		orders.GET("/open/:equipmentId", wa.FindOpen)
	}
}

// parseFilters собирает фильтры выборки из query-параметров
func parseFilters(c *gin.Context) services.WorkOrderFilters {
	filters := services.WorkOrderFilters{}

	for _, s := range splitParam(c.Query("status")) {
		filters.Statuses = append(filters.Statuses, models.WorkOrderStatus(s))
	}
	for _, p := range splitParam(c.Query("priority")) {
		filters.Priorities = append(filters.Priorities, models.Priority(p))
	}
	for _, cl := range splitParam(c.Query("classification")) {
		filters.Classifications = append(filters.Classifications, models.Classification(cl))
	}
	filters.FleetTags = splitParam(c.Query("fleet"))
	filters.Managers = splitParam(c.Query("manager"))

	for _, idStr := range splitParam(c.Query("operation_type")) {
		if id, err := strconv.ParseUint(idStr, 10, 32); err == nil {
			filters.OperationTypes = append(filters.OperationTypes, uint(id))
		}
	}

	if from := c.Query("date_from"); from != "" {
		if t, err := time.ParseInLocation("2006-01-02", from, time.Local); err == nil {
			filters.DateFrom = t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.ParseInLocation("2006-01-02", to, time.Local); err == nil {
			filters.DateTo = t
		}
	}

	return filters
}

// splitParam разбирает параметр вида "a,b,c" в срез непустых значений
func splitParam(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// List возвращает заявки по фильтрам в порядке показа по умолчанию
func (wa *WorkOrdersAPI) List(c *gin.Context) {
	orders, err := wa.workOrders.Query(parseFilters(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"items": orders,
			"total": len(orders),
		},
	})
}

// Get возвращает одну заявку по ID
func (wa *WorkOrdersAPI) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "ID inválido"})
		return
	}

	wo, err := wa.workOrders.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": wo})
}

// Create открывает новую заявку
func (wa *WorkOrdersAPI) Create(c *gin.Context) {
	var wo models.WorkOrder
	if err := c.ShouldBindJSON(&wo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Dados inválidos: " + err.Error()})
		return
	}

	result, err := wa.workOrders.Create(middleware.GetUsername(c), &wo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   "success",
		"data":     result.WorkOrder,
		"warnings": result.Warnings,
	})
}

// Update изменяет поля заявки
func (wa *WorkOrdersAPI) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "ID inválido"})
		return
	}

	existing, err := wa.workOrders.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := c.ShouldBindJSON(existing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Dados inválidos: " + err.Error()})
		return
	}
	existing.ID = uint(id)

	if err := wa.workOrders.Update(middleware.GetUsername(c), existing); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": existing})
}

// statusUpdateRequest тело запроса смены статуса
type statusUpdateRequest struct {
	Status models.WorkOrderStatus `json:"status" binding:"required"`
}

// UpdateStatus переводит заявку в новый статус
func (wa *WorkOrdersAPI) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "ID inválido"})
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Status obrigatório"})
		return
	}

	wo, err := wa.workOrders.UpdateStatus(middleware.GetUsername(c), uint(id), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": wo})
}

// Delete удаляет заявку
func (wa *WorkOrdersAPI) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "ID inválido"})
		return
	}

	if err := wa.workOrders.Delete(middleware.GetUsername(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// FindOpen возвращает открытую заявку по технике (рекомендательная проверка)
func (wa *WorkOrdersAPI) FindOpen(c *gin.Context) {
	equipmentID, err := strconv.ParseUint(c.Param("equipmentId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "ID inválido"})
		return
	}

	wo, err := wa.workOrders.FindOpen(uint(equipmentID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": wo})
}

// respondError переводит типизированные ошибки сервисов в HTTP ответы
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": validationErr.Error()})
		return
	}

	var storageErr *services.StorageError
	if errors.As(err, &storageErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": storageErr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
}
