package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backend_frota/middleware"
	"backend_frota/models"
	"backend_frota/services"
)

// EquipmentAPI обрабатывает маршруты справочника техники
type EquipmentAPI struct {
	db        *gorm.DB
	equipment *services.EquipmentService
}

// NewEquipmentAPI создает новый экземпляр EquipmentAPI
func NewEquipmentAPI(db *gorm.DB, equipment *services.EquipmentService) *EquipmentAPI {
	return &EquipmentAPI{db: db, equipment: equipment}
}

// RegisterRoutes регистрирует маршруты техники
func (ea *EquipmentAPI) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/equipment")
	{
		group.GET("", ea.List)
		group.POST("", ea.Create)
		group.PUT("/:id/manager", ea.ReassignManager)
		group.PUT("/manager/bulk", ea.BulkReassignManager)
		group.POST("/import", ea.Import)
	}
}

// List возвращает технику с необязательным фильтром по руководителю
func (ea *EquipmentAPI) List(c *gin.Context) {
	query := ea.db.Model(&models.Equipment{}).Order("frota")

	if manager := c.Query("manager"); manager != "" {
		query = query.Where("gestor = ?", manager)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("frota LIKE ? OR modelo LIKE ?", like, like)
	}

	var equipment []models.Equipment
	if err := query.Find(&equipment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao listar equipamentos: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"items": equipment,
			"total": len(equipment),
		},
	})
}

// Create добавляет единицу техники
func (ea *EquipmentAPI) Create(c *gin.Context) {
	var eq models.Equipment
	if err := c.ShouldBindJSON(&eq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Dados inválidos: " + err.Error()})
		return
	}

	if err := ea.equipment.Create(middleware.GetUsername(c), &eq); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": eq})
}

// managerRequest тело запроса смены руководителя
type managerRequest struct {
	Manager string `json:"manager" binding:"required"`
}

// ReassignManager меняет ответственного руководителя у единицы техники
func (ea *EquipmentAPI) ReassignManager(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "ID inválido"})
		return
	}

	var req managerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Gestor obrigatório"})
		return
	}

	if err := ea.equipment.ReassignManager(middleware.GetUsername(c), uint(id), req.Manager); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// bulkManagerRequest тело массовой смены руководителя
type bulkManagerRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// BulkReassignManager переводит всю технику одного руководителя на другого
func (ea *EquipmentAPI) BulkReassignManager(c *gin.Context) {
	var req bulkManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Campos from e to obrigatórios"})
		return
	}

	affected, err := ea.equipment.BulkReassignManager(middleware.GetUsername(c), req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"affected": affected}})
}

// Import импортирует технику из планилки Excel
func (ea *EquipmentAPI) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Arquivo obrigatório"})
		return
	}
	defer file.Close()

	result, err := ea.equipment.ImportFromExcel(middleware.GetUsername(c), file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": result})
}
