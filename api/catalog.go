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

// CatalogAPI обрабатывает справочники: сотрудники, категории, участки
type CatalogAPI struct {
	db    *gorm.DB
	audit *services.AuditService
}

// NewCatalogAPI создает новый экземпляр CatalogAPI
func NewCatalogAPI(db *gorm.DB, audit *services.AuditService) *CatalogAPI {
	return &CatalogAPI{db: db, audit: audit}
}

// RegisterRoutes регистрирует маршруты справочников
func (ca *CatalogAPI) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/employees", ca.ListEmployees)
	router.POST("/employees", ca.CreateEmployee)
	router.DELETE("/employees/:id", ca.DeleteEmployee)

	router.GET("/operation-types", ca.ListOperationTypes)
	router.POST("/operation-types", ca.CreateOperationType)

	router.GET("/areas", ca.ListAreas)
	router.POST("/areas", ca.CreateArea)
}

// ListEmployees возвращает сотрудников
func (ca *CatalogAPI) ListEmployees(c *gin.Context) {
	query := ca.db.Model(&models.Employee{}).Order("nome")

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("nome LIKE ? OR matricula LIKE ?", like, like)
	}

	var employees []models.Employee
	if err := query.Find(&employees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao listar funcionários: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": employees})
}

// CreateEmployee добавляет сотрудника
func (ca *CatalogAPI) CreateEmployee(c *gin.Context) {
	var employee models.Employee
	if err := c.ShouldBindJSON(&employee); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Dados inválidos: " + err.Error()})
		return
	}

	if employee.Name == "" || employee.Registration == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Nome e matrícula são obrigatórios"})
		return
	}

	if err := ca.db.Create(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao criar funcionário: " + err.Error()})
		return
	}

	if ca.audit != nil {
		ca.audit.Record(middleware.GetUsername(c), services.ActionCreate,
			"Funcionário "+employee.Registration, "Cadastro de funcionário "+employee.Name)
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": employee})
}

// DeleteEmployee удаляет сотрудника (мягкое удаление)
func (ca *CatalogAPI) DeleteEmployee(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "ID inválido"})
		return
	}

	result := ca.db.Delete(&models.Employee{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao excluir funcionário: " + result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Funcionário não encontrado"})
		return
	}

	if ca.audit != nil {
		ca.audit.Record(middleware.GetUsername(c), services.ActionDelete,
			"Funcionário "+strconv.FormatUint(id, 10), "Exclusão de funcionário")
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// ListOperationTypes возвращает категории обслуживания
func (ca *CatalogAPI) ListOperationTypes(c *gin.Context) {
	var types []models.OperationType
	if err := ca.db.Order("nome").Find(&types).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao listar tipos de operação: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": types})
}

// CreateOperationType добавляет категорию обслуживания
func (ca *CatalogAPI) CreateOperationType(c *gin.Context) {
	var opType models.OperationType
	if err := c.ShouldBindJSON(&opType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Dados inválidos: " + err.Error()})
		return
	}

	if opType.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Nome é obrigatório"})
		return
	}

	if err := ca.db.Create(&opType).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao criar tipo de operação: " + err.Error()})
		return
	}

	if ca.audit != nil {
		ca.audit.Record(middleware.GetUsername(c), services.ActionCreate,
			"Tipo de operação "+opType.Name, "Cadastro de tipo de operação")
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": opType})
}

// ListAreas возвращает участки
func (ca *CatalogAPI) ListAreas(c *gin.Context) {
	var areas []models.Area
	if err := ca.db.Order("codigo").Find(&areas).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao listar áreas: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": areas})
}

// CreateArea добавляет участок
func (ca *CatalogAPI) CreateArea(c *gin.Context) {
	var area models.Area
	if err := c.ShouldBindJSON(&area); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Dados inválidos: " + err.Error()})
		return
	}

	if area.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Código é obrigatório"})
		return
	}

	if err := ca.db.Create(&area).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao criar área: " + err.Error()})
		return
	}

	if ca.audit != nil {
		ca.audit.Record(middleware.GetUsername(c), services.ActionCreate,
			"Área "+area.Code, "Cadastro de área")
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": area})
}
