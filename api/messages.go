package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backend_frota/middleware"
	"backend_frota/models"
	"backend_frota/services"
)

// MessagesAPI обрабатывает записки между сменами (recados)
type MessagesAPI struct {
	db    *gorm.DB
	audit *services.AuditService
}

// NewMessagesAPI создает новый экземпляр MessagesAPI
func NewMessagesAPI(db *gorm.DB, audit *services.AuditService) *MessagesAPI {
	return &MessagesAPI{db: db, audit: audit}
}

// RegisterRoutes регистрирует маршруты записок
func (ma *MessagesAPI) RegisterRoutes(router *gin.RouterGroup) {
	messages := router.Group("/messages")
	{
		messages.GET("", ma.List)
		messages.POST("", ma.Create)
		messages.PUT("/:id/done", ma.MarkDone)
		messages.DELETE("/:id", ma.Delete)
	}
}

// List возвращает записки, по умолчанию только неотработанные
func (ma *MessagesAPI) List(c *gin.Context) {
	var messages []models.Message

	query := ma.db.Model(&models.Message{}).Order("created_at DESC")
	if c.Query("all") != "true" {
		query = query.Where("resolvido = ?", false)
	}

	if err := query.Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao listar recados"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": messages})
}

// CreateMessageRequest тело запроса создания записки
type CreateMessageRequest struct {
	Author string `json:"author"`
	Text   string `json:"text" binding:"required"`
}

// Create создает новую записку для следующей смены
func (ma *MessagesAPI) Create(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Dados inválidos: " + err.Error()})
		return
	}

	author := req.Author
	if author == "" {
		author = middleware.GetUsername(c)
	}

	message := models.Message{Author: author, Text: req.Text}
	if err := ma.db.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao criar recado"})
		return
	}

	ma.audit.Record(middleware.GetUsername(c), services.ActionCreate, "recado", fmt.Sprintf("recado #%d", message.ID))
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": message})
}

// MarkDone помечает записку как отработанную
func (ma *MessagesAPI) MarkDone(c *gin.Context) {
	message, ok := ma.findMessage(c)
	if !ok {
		return
	}

	if err := ma.db.Model(message).Update("resolvido", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao atualizar recado"})
		return
	}

	ma.audit.Record(middleware.GetUsername(c), services.ActionEdit, "recado", fmt.Sprintf("recado #%d resolvido", message.ID))
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": message})
}

// Delete удаляет записку
func (ma *MessagesAPI) Delete(c *gin.Context) {
	message, ok := ma.findMessage(c)
	if !ok {
		return
	}

	if err := ma.db.Delete(message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao remover recado"})
		return
	}

	ma.audit.Record(middleware.GetUsername(c), services.ActionDelete, "recado", fmt.Sprintf("recado #%d", message.ID))
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Recado removido"})
}

// findMessage загружает записку по :id и пишет ошибку в ответ при неудаче
func (ma *MessagesAPI) findMessage(c *gin.Context) (*models.Message, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "ID inválido"})
		return nil, false
	}

	var message models.Message
	if err := ma.db.First(&message, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Recado não encontrado"})
		return nil, false
	}
	return &message, true
}
