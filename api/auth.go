package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"backend_frota/config"
	"backend_frota/middleware"
	"backend_frota/models"
	"backend_frota/services"
)

// LoginRequest тело запроса входа
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=3,max=64"`
}

// AuthAPI обрабатывает вход в систему
type AuthAPI struct {
	db    *gorm.DB
	cfg   *config.Config
	audit *services.AuditService
}

// NewAuthAPI создает новый экземпляр AuthAPI
func NewAuthAPI(db *gorm.DB, cfg *config.Config, audit *services.AuditService) *AuthAPI {
	return &AuthAPI{db: db, cfg: cfg, audit: audit}
}

// RegisterRoutes регистрирует маршруты аутентификации
func (aa *AuthAPI) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/login", middleware.LoginRateLimit(), aa.Login)
}

// Login проверяет учетные данные и выдает JWT сессии
func (aa *AuthAPI) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Usuário ou senha inválidos"})
		return
	}

	var user models.User
	if err := aa.db.Where("usuario = ? AND ativo = ?", req.Username, true).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Usuário ou senha inválidos"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Usuário ou senha inválidos"})
		return
	}

	now := time.Now()
	claims := middleware.Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    aa.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(aa.cfg.JWT.ExpiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(aa.cfg.JWT.Secret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Falha ao emitir token"})
		return
	}

	if aa.audit != nil {
		aa.audit.Record(user.Username, services.ActionLogin, "Sistema", "Login efetuado de "+c.ClientIP())
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"token": signed,
			"user": gin.H{
				"username": user.Username,
				"name":     user.Name,
				"role":     user.Role,
			},
		},
	})
}
