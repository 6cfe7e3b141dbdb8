package services

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// AuditLog модель записи журнала действий. Журнал только пополняется:
// путей обновления или удаления записей не существует.
type AuditLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Username string      `json:"username" gorm:"column:usuario;not null;index;type:varchar(100)"` // Метка действующего пользователя
	Action   AuditAction `json:"action" gorm:"column:acao;not null;index;type:varchar(30)"`
	Target   string      `json:"target" gorm:"column:alvo;type:varchar(200)"` // Что было затронуто
	Detail   string      `json:"detail" gorm:"column:detalhe;type:text"`
}

// TableName задает имя таблицы для модели AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditAction тип действия для журнала
type AuditAction string

const (
	ActionCreate AuditAction = "Criação"
	ActionEdit   AuditAction = "Edição"
	ActionDelete AuditAction = "Exclusão"
	ActionLogin  AuditAction = "Login"
)

// AuditService сервис журнала действий
type AuditService struct {
	db     *gorm.DB
	logger *log.Logger
}

// NewAuditService создает новый сервис журнала
func NewAuditService(db *gorm.DB, logger *log.Logger) *AuditService {
	return &AuditService{
		db:     db,
		logger: logger,
	}
}

// Record добавляет запись в журнал. Вызов fire-and-forget: сбой записи
// никогда не откатывает и не блокирует породившую его бизнес-операцию,
// ошибка лишь фиксируется в локальном логе.
func (as *AuditService) Record(username string, action AuditAction, target, detail string) {
	entry := &AuditLog{
		Username:  username,
		Action:    action,
		Target:    target,
		Detail:    detail,
		CreatedAt: time.Now(),
	}

	if err := as.db.Create(entry).Error; err != nil {
		if as.logger != nil {
			as.logger.Printf("⚠️  Não foi possível gravar audit log: %v", err)
		}
	}
}

// AuditFilters фильтры для выборки журнала
type AuditFilters struct {
	Username  string
	Action    AuditAction
	Search    string // Поиск по подстроке в alvo и detalhe
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Offset    int
}

// GetLogs возвращает записи журнала с фильтрацией, новые первыми
func (as *AuditService) GetLogs(filters AuditFilters) ([]AuditLog, error) {
	query := as.db.Model(&AuditLog{})

	if filters.Username != "" {
		query = query.Where("usuario = ?", filters.Username)
	}

	if filters.Action != "" {
		query = query.Where("acao = ?", filters.Action)
	}

	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("alvo LIKE ? OR detalhe LIKE ?", like, like)
	}

	if !filters.StartDate.IsZero() {
		query = query.Where("created_at >= ?", filters.StartDate)
	}

	if !filters.EndDate.IsZero() {
		query = query.Where("created_at <= ?", filters.EndDate)
	}

	query = query.Order("created_at DESC")

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var logs []AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, NewStorageError("audit.list", err)
	}

	return logs, nil
}

// AuditStats сводка журнала для страницы соответствия
type AuditStats struct {
	Period      string           `json:"period"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	TotalLogs   int64            `json:"total_logs"`
	PerAction   map[string]int64 `json:"per_action"`
	TopUsers    map[string]int64 `json:"top_users"`
	LoginsCount int64            `json:"logins_count"`
}

// GetStats возвращает статистику журнала за период (day/week/month)
func (as *AuditService) GetStats(period string) (*AuditStats, error) {
	var startDate time.Time
	now := time.Now()

	switch period {
	case "day":
		startDate = now.AddDate(0, 0, -1)
	case "month":
		startDate = now.AddDate(0, -1, 0)
	default:
		period = "week"
		startDate = now.AddDate(0, 0, -7)
	}

	stats := &AuditStats{
		Period:    period,
		StartDate: startDate,
		EndDate:   now,
		PerAction: make(map[string]int64),
		TopUsers:  make(map[string]int64),
	}

	if err := as.db.Model(&AuditLog{}).
		Where("created_at >= ?", startDate).
		Count(&stats.TotalLogs).Error; err != nil {
		return nil, NewStorageError("audit.stats", err)
	}

	type actionCount struct {
		Acao  string `json:"acao"`
		Count int64  `json:"count"`
	}

	var perAction []actionCount
	if err := as.db.Model(&AuditLog{}).
		Select("acao, COUNT(*) as count").
		Where("created_at >= ?", startDate).
		Group("acao").
		Find(&perAction).Error; err != nil {
		return nil, NewStorageError("audit.stats", err)
	}

	for _, ac := range perAction {
		stats.PerAction[ac.Acao] = ac.Count
		if ac.Acao == string(ActionLogin) {
			stats.LoginsCount = ac.Count
		}
	}

	type userCount struct {
		Usuario string `json:"usuario"`
		Count   int64  `json:"count"`
	}

	var topUsers []userCount
	if err := as.db.Model(&AuditLog{}).
		Select("usuario, COUNT(*) as count").
		Where("created_at >= ?", startDate).
		Group("usuario").
		Order("count DESC").
		Limit(10).
		Find(&topUsers).Error; err != nil {
		return nil, NewStorageError("audit.stats", err)
	}

	for _, uc := range topUsers {
		stats.TopUsers[uc.Usuario] = uc.Count
	}

	return stats, nil
}
