package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"backend_frota/models"
)

// WorkOrderService владеет жизненным циклом заявок и инвариантом
// "data_fechamento заполнена тогда и только тогда, когда статус Fechada".
type WorkOrderService struct {
	db       *gorm.DB
	audit    *AuditService
	telegram *TelegramClient
	logger   *log.Logger

	// Единая точка получения локального времени; в тестах подменяется
	Now func() time.Time
}

// NewWorkOrderService создает новый сервис заявок
func NewWorkOrderService(db *gorm.DB, audit *AuditService, logger *log.Logger) *WorkOrderService {
	return &WorkOrderService{
		db:     db,
		audit:  audit,
		logger: logger,
		Now:    time.Now,
	}
}

// SetTelegramClient подключает необязательные Telegram-уведомления
func (ws *WorkOrderService) SetTelegramClient(tc *TelegramClient) {
	ws.telegram = tc
}

// CreateResult результат создания заявки с необязательным предупреждением
type CreateResult struct {
	WorkOrder *models.WorkOrder    `json:"work_order"`
	Warnings  []DataQualityWarning `json:"warnings,omitempty"`
}

// Create создает заявку, применяя значения по умолчанию: статус Pendente,
// приоритет Média, классификация Corretiva. Ссылки на технику и категорию
// обязаны разрешаться в существующие записи справочников.
//
// Проверка "по технике уже есть открытая заявка" намеренно рекомендательная:
// читаем и предупреждаем, но вторую заявку не блокируем (известная гонка,
// а не дефект).
func (ws *WorkOrderService) Create(actingUser string, wo *models.WorkOrder) (*CreateResult, error) {
	if wo.EquipmentID == 0 {
		return nil, NewValidationError("equipamento_id", "campo obrigatório")
	}
	if wo.OperationTypeID == 0 {
		return nil, NewValidationError("tipo_operacao_id", "campo obrigatório")
	}

	var equipment models.Equipment
	if err := ws.db.First(&equipment, wo.EquipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("equipamento_id", fmt.Sprintf("equipamento %d não existe", wo.EquipmentID))
		}
		return nil, NewStorageError("workorder.create", err)
	}

	var opType models.OperationType
	if err := ws.db.First(&opType, wo.OperationTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("tipo_operacao_id", fmt.Sprintf("tipo de operação %d não existe", wo.OperationTypeID))
		}
		return nil, NewStorageError("workorder.create", err)
	}

	// Значения по умолчанию
	if wo.Status == "" {
		wo.Status = models.StatusPendente
	}
	if wo.Priority == "" {
		wo.Priority = models.PriorityMedium
	}
	if wo.Classification == "" {
		wo.Classification = models.ClassCorrective
	}
	if wo.OpenedAt.IsZero() {
		wo.OpenedAt = ws.Now()
	}

	if !wo.Status.IsValid() {
		return nil, NewValidationError("status", fmt.Sprintf("status inválido: %s", wo.Status))
	}
	if !wo.Priority.IsValid() {
		return nil, NewValidationError("prioridade", fmt.Sprintf("prioridade inválida: %s", wo.Priority))
	}
	if !wo.Classification.IsValid() {
		return nil, NewValidationError("classificacao", fmt.Sprintf("classificação inválida: %s", wo.Classification))
	}

	// Инвариант закрытия при создании
	if wo.Status.IsClosed() && wo.ClosedAt == nil {
		now := ws.Now()
		wo.ClosedAt = &now
	}
	if !wo.Status.IsClosed() {
		wo.ClosedAt = nil
	}

	result := &CreateResult{}

	// Рекомендательная проверка на дубликат открытой заявки
	if open, err := ws.FindOpen(wo.EquipmentID); err == nil && open != nil {
		result.Warnings = append(result.Warnings, DataQualityWarning{
			WorkOrderID: open.ID,
			Kind:        WarnOpenDuplicate,
			Detail:      fmt.Sprintf("equipamento %s já possui a OS %d em aberto", equipment.FleetTag, open.ID),
		})
	}

	if err := ws.db.Create(wo).Error; err != nil {
		return nil, NewStorageError("workorder.create", err)
	}

	result.WorkOrder = wo

	if ws.audit != nil {
		ws.audit.Record(actingUser, ActionCreate, fmt.Sprintf("OS %d", wo.ID),
			fmt.Sprintf("Abertura de OS para equipamento %s (%s)", equipment.FleetTag, opType.Name))
	}

	// Уведомление по высокому приоритету: только best-effort
	if ws.telegram != nil && wo.Priority == models.PriorityHigh {
		if err := ws.telegram.NotifyWorkOrder(wo, equipment.FleetTag, opType.Name); err != nil && ws.logger != nil {
			ws.logger.Printf("⚠️  Falha ao notificar OS %d via Telegram: %v", wo.ID, err)
		}
	}

	return result, nil
}

// UpdateStatus переводит заявку в новый статус одним атомарным обновлением.
// Переход в Fechada проставляет data_fechamento текущим локальным временем,
// любой другой переход очищает ее. Повторный перевод в тот же статус
// идемпотентен: уже закрытая заявка сохраняет прежнюю data_fechamento.
func (ws *WorkOrderService) UpdateStatus(actingUser string, id uint, newStatus models.WorkOrderStatus) (*models.WorkOrder, error) {
	if !newStatus.IsValid() {
		return nil, NewValidationError("status", fmt.Sprintf("status inválido: %s", newStatus))
	}

	var wo models.WorkOrder
	if err := ws.db.First(&wo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("id", fmt.Sprintf("OS %d não existe", id))
		}
		return nil, NewStorageError("workorder.update_status", err)
	}

	updates := map[string]interface{}{"status": newStatus}

	switch {
	case newStatus.IsClosed() && wo.ClosedAt == nil:
		now := ws.Now()
		updates["data_fechamento"] = &now
	case newStatus.IsClosed() && wo.ClosedAt != nil:
		// Уже закрыта: data_fechamento не трогаем
	default:
		updates["data_fechamento"] = nil
	}

	// Одно атомарное обновление строки; при сбое прежнее состояние не меняется
	if err := ws.db.Model(&models.WorkOrder{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, NewStorageError("workorder.update_status", err)
	}

	if err := ws.db.First(&wo, id).Error; err != nil {
		return nil, NewStorageError("workorder.update_status", err)
	}

	if ws.audit != nil {
		ws.audit.Record(actingUser, ActionEdit, fmt.Sprintf("OS %d", id),
			fmt.Sprintf("Status alterado para %s", newStatus))
	}

	return &wo, nil
}

// Update изменяет изменяемые поля заявки, сохраняя инвариант закрытия
func (ws *WorkOrderService) Update(actingUser string, wo *models.WorkOrder) error {
	if !wo.Status.IsValid() {
		return NewValidationError("status", fmt.Sprintf("status inválido: %s", wo.Status))
	}

	if wo.Status.IsClosed() && wo.ClosedAt == nil {
		now := ws.Now()
		wo.ClosedAt = &now
	}
	if !wo.Status.IsClosed() {
		wo.ClosedAt = nil
	}

	if err := ws.db.Save(wo).Error; err != nil {
		return NewStorageError("workorder.update", err)
	}

	if ws.audit != nil {
		ws.audit.Record(actingUser, ActionEdit, fmt.Sprintf("OS %d", wo.ID), "Edição de OS")
	}

	return nil
}

// Delete удаляет заявку (мягкое удаление GORM)
func (ws *WorkOrderService) Delete(actingUser string, id uint) error {
	var wo models.WorkOrder
	if err := ws.db.First(&wo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("id", fmt.Sprintf("OS %d não existe", id))
		}
		return NewStorageError("workorder.delete", err)
	}

	if err := ws.db.Delete(&wo).Error; err != nil {
		return NewStorageError("workorder.delete", err)
	}

	if ws.audit != nil {
		ws.audit.Record(actingUser, ActionDelete, fmt.Sprintf("OS %d", id), "Exclusão de OS")
	}

	return nil
}

// FindOpen возвращает самую свежую незакрытую заявку по технике либо nil
func (ws *WorkOrderService) FindOpen(equipmentID uint) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	err := ws.db.
		Where("equipamento_id = ? AND status <> ?", equipmentID, models.StatusFechada).
		Order("data_abertura DESC").
		First(&wo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, NewStorageError("workorder.find_open", err)
	}
	return &wo, nil
}

// WorkOrderFilters параметры выборки заявок
type WorkOrderFilters struct {
	Statuses        []models.WorkOrderStatus
	Priorities      []models.Priority
	Classifications []models.Classification
	FleetTags       []string
	OperationTypes  []uint
	Managers        []string
	DateFrom        time.Time // Включительно, по data_abertura
	DateTo          time.Time // Включительно
}

// Query возвращает заявки по фильтрам в порядке показа по умолчанию:
// сначала приоритет Alta, затем data_abertura по убыванию.
func (ws *WorkOrderService) Query(filters WorkOrderFilters) ([]models.WorkOrder, error) {
	query := ws.db.Model(&models.WorkOrder{}).
		Joins("JOIN equipamentos ON equipamentos.id = ordens_servico.equipamento_id").
		Preload("Equipment").
		Preload("OperationType").
		Preload("Executant").
		Preload("Requester")

	if len(filters.Statuses) > 0 {
		query = query.Where("ordens_servico.status IN ?", filters.Statuses)
	}
	if len(filters.Priorities) > 0 {
		query = query.Where("ordens_servico.prioridade IN ?", filters.Priorities)
	}
	if len(filters.Classifications) > 0 {
		query = query.Where("ordens_servico.classificacao IN ?", filters.Classifications)
	}
	if len(filters.FleetTags) > 0 {
		query = query.Where("equipamentos.frota IN ?", filters.FleetTags)
	}
	if len(filters.OperationTypes) > 0 {
		query = query.Where("ordens_servico.tipo_operacao_id IN ?", filters.OperationTypes)
	}
	if len(filters.Managers) > 0 {
		query = query.Where("equipamentos.gestor IN ?", filters.Managers)
	}
	if !filters.DateFrom.IsZero() {
		query = query.Where("ordens_servico.data_abertura >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		// Включительно до конца дня границы
		endOfDay := time.Date(filters.DateTo.Year(), filters.DateTo.Month(), filters.DateTo.Day(),
			23, 59, 59, int(time.Second-time.Nanosecond), filters.DateTo.Location())
		query = query.Where("ordens_servico.data_abertura <= ?", endOfDay)
	}

	query = query.Order(fmt.Sprintf("CASE WHEN ordens_servico.prioridade = '%s' THEN 0 ELSE 1 END", models.PriorityHigh)).
		Order("ordens_servico.data_abertura DESC")

	var orders []models.WorkOrder
	if err := query.Find(&orders).Error; err != nil {
		return nil, NewStorageError("workorder.query", err)
	}

	return orders, nil
}

// GetByID возвращает заявку со связанными справочниками
func (ws *WorkOrderService) GetByID(id uint) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	err := ws.db.
		Preload("Equipment").
		Preload("OperationType").
		Preload("Executant").
		Preload("Requester").
		First(&wo, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("id", fmt.Sprintf("OS %d não existe", id))
		}
		return nil, NewStorageError("workorder.get", err)
	}
	return &wo, nil
}
