package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"backend_frota/models"
)

// EquipmentService операции над справочником техники
type EquipmentService struct {
	db     *gorm.DB
	audit  *AuditService
	logger *log.Logger
}

// NewEquipmentService создает новый сервис справочника техники
func NewEquipmentService(db *gorm.DB, audit *AuditService, logger *log.Logger) *EquipmentService {
	return &EquipmentService{db: db, audit: audit, logger: logger}
}

// Create добавляет единицу техники. Номер парка обязателен и уникален.
func (es *EquipmentService) Create(actingUser string, eq *models.Equipment) error {
	eq.FleetTag = strings.TrimSpace(eq.FleetTag)
	if eq.FleetTag == "" {
		return NewValidationError("frota", "campo obrigatório")
	}

	var existing models.Equipment
	err := es.db.Where("frota = ?", eq.FleetTag).First(&existing).Error
	if err == nil {
		return NewValidationError("frota", fmt.Sprintf("frota %s já cadastrada", eq.FleetTag))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return NewStorageError("equipment.create", err)
	}

	if err := es.db.Create(eq).Error; err != nil {
		return NewStorageError("equipment.create", err)
	}

	if es.audit != nil {
		es.audit.Record(actingUser, ActionCreate, "Equipamento "+eq.FleetTag, "Cadastro de equipamento")
	}
	return nil
}

// ReassignManager меняет ответственного руководителя у одной единицы техники
func (es *EquipmentService) ReassignManager(actingUser string, id uint, manager string) error {
	result := es.db.Model(&models.Equipment{}).Where("id = ?", id).Update("gestor", manager)
	if result.Error != nil {
		return NewStorageError("equipment.reassign", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewValidationError("id", fmt.Sprintf("equipamento %d não existe", id))
	}

	if es.audit != nil {
		es.audit.Record(actingUser, ActionEdit, fmt.Sprintf("Equipamento %d", id),
			"Gestor alterado para "+manager)
	}
	return nil
}

// BulkReassignManager переводит всю технику одного руководителя на другого
func (es *EquipmentService) BulkReassignManager(actingUser, fromManager, toManager string) (int64, error) {
	result := es.db.Model(&models.Equipment{}).
		Where("gestor = ?", fromManager).
		Update("gestor", toManager)
	if result.Error != nil {
		return 0, NewStorageError("equipment.bulk_reassign", result.Error)
	}

	if es.audit != nil {
		es.audit.Record(actingUser, ActionEdit, "Equipamentos",
			fmt.Sprintf("Gestor %s substituído por %s em %d equipamentos", fromManager, toManager, result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// ImportResult итог импорта планилки с техникой
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportFromExcel импортирует технику из планилки с колонками
// Frota | Modelo | Gestor (первая строка — заголовок). Уже существующие
// номера парка пропускаются, строки без номера собираются в ошибки.
func (es *EquipmentService) ImportFromExcel(actingUser string, reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, NewValidationError("arquivo", fmt.Sprintf("planilha inválida: %v", err))
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, NewValidationError("arquivo", fmt.Sprintf("falha ao ler planilha: %v", err))
	}

	result := &ImportResult{}

	for i, row := range rows {
		if i == 0 {
			continue // Заголовок
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: frota vazia", i+1))
			continue
		}

		eq := models.Equipment{FleetTag: strings.TrimSpace(row[0])}
		if len(row) > 1 {
			eq.Model = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			eq.Manager = strings.TrimSpace(row[2])
		}

		var existing models.Equipment
		err := es.db.Where("frota = ?", eq.FleetTag).First(&existing).Error
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return result, NewStorageError("equipment.import", err)
		}

		if err := es.db.Create(&eq).Error; err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: %v", i+1, err))
			continue
		}
		result.Created++
	}

	if es.audit != nil {
		es.audit.Record(actingUser, ActionCreate, "Equipamentos",
			fmt.Sprintf("Importação de planilha: %d criados, %d ignorados", result.Created, result.Skipped))
	}

	if es.logger != nil {
		es.logger.Printf("✅ Importação de equipamentos: %d criados, %d ignorados, %d erros",
			result.Created, result.Skipped, len(result.Errors))
	}

	return result, nil
}
