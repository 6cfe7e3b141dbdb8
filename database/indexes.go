package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

// DatabaseIndex представляет индекс базы данных
type DatabaseIndex struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// PerformanceIndexes индексы под основные выборки dashboard и отчетов
var PerformanceIndexes = []DatabaseIndex{
	// Выборка заявок по статусу и дате открытия
	{
		Name:    "idx_os_status_abertura",
		Table:   "ordens_servico",
		Columns: []string{"status", "data_abertura"},
	},
	// Агрегация отказов: классификация + остановка техники
	{
		Name:    "idx_os_classificacao_parada",
		Table:   "ordens_servico",
		Columns: []string{"classificacao", "maquina_parada"},
	},
	// Матрица техника × смена
	{
		Name:    "idx_os_equipamento_abertura",
		Table:   "ordens_servico",
		Columns: []string{"equipamento_id", "data_abertura"},
	},
	// Журнал: выборки по пользователю и действию
	{
		Name:    "idx_audit_usuario_data",
		Table:   "audit_logs",
		Columns: []string{"usuario", "created_at"},
	},
	{
		Name:    "idx_audit_acao_data",
		Table:   "audit_logs",
		Columns: []string{"acao", "created_at"},
	},
}

// CreatePerformanceIndexes создает индексы для оптимизации производительности
func CreatePerformanceIndexes(db *gorm.DB) error {
	log.Printf("Criando índices de performance...")

	for _, index := range PerformanceIndexes {
		if err := CreateIndex(db, index); err != nil {
			log.Printf("Falha ao criar índice %s: %v", index.Name, err)
			// Продолжаем создание остальных индексов
			continue
		}
	}

	log.Printf("Índices de performance criados")
	return nil
}

// CreateIndex создает отдельный B-tree индекс
func CreateIndex(db *gorm.DB, index DatabaseIndex) error {
	uniqueStr := ""
	if index.Unique {
		uniqueStr = "UNIQUE "
	}

	sql := fmt.Sprintf(
		"CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		uniqueStr, index.Name, index.Table, strings.Join(index.Columns, ", "),
	)

	return db.Exec(sql).Error
}

// DropIndex удаляет индекс
func DropIndex(db *gorm.DB, indexName string) error {
	sql := fmt.Sprintf("DROP INDEX IF EXISTS %s", indexName)
	return db.Exec(sql).Error
}
