package models

import (
	"time"

	"gorm.io/gorm"
)

// OperationType представляет категорию обслуживания (электрика, механика и т.д.)
type OperationType struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Name  string `json:"name" gorm:"column:nome;uniqueIndex;not null;type:varchar(50)"`
	Color string `json:"color" gorm:"column:cor;type:varchar(20)"` // Цвет для графиков, карт и отчетов
}

// TableName задает имя таблицы для модели OperationType
func (OperationType) TableName() string {
	return "tipos_operacao"
}

// DefaultOperationTypes категории, создаваемые при первом запуске
func DefaultOperationTypes() []OperationType {
	return []OperationType{
		{Name: "Elétrica", Color: "#f1c40f"},
		{Name: "Mecânica", Color: "#e74c3c"},
		{Name: "Borracharia", Color: "#2c3e50"},
		{Name: "Terceiros", Color: "#9b59b6"},
	}
}
