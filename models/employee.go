package models

import (
	"time"

	"gorm.io/gorm"
)

// Employee представляет сотрудника: исполнителя либо заявителя работ
type Employee struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Name         string `json:"name" gorm:"column:nome;not null;type:varchar(100)"`
	Registration string `json:"registration" gorm:"column:matricula;uniqueIndex;not null;type:varchar(30)"` // Табельный номер
	Department   string `json:"department" gorm:"column:setor;type:varchar(100)"`
	Phone        string `json:"phone" gorm:"column:telefone;type:varchar(20)"`
}

// TableName задает имя таблицы для модели Employee
func (Employee) TableName() string {
	return "funcionarios"
}
