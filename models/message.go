package models

import (
	"time"

	"gorm.io/gorm"
)

// Message представляет записку, оставляемую между сменами (recado)
type Message struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Author string `json:"author" gorm:"column:autor;not null;type:varchar(100)"`
	Text   string `json:"text" gorm:"column:texto;not null;type:text"`
	Done   bool   `json:"done" gorm:"column:resolvido;default:false"` // Отработана ли записка
}

// TableName задает имя таблицы для модели Message
func (Message) TableName() string {
	return "recados"
}
