package models

import (
	"time"

	"gorm.io/gorm"
)

// Area представляет участок поля, на котором находилась техника
type Area struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Code string `json:"code" gorm:"column:codigo;uniqueIndex;not null;type:varchar(30)"`
	Name string `json:"name" gorm:"column:nome;type:varchar(100)"`
}

// TableName задает имя таблицы для модели Area
func (Area) TableName() string {
	return "areas"
}
