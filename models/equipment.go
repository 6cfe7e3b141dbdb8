package models

import (
	"time"

	"gorm.io/gorm"
)

// Equipment представляет единицу техники в парке (трактор, комбайн и т.д.)
type Equipment struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Основные поля техники
	FleetTag string `json:"fleet_tag" gorm:"column:frota;uniqueIndex;not null;type:varchar(50)"` // Номер в парке (фрота)
	Model    string `json:"model" gorm:"column:modelo;type:varchar(100)"`
	Manager  string `json:"manager" gorm:"column:gestor;type:varchar(100)"` // Ответственный руководитель

	// Заявки, открытые по данной технике
	WorkOrders []WorkOrder `json:"work_orders,omitempty" gorm:"foreignKey:EquipmentID"`
}

// TableName задает имя таблицы для модели Equipment
func (Equipment) TableName() string {
	return "equipamentos"
}
