package models

import (
	"time"

	"gorm.io/gorm"
)

// User представляет учетную запись для входа в систему
type User struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Username string `json:"username" gorm:"column:usuario;uniqueIndex;not null;type:varchar(50)"`
	Password string `json:"-" gorm:"column:senha;not null"` // bcrypt-хеш, не возвращается в JSON
	Name     string `json:"name" gorm:"column:nome;type:varchar(100)"`
	Role     string `json:"role" gorm:"column:perfil;default:'operador';type:varchar(30)"`
	IsActive bool   `json:"is_active" gorm:"column:ativo;default:true"`
}

// TableName задает имя таблицы для модели User
func (User) TableName() string {
	return "usuarios"
}
