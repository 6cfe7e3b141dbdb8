package database

import (
	"errors"
	"log"

	"backend_frota/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDefaults создает записи первого запуска: четыре категории
// обслуживания и администратора по умолчанию. Повторные запуски
// идемпотентны.
func SeedDefaults(db *gorm.DB) error {
	for _, opType := range models.DefaultOperationTypes() {
		var existing models.OperationType
		err := db.Where("nome = ?", opType.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := db.Create(&opType).Error; err != nil {
			return err
		}
		log.Printf("✅ Tipo de operação criado: %s", opType.Name)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	if userCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		admin := models.User{
			Username: "admin",
			Password: string(hash),
			Name:     "Administrador",
			Role:     "admin",
			IsActive: true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Println("✅ Usuário admin criado (senha padrão: admin)")
	}

	return nil
}
