package testutils

import (
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend_frota/database"
	"backend_frota/models"
)

// SetupTestDB создает и настраивает тестовую базу данных в памяти
// Эта функция должна использоваться во всех тестах для обеспечения консистентности
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// CleanupTestDB очищает тестовую базу данных
func CleanupTestDB(db *gorm.DB) {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// CreateTestEquipment создает тестовую единицу техники
func CreateTestEquipment(db *gorm.DB, fleetTag string) *models.Equipment {
	equipment := &models.Equipment{
		FleetTag: fleetTag,
		Model:    "Case IH 8250",
		Manager:  "Carlos Silva",
	}

	if err := db.Create(equipment).Error; err != nil {
		log.Printf("Failed to create test equipment: %v", err)
		return nil
	}

	return equipment
}

// CreateTestOperationType создает тестовую категорию обслуживания
func CreateTestOperationType(db *gorm.DB, name string) *models.OperationType {
	opType := &models.OperationType{
		Name:  name,
		Color: "#e74c3c",
	}

	if err := db.Create(opType).Error; err != nil {
		log.Printf("Failed to create test operation type: %v", err)
		return nil
	}

	return opType
}

// CreateTestEmployee создает тестового сотрудника
func CreateTestEmployee(db *gorm.DB, registration string) *models.Employee {
	employee := &models.Employee{
		Name:         "João Pereira",
		Registration: registration,
		Department:   "Manutenção",
	}

	if err := db.Create(employee).Error; err != nil {
		log.Printf("Failed to create test employee: %v", err)
		return nil
	}

	return employee
}

// CreateTestWorkOrder создает заявку с заданными временем открытия и
// временем закрытия. closedAt == nil означает открытую заявку.
func CreateTestWorkOrder(db *gorm.DB, equipmentID, opTypeID uint, openedAt time.Time, closedAt *time.Time) *models.WorkOrder {
	status := models.StatusAberta
	if closedAt != nil {
		status = models.StatusFechada
	}

	wo := &models.WorkOrder{
		OpenedAt:        openedAt,
		ClosedAt:        closedAt,
		Status:          status,
		EquipmentID:     equipmentID,
		OperationTypeID: opTypeID,
		Priority:        models.PriorityMedium,
		Classification:  models.ClassCorrective,
		MachineStopped:  true,
	}

	if err := db.Create(wo).Error; err != nil {
		log.Printf("Failed to create test work order: %v", err)
		return nil
	}

	return wo
}
