package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend_frota/models"
)

func setupEquipmentTestDB(t *testing.T) (*gorm.DB, *EquipmentService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	err = db.AutoMigrate(&models.Equipment{}, &AuditLog{})
	require.NoError(t, err, "Failed to migrate test database")

	return db, NewEquipmentService(db, NewAuditService(db, nil), nil)
}

func TestCreateEquipment(t *testing.T) {
	_, service := setupEquipmentTestDB(t)

	eq := &models.Equipment{FleetTag: " TR-401 ", Model: "Valtra BH194", Manager: "Pedro Lima"}
	require.NoError(t, service.Create("admin", eq))
	assert.Equal(t, "TR-401", eq.FleetTag, "Номер парка должен обрезаться от пробелов")

	// Пустой номер парка
	err := service.Create("admin", &models.Equipment{FleetTag: "  "})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "frota", vErr.Field)

	// Дубликат номера парка
	err = service.Create("admin", &models.Equipment{FleetTag: "TR-401"})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "frota", vErr.Field)
}

func TestReassignManager(t *testing.T) {
	_, service := setupEquipmentTestDB(t)

	eq := &models.Equipment{FleetTag: "TR-402", Manager: "Pedro Lima"}
	require.NoError(t, service.Create("admin", eq))

	require.NoError(t, service.ReassignManager("admin", eq.ID, "Ana Costa"))

	var vErr *ValidationError
	err := service.ReassignManager("admin", 999, "Ana Costa")
	assert.ErrorAs(t, err, &vErr)
}

func TestBulkReassignManager(t *testing.T) {
	db, service := setupEquipmentTestDB(t)

	for _, tag := range []string{"TR-403", "TR-404", "TR-405"} {
		require.NoError(t, service.Create("admin", &models.Equipment{FleetTag: tag, Manager: "Pedro Lima"}))
	}
	require.NoError(t, service.Create("admin", &models.Equipment{FleetTag: "TR-406", Manager: "Ana Costa"}))

	affected, err := service.BulkReassignManager("admin", "Pedro Lima", "Ana Costa")
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)

	var count int64
	db.Model(&models.Equipment{}).Where("gestor = ?", "Ana Costa").Count(&count)
	assert.Equal(t, int64(4), count)
}

func buildImportSheet(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportFromExcel(t *testing.T) {
	_, service := setupEquipmentTestDB(t)

	// Уже существующая единица должна пропускаться
	require.NoError(t, service.Create("admin", &models.Equipment{FleetTag: "TR-501"}))

	buf := buildImportSheet(t, [][]interface{}{
		{"Frota", "Modelo", "Gestor"},
		{"TR-501", "Case IH 8250", "Carlos Silva"},
		{"TR-502", "John Deere S780", "Ana Costa"},
		{"", "Sem frota", ""},
		{"TR-503"},
	})

	result, err := service.ImportFromExcel("admin", buf)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "frota vazia")
}

func TestImportFromExcelInvalidFile(t *testing.T) {
	_, service := setupEquipmentTestDB(t)

	_, err := service.ImportFromExcel("admin", bytes.NewBufferString("not a spreadsheet"))
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}
