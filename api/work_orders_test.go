package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"backend_frota/models"
	"backend_frota/services"
)

func setupWorkOrdersTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Equipment{},
		&models.Employee{},
		&models.OperationType{},
		&models.WorkOrder{},
		&services.AuditLog{},
	)
	require.NoError(t, err)

	return db
}

func setupWorkOrdersTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	service := services.NewWorkOrderService(db, nil, nil)
	workOrdersAPI := NewWorkOrdersAPI(service)

	api := router.Group("/api")
	workOrdersAPI.RegisterRoutes(api)

	return router
}

func seedWorkOrderCatalog(t *testing.T, db *gorm.DB) (*models.Equipment, *models.OperationType) {
	equipment := &models.Equipment{FleetTag: "TR-701", Model: "Case IH 8250", Manager: "Carlos Silva"}
	require.NoError(t, db.Create(equipment).Error)

	opType := &models.OperationType{Name: "Mecânica", Color: "#e74c3c"}
	require.NoError(t, db.Create(opType).Error)

	return equipment, opType
}

func TestCreateWorkOrderEndpoint(t *testing.T) {
	db := setupWorkOrdersTestDB(t)
	router := setupWorkOrdersTestRouter(db)
	equipment, opType := seedWorkOrderCatalog(t, db)

	body, _ := json.Marshal(gin.H{
		"equipment_id":      equipment.ID,
		"operation_type_id": opType.ID,
		"description":       "Vazamento de óleo hidráulico",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/work-orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Status string           `json:"status"`
		Data   models.WorkOrder `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "success", response.Status)
	assert.Equal(t, models.StatusPendente, response.Data.Status)
	assert.Equal(t, models.PriorityMedium, response.Data.Priority)
	assert.NotZero(t, response.Data.ID)
}

func TestCreateWorkOrderEndpointValidation(t *testing.T) {
	db := setupWorkOrdersTestDB(t)
	router := setupWorkOrdersTestRouter(db)
	seedWorkOrderCatalog(t, db)

	// Ссылка на несуществующую технику
	body, _ := json.Marshal(gin.H{
		"equipment_id":      999,
		"operation_type_id": 1,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/work-orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "error", response["status"])
}

// Открытый дубликат по той же технике возвращает предупреждение в ответе,
// но создание не блокируется
func TestCreateWorkOrderEndpointDuplicateWarning(t *testing.T) {
	db := setupWorkOrdersTestDB(t)
	router := setupWorkOrdersTestRouter(db)
	equipment, opType := seedWorkOrderCatalog(t, db)

	body, _ := json.Marshal(gin.H{
		"equipment_id":      equipment.ID,
		"operation_type_id": opType.ID,
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/work-orders", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		var response struct {
			Warnings []services.DataQualityWarning `json:"warnings"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		if i == 0 {
			assert.Empty(t, response.Warnings)
		} else {
			require.Len(t, response.Warnings, 1)
			assert.Equal(t, services.WarnOpenDuplicate, response.Warnings[0].Kind)
		}
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	db := setupWorkOrdersTestDB(t)
	router := setupWorkOrdersTestRouter(db)
	equipment, opType := seedWorkOrderCatalog(t, db)

	wo := models.WorkOrder{
		OpenedAt:        time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local),
		Status:          models.StatusAberta,
		EquipmentID:     equipment.ID,
		OperationTypeID: opType.ID,
		Priority:        models.PriorityMedium,
		Classification:  models.ClassCorrective,
		MachineStopped:  true,
	}
	require.NoError(t, db.Create(&wo).Error)

	body, _ := json.Marshal(gin.H{"status": "Fechada"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/work-orders/%d/status", wo.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data models.WorkOrder `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, models.StatusFechada, response.Data.Status)
	assert.NotNil(t, response.Data.ClosedAt)

	// Неизвестный статус отклоняется
	body, _ = json.Marshal(gin.H{"status": "Cancelada"})
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/work-orders/%d/status", wo.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListWorkOrdersEndpoint(t *testing.T) {
	db := setupWorkOrdersTestDB(t)
	router := setupWorkOrdersTestRouter(db)
	equipment, opType := seedWorkOrderCatalog(t, db)

	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	for i, priority := range []models.Priority{models.PriorityLow, models.PriorityHigh} {
		wo := models.WorkOrder{
			OpenedAt:        base.AddDate(0, 0, i),
			Status:          models.StatusAberta,
			EquipmentID:     equipment.ID,
			OperationTypeID: opType.ID,
			Priority:        priority,
			Classification:  models.ClassCorrective,
			MachineStopped:  true,
		}
		require.NoError(t, db.Create(&wo).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/work-orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Items []models.WorkOrder `json:"items"`
			Total int                `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.Equal(t, 2, response.Data.Total)
	assert.Equal(t, models.PriorityHigh, response.Data.Items[0].Priority, "Alta показывается первой")

	// Фильтр по приоритету
	req = httptest.NewRequest(http.MethodGet, "/api/work-orders?priority=Baixa", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Data.Total)
}
