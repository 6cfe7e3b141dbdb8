package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend_frota/models"
)

func setupReliabilityTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	err = db.AutoMigrate(
		&models.Equipment{},
		&models.Employee{},
		&models.OperationType{},
		&models.WorkOrder{},
		&AuditLog{},
	)
	require.NoError(t, err, "Failed to migrate test database")

	return db
}

// fixedClock возвращает детерминированное "сейчас" для тестов
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func closedFailure(equipmentID uint, openedAt time.Time, repair time.Duration) models.WorkOrder {
	closedAt := openedAt.Add(repair)
	return models.WorkOrder{
		OpenedAt:        openedAt,
		ClosedAt:        &closedAt,
		Status:          models.StatusFechada,
		EquipmentID:     equipmentID,
		OperationTypeID: 1,
		Priority:        models.PriorityMedium,
		Classification:  models.ClassCorrective,
		MachineStopped:  true,
	}
}

// Одна единица техники, один отказ 5 часов за окно в один день при 20 часах
// работы в сутки: MTTR 5, MTBF 15, доступность 75%
func TestAggregateSingleFailure(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	rs := &ReliabilityService{Now: fixedClock(day.Add(48 * time.Hour))}

	orders := []models.WorkOrder{
		closedFailure(1, day.Add(8*time.Hour), 5*time.Hour),
	}

	report := rs.Aggregate(orders, ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
	})

	assert.Equal(t, 1, report.DaysInWindow)
	assert.Equal(t, 1, report.EquipmentCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.InDelta(t, 20.0, report.TotalAvailH, 0.001)
	assert.InDelta(t, 5.0, report.MTTR, 0.001)
	assert.InDelta(t, 15.0, report.MTBF, 0.001)
	assert.InDelta(t, 75.0, report.Availability, 0.001)
	assert.Equal(t, "5.0 h", report.FmtMTTR)
	assert.Equal(t, "15.0 h", report.FmtMTBF)
	assert.Equal(t, "75.0%", report.FmtAvailability)
}

// Два отказа (2ч и 4ч) за два дня: MTTR 3, MTBF 17, доступность 85%
func TestAggregateTwoFailures(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	rs := &ReliabilityService{Now: fixedClock(day.Add(96 * time.Hour))}

	orders := []models.WorkOrder{
		closedFailure(1, day.Add(8*time.Hour), 2*time.Hour),
		closedFailure(1, day.Add(32*time.Hour), 4*time.Hour),
	}

	report := rs.Aggregate(orders, ReliabilityParams{
		Start:                  day,
		End:                    day.AddDate(0, 0, 1),
		OperationalHoursPerDay: 20,
	})

	assert.Equal(t, 2, report.DaysInWindow)
	assert.Equal(t, 2, report.FailureCount)
	assert.InDelta(t, 40.0, report.TotalAvailH, 0.001)
	assert.InDelta(t, 3.0, report.MTTR, 0.001)
	assert.InDelta(t, 17.0, report.MTBF, 0.001)
	assert.InDelta(t, 85.0, report.Availability, 0.001)
}

// Без отказов: MTTR 0, MTBF равен всему доступному времени, доступность 100%
func TestAggregateNoFailures(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	rs := &ReliabilityService{Now: fixedClock(day)}

	preventive := closedFailure(1, day.Add(8*time.Hour), 2*time.Hour)
	preventive.Classification = models.ClassPreventive

	report := rs.Aggregate([]models.WorkOrder{preventive}, ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
	})

	assert.Equal(t, 0, report.FailureCount)
	assert.InDelta(t, 0.0, report.MTTR, 0.001)
	assert.InDelta(t, 20.0, report.MTBF, 0.001)
	assert.InDelta(t, 100.0, report.Availability, 0.001)
}

// Preventiva с остановкой техники и Corretiva без остановки отказами не считаются
func TestAggregateFailureDefinition(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	rs := &ReliabilityService{Now: fixedClock(day)}

	preventiveStopped := closedFailure(1, day.Add(8*time.Hour), 2*time.Hour)
	preventiveStopped.Classification = models.ClassPreventive

	correctiveRunning := closedFailure(1, day.Add(10*time.Hour), 3*time.Hour)
	correctiveRunning.MachineStopped = false

	failure := closedFailure(1, day.Add(12*time.Hour), time.Hour)

	report := rs.Aggregate([]models.WorkOrder{preventiveStopped, correctiveRunning, failure}, ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
	})

	assert.Equal(t, 1, report.FailureCount)
	assert.InDelta(t, 1.0, report.TotalRepairH, 0.001)
}

// Открытый отказ вносит живую длительность от подмененного "сейчас"
func TestAggregateOpenFailureUsesClock(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	openedAt := day.Add(8 * time.Hour)
	rs := &ReliabilityService{Now: fixedClock(openedAt.Add(6 * time.Hour))}

	open := closedFailure(1, openedAt, 0)
	open.ClosedAt = nil
	open.Status = models.StatusAberta

	report := rs.Aggregate([]models.WorkOrder{open}, ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
	})

	assert.InDelta(t, 6.0, report.TotalRepairH, 0.001)
}

// Отказ с закрытием раньше открытия учитывается как ноль и помечается
func TestAggregateClampedDurationWarning(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	rs := &ReliabilityService{Now: fixedClock(day)}

	bad := closedFailure(1, day.Add(8*time.Hour), -2*time.Hour)

	report := rs.Aggregate([]models.WorkOrder{bad}, ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
	})

	assert.Equal(t, 1, report.FailureCount)
	assert.InDelta(t, 0.0, report.TotalRepairH, 0.001)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, WarnNegativeDuration, report.Warnings[0].Kind)
}

// Отказ с нулевой датой открытия входит в итоги, но исключается из разбивки
// по сменам и из ячеек матрицы, с замечанием к качеству данных
func TestAggregateUnknownShiftExcludedFromBreakdown(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	rs := &ReliabilityService{Now: fixedClock(day.Add(48 * time.Hour))}

	zero := time.Time{}
	broken := models.WorkOrder{
		ID:              7,
		OpenedAt:        zero,
		ClosedAt:        &zero,
		Status:          models.StatusFechada,
		EquipmentID:     1,
		OperationTypeID: 1,
		Priority:        models.PriorityMedium,
		Classification:  models.ClassCorrective,
		MachineStopped:  true,
	}

	orders := []models.WorkOrder{
		closedFailure(1, day.Add(8*time.Hour), 3*time.Hour),
		broken,
	}

	report := rs.Aggregate(orders, ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
	})

	// В итогах оба отказа, в разбивке по сменам только один
	assert.Equal(t, 2, report.FailureCount)
	shiftTotal := 0
	for _, stats := range report.PerShift {
		shiftTotal += stats.FailureCount
	}
	assert.Equal(t, 1, shiftTotal)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, WarnUnknownShift, report.Warnings[0].Kind)
	assert.Equal(t, uint(7), report.Warnings[0].WorkOrderID)

	// В матрице отказ учтен в Total, но не попал ни в одну смену
	require.Len(t, report.TopEquipment, 1)
	assert.Equal(t, 2, report.TopEquipment[0].Total)
	cellTotal := 0
	for _, n := range report.TopEquipment[0].PerShift {
		cellTotal += n
	}
	assert.Equal(t, 1, cellTotal)
}

func TestAggregateShiftBreakdown(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	rs := &ReliabilityService{Now: fixedClock(day.AddDate(0, 0, 7))}

	orders := []models.WorkOrder{
		closedFailure(1, day.Add(8*time.Hour), 2*time.Hour),  // Смена A
		closedFailure(1, day.Add(10*time.Hour), 4*time.Hour), // Смена A
		closedFailure(1, day.Add(16*time.Hour), 8*time.Hour), // Смена B
	}

	report := rs.Aggregate(orders, ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
	})

	require.Len(t, report.PerShift, 3)
	assert.Equal(t, ShiftA, report.PerShift[0].Shift)
	assert.Equal(t, 2, report.PerShift[0].FailureCount)
	assert.InDelta(t, 3.0, report.PerShift[0].MeanRepairH, 0.001)
	assert.Equal(t, "3.0 h", report.PerShift[0].FmtMeanRepairH)

	assert.Equal(t, 1, report.PerShift[1].FailureCount)
	assert.Equal(t, 0, report.PerShift[2].FailureCount)

	assert.Equal(t, ShiftA, report.MostFailuresShift)
	assert.Equal(t, ShiftB, report.SlowestShift, "Самый медленный средний ремонт у смены B")
}

// При равенстве счетчиков побеждает первая смена в порядке A, B, C
func TestAggregateShiftTieBreak(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	rs := &ReliabilityService{Now: fixedClock(day.AddDate(0, 0, 7))}

	orders := []models.WorkOrder{
		closedFailure(1, day.Add(8*time.Hour), 2*time.Hour),  // A
		closedFailure(1, day.Add(16*time.Hour), 2*time.Hour), // B
		closedFailure(1, day.Add(23*time.Hour), 2*time.Hour), // C
	}

	report := rs.Aggregate(orders, ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
	})

	assert.Equal(t, ShiftA, report.MostFailuresShift)
	assert.Equal(t, ShiftA, report.SlowestShift)
}

func TestAggregateEquipmentMatrixTopN(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	rs := &ReliabilityService{Now: fixedClock(day.AddDate(0, 0, 7))}

	var orders []models.WorkOrder
	// Техника 1..12: у единицы i ровно i отказов в смене A
	for id := uint(1); id <= 12; id++ {
		for n := uint(0); n < id; n++ {
			orders = append(orders, closedFailure(id, day.Add(8*time.Hour), time.Hour))
		}
	}

	report := rs.Aggregate(orders, ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
	})

	require.Len(t, report.TopEquipment, 10, "Матрица ограничена top-10 по умолчанию")
	assert.Equal(t, uint(12), report.TopEquipment[0].EquipmentID)
	assert.Equal(t, 12, report.TopEquipment[0].Total)
	assert.Equal(t, 12, report.TopEquipment[0].PerShift[ShiftA])
	assert.Equal(t, uint(3), report.TopEquipment[9].EquipmentID, "Техника с 1 и 2 отказами отсекается")
}

// При равном числе отказов порядок детерминирован по ID техники
func TestAggregateEquipmentMatrixStableOrder(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	rs := &ReliabilityService{Now: fixedClock(day.AddDate(0, 0, 7))}

	orders := []models.WorkOrder{
		closedFailure(7, day.Add(8*time.Hour), time.Hour),
		closedFailure(3, day.Add(9*time.Hour), time.Hour),
		closedFailure(5, day.Add(10*time.Hour), time.Hour),
	}

	report := rs.Aggregate(orders, ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
	})

	require.Len(t, report.TopEquipment, 3)
	assert.Equal(t, uint(3), report.TopEquipment[0].EquipmentID)
	assert.Equal(t, uint(5), report.TopEquipment[1].EquipmentID)
	assert.Equal(t, uint(7), report.TopEquipment[2].EquipmentID)
}

func TestDaysInclusive(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.Local)
	}

	assert.Equal(t, 1, daysInclusive(day(10), day(10)))
	assert.Equal(t, 2, daysInclusive(day(10), day(11)))
	assert.Equal(t, 31, daysInclusive(time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), day(31)))

	// Обе границы включительно независимо от времени суток
	assert.Equal(t, 2, daysInclusive(day(10).Add(23*time.Hour), day(11).Add(time.Hour)))

	// Перевернутое окно обрезается до одного дня
	assert.Equal(t, 1, daysInclusive(day(11), day(10)))
}

// Счет дней остается календарным и при переходе на летнее время, когда в
// сутках 23 часа
func TestDaysInclusiveDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2026-03-08 — день перевода часов вперед в США
	start := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	end := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)

	assert.Equal(t, 2, daysInclusive(start, end))
	assert.Equal(t, 8, daysInclusive(start, time.Date(2026, 3, 15, 12, 0, 0, 0, loc)))
}

// AggregateWindow выбирает заявки окна из БД и считает по ним показатели
func TestAggregateWindow(t *testing.T) {
	db := setupReliabilityTestDB(t)

	equipment := &models.Equipment{FleetTag: "TR-201", Model: "John Deere S780", Manager: "Ana Costa"}
	require.NoError(t, db.Create(equipment).Error)

	opType := &models.OperationType{Name: "Mecânica", Color: "#e74c3c"}
	require.NoError(t, db.Create(opType).Error)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)

	inside := closedFailure(equipment.ID, day.Add(8*time.Hour), 5*time.Hour)
	inside.OperationTypeID = opType.ID
	require.NoError(t, db.Create(&inside).Error)

	outside := closedFailure(equipment.ID, day.AddDate(0, 0, -10), 3*time.Hour)
	outside.OperationTypeID = opType.ID
	require.NoError(t, db.Create(&outside).Error)

	rs := NewReliabilityService(db)
	rs.Now = fixedClock(day.AddDate(0, 0, 2))

	report, err := rs.AggregateWindow(ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
	}, WorkOrderFilters{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.FailureCount, "Заявка вне окна не должна учитываться")
	assert.InDelta(t, 5.0, report.MTTR, 0.001)
	assert.Equal(t, "75.0%", report.FmtAvailability)

	require.Len(t, report.TopEquipment, 1)
	assert.Equal(t, "TR-201", report.TopEquipment[0].FleetTag, "Номер в парке подтягивается из справочника")
}

// Размер парка можно задать извне, не выводя его из набора заявок
func TestAggregateExplicitEquipmentCount(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	rs := &ReliabilityService{Now: fixedClock(day)}

	orders := []models.WorkOrder{
		closedFailure(1, day.Add(8*time.Hour), 5*time.Hour),
	}

	report := rs.Aggregate(orders, ReliabilityParams{
		Start:                  day,
		End:                    day,
		OperationalHoursPerDay: 20,
		EquipmentCount:         4,
	})

	assert.Equal(t, 4, report.EquipmentCount)
	assert.InDelta(t, 80.0, report.TotalAvailH, 0.001)
	assert.Equal(t, fmt.Sprintf("%.1f h", report.MTBF), report.FmtMTBF)
}
