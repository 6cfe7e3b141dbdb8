package services

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"backend_frota/models"
)

// ReliabilityParams параметры расчета показателей надежности
type ReliabilityParams struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Часы работы парка в сутки; по умолчанию 20 (три смены с учетом
	// планового резерва простоя)
	OperationalHoursPerDay float64 `json:"operational_hours_per_day"`

	// Размер парка. Ноль означает "вычислить как число различных единиц
	// техники в отфильтрованном наборе".
	EquipmentCount int `json:"equipment_count"`

	// Сколько строк в матрице техника × смена (0 = 10)
	TopN int `json:"top_n"`
}

// ShiftStats показатели отказов по одной смене
type ShiftStats struct {
	Shift          Shift   `json:"shift"`
	FailureCount   int     `json:"failure_count"`
	TotalRepairH   float64 `json:"total_repair_hours"`
	MeanRepairH    float64 `json:"mean_repair_hours"`
	FmtMeanRepairH string  `json:"mean_repair_hours_fmt"`
}

// EquipmentShiftRow строка матрицы техника × смена
type EquipmentShiftRow struct {
	EquipmentID uint          `json:"equipment_id"`
	FleetTag    string        `json:"fleet_tag"`
	PerShift    map[Shift]int `json:"per_shift"`
	Total       int           `json:"total"`
}

// ReliabilityReport итог расчета MTBF/MTTR/доступности за окно
type ReliabilityReport struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	DaysInWindow   int     `json:"days_in_window"`
	EquipmentCount int     `json:"equipment_count"`
	FailureCount   int     `json:"failure_count"`
	TotalRepairH   float64 `json:"total_repair_hours"`
	TotalAvailH    float64 `json:"total_available_hours"`
	OperatingH     float64 `json:"operating_hours"` // Может быть отрицательным при патологических входных данных

	MTTR         float64 `json:"mttr"`
	MTBF         float64 `json:"mtbf"`
	Availability float64 `json:"availability"`

	// Предварительно отформатированные строки, общие для экрана и PDF:
	// один знак после запятой для часов и процентов
	FmtMTTR         string `json:"mttr_fmt"`
	FmtMTBF         string `json:"mtbf_fmt"`
	FmtAvailability string `json:"availability_fmt"`

	PerShift          []ShiftStats `json:"per_shift"`
	MostFailuresShift Shift        `json:"most_failures_shift"`
	SlowestShift      Shift        `json:"slowest_repairs_shift"`

	TopEquipment []EquipmentShiftRow `json:"top_equipment"`

	// Отказы, вошедшие в расчет (для отчетов)
	FailureEvents []models.WorkOrder `json:"failure_events,omitempty"`

	Warnings []DataQualityWarning `json:"warnings,omitempty"`
}

// ReliabilityService вычисляет MTBF/MTTR/доступность по набору заявок
type ReliabilityService struct {
	db *gorm.DB

	// Единая точка получения локального времени; в тестах подменяется
	Now func() time.Time
}

// NewReliabilityService создает новый сервис показателей надежности
func NewReliabilityService(db *gorm.DB) *ReliabilityService {
	return &ReliabilityService{
		db:  db,
		Now: time.Now,
	}
}

// Aggregate выполняет чистую синхронную редукцию уже материализованного
// набора заявок в итоговые показатели. Правила деления на ноль:
//   - нет отказов: MTTR = 0, MTBF = operatingTime, доступность = 100%
//   - MTBF+MTTR = 0: доступность = 100%
func (rs *ReliabilityService) Aggregate(orders []models.WorkOrder, params ReliabilityParams) *ReliabilityReport {
	if params.OperationalHoursPerDay <= 0 {
		params.OperationalHoursPerDay = 20
	}
	if params.TopN <= 0 {
		params.TopN = 10
	}

	now := rs.Now()
	report := &ReliabilityReport{
		Start: params.Start,
		End:   params.End,
	}

	// Шаг 1: только отказы (Corretiva + остановка техники)
	equipmentSeen := make(map[uint]bool)
	var failures []models.WorkOrder
	for _, wo := range orders {
		equipmentSeen[wo.EquipmentID] = true
		if wo.IsFailureEvent() {
			failures = append(failures, wo)
		}
	}

	// Шаги 2-3: суммарное время ремонта и число отказов
	durations := make([]float64, len(failures))
	for i := range failures {
		d, clamped := ElapsedTime(failures[i].OpenedAt, failures[i].ClosedAt, now)
		durations[i] = d.Hours()
		if clamped {
			report.Warnings = append(report.Warnings, DataQualityWarning{
				WorkOrderID: failures[i].ID,
				Kind:        WarnNegativeDuration,
				Detail:      "duração negativa ajustada para zero",
			})
		}
		report.TotalRepairH += durations[i]
	}
	report.FailureCount = len(failures)
	report.FailureEvents = failures

	// Шаг 4: доступное время парка за окно, границы дат включительно
	report.DaysInWindow = daysInclusive(params.Start, params.End)
	report.EquipmentCount = params.EquipmentCount
	if report.EquipmentCount == 0 {
		report.EquipmentCount = len(equipmentSeen)
	}
	report.TotalAvailH = float64(report.DaysInWindow) * params.OperationalHoursPerDay * float64(report.EquipmentCount)

	// Шаги 5-8: MTTR, MTBF, доступность
	if report.FailureCount > 0 {
		report.MTTR = report.TotalRepairH / float64(report.FailureCount)
	}

	// Отрицательное operatingTime не обрезается: это сигнал плохой
	// конфигурации, который должен быть виден
	report.OperatingH = report.TotalAvailH - report.TotalRepairH

	if report.FailureCount > 0 {
		report.MTBF = report.OperatingH / float64(report.FailureCount)
	} else {
		// Без отказов MTBF по соглашению равен всему наработанному времени
		report.MTBF = report.OperatingH
	}

	if report.MTBF+report.MTTR > 0 {
		report.Availability = report.MTBF / (report.MTBF + report.MTTR) * 100
	} else {
		report.Availability = 100.0
	}

	report.FmtMTTR = fmt.Sprintf("%.1f h", report.MTTR)
	report.FmtMTBF = fmt.Sprintf("%.1f h", report.MTBF)
	report.FmtAvailability = fmt.Sprintf("%.1f%%", report.Availability)

	// Шаг 9: разбивка по сменам
	rs.buildShiftBreakdown(report, failures, durations)

	// Шаг 10: матрица техника × смена, top-N по общему числу отказов
	rs.buildEquipmentMatrix(report, failures, params.TopN)

	return report
}

// AggregateWindow выбирает заявки окна из БД и агрегирует их
func (rs *ReliabilityService) AggregateWindow(params ReliabilityParams, filters WorkOrderFilters) (*ReliabilityReport, error) {
	filters.DateFrom = params.Start
	filters.DateTo = params.End

	svc := &WorkOrderService{db: rs.db, Now: rs.Now}
	orders, err := svc.Query(filters)
	if err != nil {
		return nil, err
	}

	return rs.Aggregate(orders, params), nil
}

// buildShiftBreakdown считает отказы и средний ремонт по сменам. Заявки с
// нераспознанной сменой исключаются из разбивки (но уже учтены в итогах)
// и помечаются замечанием к качеству данных.
func (rs *ReliabilityService) buildShiftBreakdown(report *ReliabilityReport, failures []models.WorkOrder, durations []float64) {
	counts := make(map[Shift]int)
	repair := make(map[Shift]float64)

	for i := range failures {
		shift := ClassifyShift(failures[i].OpenedAt)
		if shift == ShiftUnknown {
			report.Warnings = append(report.Warnings, DataQualityWarning{
				WorkOrderID: failures[i].ID,
				Kind:        WarnUnknownShift,
				Detail:      "data de abertura inválida, turno desconhecido",
			})
			continue
		}
		counts[shift]++
		repair[shift] += durations[i]
	}

	report.PerShift = make([]ShiftStats, 0, len(ShiftOrder))
	for _, shift := range ShiftOrder {
		stats := ShiftStats{
			Shift:        shift,
			FailureCount: counts[shift],
			TotalRepairH: repair[shift],
		}
		if stats.FailureCount > 0 {
			stats.MeanRepairH = stats.TotalRepairH / float64(stats.FailureCount)
		}
		stats.FmtMeanRepairH = fmt.Sprintf("%.1f h", stats.MeanRepairH)
		report.PerShift = append(report.PerShift, stats)
	}

	// Смена с наибольшим числом отказов и смена с самым медленным ремонтом
	// отбираются независимо; при равенстве побеждает первая в порядке A,B,C
	best := report.PerShift[0]
	slowest := report.PerShift[0]
	for _, stats := range report.PerShift[1:] {
		if stats.FailureCount > best.FailureCount {
			best = stats
		}
		if stats.MeanRepairH > slowest.MeanRepairH {
			slowest = stats
		}
	}
	report.MostFailuresShift = best.Shift
	report.SlowestShift = slowest.Shift
}

// buildEquipmentMatrix строит матрицу отказов техника × смена, ограниченную
// top-N единицами техники по общему числу отказов
func (rs *ReliabilityService) buildEquipmentMatrix(report *ReliabilityReport, failures []models.WorkOrder, topN int) {
	byEquipment := make(map[uint]*EquipmentShiftRow)

	for i := range failures {
		row, ok := byEquipment[failures[i].EquipmentID]
		if !ok {
			tag := ""
			if failures[i].Equipment != nil {
				tag = failures[i].Equipment.FleetTag
			}
			row = &EquipmentShiftRow{
				EquipmentID: failures[i].EquipmentID,
				FleetTag:    tag,
				PerShift:    make(map[Shift]int),
			}
			byEquipment[failures[i].EquipmentID] = row
		}

		shift := ClassifyShift(failures[i].OpenedAt)
		if shift != ShiftUnknown {
			row.PerShift[shift]++
		}
		row.Total++
	}

	rows := make([]EquipmentShiftRow, 0, len(byEquipment))
	for _, row := range byEquipment {
		rows = append(rows, *row)
	}

	// Сортировка по убыванию общего числа отказов, при равенстве по ID
	// техники для детерминированного вывода
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].EquipmentID < rows[j].EquipmentID
	})

	if len(rows) > topN {
		rows = rows[:topN]
	}
	report.TopEquipment = rows
}

// daysInclusive считает число календарных дней в окне, включая обе граничные
// даты: (end.date - start.date).days + 1
func daysInclusive(start, end time.Time) int {
	// Двигаем даты в UTC, чтобы переход на летнее время (23-часовые сутки)
	// не сбивал счет календарных дней
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	days := int(endDay.Sub(startDay).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}
