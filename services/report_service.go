package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"backend_frota/models"
)

// ReportService генерирует файлы отчетов по показателям надежности.
// Числовые значения приходят уже посчитанными и отформатированными из
// ReliabilityService, поэтому экран и PDF показывают одни и те же строки.
type ReportService struct {
	db          *gorm.DB
	reliability *ReliabilityService

	// Каталог для сгенерированных файлов
	OutputDir string
}

// NewReportService создает новый экземпляр ReportService
func NewReportService(db *gorm.DB, reliability *ReliabilityService) *ReportService {
	return &ReportService{
		db:          db,
		reliability: reliability,
		OutputDir:   "reports",
	}
}

// GenerateReliabilityReport считает показатели за окно и записывает файл
// отчета в запрошенном формате, отслеживая прогресс в строке relatorios
func (rs *ReportService) GenerateReliabilityReport(requestedBy string, params ReliabilityParams, filters WorkOrderFilters, format models.ReportFormat) (*models.Report, error) {
	report := &models.Report{
		Name:        fmt.Sprintf("Indicadores de manutenção %s a %s", params.Start.Format("02/01/2006"), params.End.Format("02/01/2006")),
		Format:      format,
		Status:      models.ReportStatusPending,
		DateFrom:    params.Start,
		DateTo:      params.End,
		RequestedBy: requestedBy,
	}
	if err := rs.db.Create(report).Error; err != nil {
		return nil, NewStorageError("report.create", err)
	}

	data, err := rs.reliability.AggregateWindow(params, filters)
	if err != nil {
		rs.markFailed(report, fmt.Sprintf("falha ao calcular indicadores: %v", err))
		return report, err
	}

	filePath, err := rs.writeReportFile(data, report)
	if err != nil {
		rs.markFailed(report, fmt.Sprintf("falha ao gerar arquivo: %v", err))
		return report, err
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		rs.markFailed(report, fmt.Sprintf("falha ao ler arquivo gerado: %v", err))
		return report, err
	}

	report.Status = models.ReportStatusCompleted
	report.FilePath = filePath
	report.FileSize = fileInfo.Size()
	report.RecordCount = data.FailureCount
	report.ErrorMsg = ""

	if err := rs.db.Save(report).Error; err != nil {
		return report, NewStorageError("report.save", err)
	}
	return report, nil
}

// writeReportFile записывает файл отчета в нужном формате
func (rs *ReportService) writeReportFile(data *ReliabilityReport, report *models.Report) (string, error) {
	if err := os.MkdirAll(rs.OutputDir, 0755); err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("indicadores_%s", uuid.New().String())

	switch report.Format {
	case models.ReportFormatPDF:
		return rs.writePDF(data, filepath.Join(rs.OutputDir, fileName+".pdf"))
	case models.ReportFormatExcel:
		return rs.writeExcel(data, filepath.Join(rs.OutputDir, fileName+".xlsx"))
	case models.ReportFormatCSV:
		return rs.writeCSV(data, filepath.Join(rs.OutputDir, fileName+".csv"))
	case models.ReportFormatJSON:
		return rs.writeJSON(data, filepath.Join(rs.OutputDir, fileName+".json"))
	default:
		return "", fmt.Errorf("formato não suportado: %s", report.Format)
	}
}

// failureRow плоское представление отказа для табличных форматов
func (rs *ReportService) failureRow(wo *models.WorkOrder, now time.Time) []string {
	tag := ""
	if wo.Equipment != nil {
		tag = wo.Equipment.FleetTag
	}
	opName := ""
	if wo.OperationType != nil {
		opName = wo.OperationType.Name
	}
	closed := ""
	if wo.ClosedAt != nil {
		closed = wo.ClosedAt.Format("02/01/2006 15:04")
	}

	d, _ := ElapsedTime(wo.OpenedAt, wo.ClosedAt, now)

	return []string{
		fmt.Sprintf("%d", wo.ID),
		tag,
		opName,
		string(wo.Status),
		string(wo.Priority),
		wo.OpenedAt.Format("02/01/2006 15:04"),
		closed,
		string(ClassifyShift(wo.OpenedAt)),
		FormatDuration(d),
	}
}

var failureHeaders = []string{"OS", "Frota", "Tipo", "Status", "Prioridade", "Abertura", "Fechamento", "Turno", "Duração"}

// writePDF записывает PDF отчет с блоком KPI и таблицей отказов
func (rs *ReportService) writePDF(data *ReliabilityReport, filePath string) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Транслятор cp1252, иначе португальские диакритики выводятся мусором
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(190, 10, tr("Indicadores de Manutenção"))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(190, 8, tr(fmt.Sprintf("Período: %s a %s (%d dias, %d equipamentos)",
		data.Start.Format("02/01/2006"), data.End.Format("02/01/2006"),
		data.DaysInWindow, data.EquipmentCount)))
	pdf.Ln(10)

	// Блок KPI: те же отформатированные строки, что на экране
	pdf.SetFont("Arial", "B", 12)
	kpis := [][2]string{
		{"MTBF", data.FmtMTBF},
		{"MTTR", data.FmtMTTR},
		{"Disponibilidade", data.FmtAvailability},
		{"Falhas", fmt.Sprintf("%d", data.FailureCount)},
	}
	for _, kpi := range kpis {
		pdf.Cell(50, 8, tr(kpi[0]))
		pdf.SetFont("Arial", "", 12)
		pdf.Cell(50, 8, kpi[1])
		pdf.SetFont("Arial", "B", 12)
		pdf.Ln(8)
	}
	pdf.Ln(4)

	// Разбивка по сменам
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(190, 8, tr("Falhas por turno"))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, stats := range data.PerShift {
		pdf.Cell(190, 6, tr(fmt.Sprintf("Turno %s: %d falhas, MTTR médio %s",
			stats.Shift, stats.FailureCount, stats.FmtMeanRepairH)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// Таблица отказов
	pdf.SetFont("Arial", "B", 8)
	widths := []float64{12, 20, 24, 26, 20, 26, 26, 14, 22}
	for i, header := range failureHeaders {
		pdf.Cell(widths[i], 7, tr(header))
	}
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 8)
	now := rs.reliability.Now()
	maxRows := 50
	for i := range data.FailureEvents {
		if i >= maxRows {
			pdf.Cell(190, 6, fmt.Sprintf("... e mais %d registros", len(data.FailureEvents)-maxRows))
			break
		}
		for j, value := range rs.failureRow(&data.FailureEvents[i], now) {
			pdf.Cell(widths[j], 6, tr(value))
		}
		pdf.Ln(6)
	}

	return filePath, pdf.OutputFileAndClose(filePath)
}

// writeExcel записывает Excel отчет: лист KPI и лист отказов
func (rs *ReportService) writeExcel(data *ReliabilityReport, filePath string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	kpiSheet := "Indicadores"
	f.SetSheetName("Sheet1", kpiSheet)

	kpiRows := [][]interface{}{
		{"Indicador", "Valor"},
		{"MTBF", data.FmtMTBF},
		{"MTTR", data.FmtMTTR},
		{"Disponibilidade", data.FmtAvailability},
		{"Falhas", data.FailureCount},
		{"Horas disponíveis", data.TotalAvailH},
		{"Horas em reparo", data.TotalRepairH},
		{"Turno com mais falhas", string(data.MostFailuresShift)},
		{"Turno com reparo mais lento", string(data.SlowestShift)},
	}
	for i, row := range kpiRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetSheetRow(kpiSheet, cell, &row)
	}

	failSheet := "Falhas"
	f.NewSheet(failSheet)

	headerRow := make([]interface{}, len(failureHeaders))
	for i, h := range failureHeaders {
		headerRow[i] = h
	}
	f.SetSheetRow(failSheet, "A1", &headerRow)

	now := rs.reliability.Now()
	for i := range data.FailureEvents {
		values := rs.failureRow(&data.FailureEvents[i], now)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(failSheet, cell, &row)
	}

	if err := f.SaveAs(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

// writeCSV записывает CSV с таблицей отказов
func (rs *ReportService) writeCSV(data *ReliabilityReport, filePath string) (string, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(failureHeaders); err != nil {
		return "", err
	}

	now := rs.reliability.Now()
	for i := range data.FailureEvents {
		if err := writer.Write(rs.failureRow(&data.FailureEvents[i], now)); err != nil {
			return "", err
		}
	}

	return filePath, nil
}

// writeJSON записывает полный расчет в JSON
func (rs *ReportService) writeJSON(data *ReliabilityReport, filePath string) (string, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	payload := map[string]interface{}{
		"report":       data,
		"generated_at": time.Now(),
	}

	return filePath, encoder.Encode(payload)
}

// markFailed помечает отчет как неуспешный
func (rs *ReportService) markFailed(report *models.Report, errorMsg string) {
	report.Status = models.ReportStatusFailed
	report.ErrorMsg = errorMsg
	rs.db.Save(report)
}
