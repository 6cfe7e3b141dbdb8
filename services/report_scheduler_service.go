package services

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"backend_frota/models"
)

// ReportSchedulerService генерирует ежедневный PDF с показателями
// предыдущего дня по расписанию
type ReportSchedulerService struct {
	reports *ReportService
	cron    *cron.Cron
	logger  *log.Logger

	// Cron-выражение; по умолчанию каждый день в 06:00
	Spec string
}

// NewReportSchedulerService создает новый планировщик отчетов
func NewReportSchedulerService(reports *ReportService, logger *log.Logger) *ReportSchedulerService {
	return &ReportSchedulerService{
		reports: reports,
		cron:    cron.New(),
		logger:  logger,
		Spec:    "0 6 * * *",
	}
}

// Start запускает планировщик
func (rss *ReportSchedulerService) Start() error {
	_, err := rss.cron.AddFunc(rss.Spec, rss.runDaily)
	if err != nil {
		return err
	}

	rss.cron.Start()
	if rss.logger != nil {
		rss.logger.Printf("✅ Agendador de relatórios iniciado (%s)", rss.Spec)
	}
	return nil
}

// Stop останавливает планировщик
func (rss *ReportSchedulerService) Stop() {
	rss.cron.Stop()
	if rss.logger != nil {
		rss.logger.Println("Agendador de relatórios parado")
	}
}

// runDaily генерирует отчет за вчерашний день
func (rss *ReportSchedulerService) runDaily() {
	end := time.Now().AddDate(0, 0, -1)
	start := end

	params := ReliabilityParams{Start: start, End: end}

	report, err := rss.reports.GenerateReliabilityReport("agendador", params, WorkOrderFilters{}, models.ReportFormatPDF)
	if err != nil {
		if rss.logger != nil {
			rss.logger.Printf("⚠️  Falha ao gerar relatório diário: %v", err)
		}
		return
	}

	if rss.logger != nil {
		rss.logger.Printf("✅ Relatório diário gerado: %s (%d falhas)", report.FilePath, report.RecordCount)
	}
}
