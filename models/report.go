package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportFormat представляет формат экспорта отчета
type ReportFormat string

const (
	ReportFormatPDF   ReportFormat = "pdf"
	ReportFormatExcel ReportFormat = "excel"
	ReportFormatCSV   ReportFormat = "csv"
	ReportFormatJSON  ReportFormat = "json"
)

// ReportStatus представляет статус генерации отчета
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusFailed    ReportStatus = "failed"
)

// Report представляет сгенерированный отчет по показателям надежности
type Report struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Name   string       `json:"name" gorm:"not null;type:varchar(200)"`
	Format ReportFormat `json:"format" gorm:"not null;type:varchar(20)"`
	Status ReportStatus `json:"status" gorm:"default:pending;type:varchar(20)"`

	// Период отчета
	DateFrom time.Time `json:"date_from"`
	DateTo   time.Time `json:"date_to"`

	// Результат генерации
	FilePath    string `json:"file_path" gorm:"type:varchar(500)"`
	FileSize    int64  `json:"file_size"`
	RecordCount int    `json:"record_count"` // Количество отказов, вошедших в отчет
	ErrorMsg    string `json:"error_msg" gorm:"type:text"`

	// Кто запросил отчет (метка пользователя, не внешний ключ)
	RequestedBy string `json:"requested_by" gorm:"type:varchar(100)"`
}

// TableName задает имя таблицы для модели Report
func (Report) TableName() string {
	return "relatorios"
}
