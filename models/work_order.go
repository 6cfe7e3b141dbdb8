package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WorkOrderStatus представляет статус заявки на обслуживание
type WorkOrderStatus string

const (
	StatusPendente    WorkOrderStatus = "Pendente"
	StatusAberta      WorkOrderStatus = "Aberta - Parada"
	StatusEmAndamento WorkOrderStatus = "Em Andamento"
	StatusAguardando  WorkOrderStatus = "Aguardando Peças"
	StatusFechada     WorkOrderStatus = "Fechada" // Единственный терминальный статус
)

// AllStatuses возвращает полный набор статусов в порядке жизненного цикла
func AllStatuses() []WorkOrderStatus {
	return []WorkOrderStatus{StatusPendente, StatusAberta, StatusEmAndamento, StatusAguardando, StatusFechada}
}

// IsClosed сообщает, является ли статус терминальным
func (s WorkOrderStatus) IsClosed() bool {
	return s == StatusFechada
}

// IsValid проверяет, входит ли значение в закрытый набор статусов
func (s WorkOrderStatus) IsValid() bool {
	switch s {
	case StatusPendente, StatusAberta, StatusEmAndamento, StatusAguardando, StatusFechada:
		return true
	}
	return false
}

// Priority представляет приоритет заявки
type Priority string

const (
	PriorityHigh   Priority = "Alta"
	PriorityMedium Priority = "Média"
	PriorityLow    Priority = "Baixa"
)

// IsValid проверяет, входит ли значение в закрытый набор приоритетов
func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Classification представляет вид обслуживания
type Classification string

const (
	ClassPreventive Classification = "Preventiva"
	ClassCorrective Classification = "Corretiva"
	ClassPredictive Classification = "Preditiva"
)

// IsValid проверяет, входит ли значение в закрытый набор классификаций
func (c Classification) IsValid() bool {
	return c == ClassPreventive || c == ClassCorrective || c == ClassPredictive
}

// WorkOrder представляет заявку на обслуживание (ordem de serviço) по единице техники.
// Все метки времени хранятся как локальное время без смещения.
type WorkOrder struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Жизненный цикл. DataFechamento заполнена тогда и только тогда,
	// когда статус Fechada.
	OpenedAt time.Time       `json:"opened_at" gorm:"column:data_abertura;not null;index"`
	ClosedAt *time.Time      `json:"closed_at" gorm:"column:data_fechamento"`
	Status   WorkOrderStatus `json:"status" gorm:"column:status;type:varchar(30);default:'Pendente';index"`

	// Связи со справочниками
	EquipmentID     uint       `json:"equipment_id" gorm:"column:equipamento_id;not null;index"`
	Equipment       *Equipment `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID"`
	OperationTypeID uint       `json:"operation_type_id" gorm:"column:tipo_operacao_id;not null;index"`

	OperationType *OperationType `json:"operation_type,omitempty" gorm:"foreignKey:OperationTypeID"`

	ExecutantID *uint     `json:"executant_id" gorm:"column:executante_id"`
	Executant   *Employee `json:"executant,omitempty" gorm:"foreignKey:ExecutantID"`
	RequesterID *uint     `json:"requester_id" gorm:"column:solicitante_id"`
	Requester   *Employee `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`

	// Местоположение на момент открытия
	Location  string   `json:"location" gorm:"column:local;type:varchar(200)"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	Description  string `json:"description" gorm:"column:descricao;type:text"`
	TicketNumber string `json:"ticket_number" gorm:"column:numero_os_oficial;type:varchar(50)"` // Номер бумажной/ERP заявки

	Priority       Priority       `json:"priority" gorm:"column:prioridade;type:varchar(20);default:'Média'"`
	Classification Classification `json:"classification" gorm:"column:classificacao;type:varchar(20);default:'Corretiva'"`
	MachineStopped bool           `json:"machine_stopped" gorm:"column:maquina_parada;default:true"`

	// Показание счетчика (моточасы либо одометр) на момент открытия
	MeterReading decimal.Decimal `json:"meter_reading" gorm:"column:horimetro;type:decimal(12,2)"`
}

// TableName задает имя таблицы для модели WorkOrder
func (WorkOrder) TableName() string {
	return "ordens_servico"
}

// IsFailureEvent сообщает, учитывается ли заявка как отказ при расчете
// показателей надежности: корректирующее обслуживание с остановкой техники.
func (wo *WorkOrder) IsFailureEvent() bool {
	return wo.Classification == ClassCorrective && wo.MachineStopped
}
