package services

import "fmt"

// ValidationError означает, что ссылка на справочник не разрешается либо
// отсутствует обязательное поле. Операция прерывается без частичной записи.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
	}
	return "validation: " + e.Msg
}

// NewValidationError создает ошибку валидации для указанного поля
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// StorageError означает сбой чтения/записи в хранилище. Состояние бизнес-данных
// остается таким же, как до вызова; повтор — ответственность вызывающего.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError оборачивает ошибку хранилища с указанием операции
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// DataQualityWarning нефатальное замечание к данным: отрицательная
// длительность, нераспознанная смена и т.п. Агрегация продолжается.
type DataQualityWarning struct {
	WorkOrderID uint   `json:"work_order_id,omitempty"`
	Kind        string `json:"kind"`
	Detail      string `json:"detail"`
}

// Виды замечаний к качеству данных
const (
	WarnNegativeDuration = "negative_duration"
	WarnUnknownShift     = "unknown_shift"
	WarnOpenDuplicate    = "open_duplicate"
)
