package services

import "time"

// Shift представляет рабочую смену
type Shift string

const (
	ShiftA       Shift = "A" // 06:30 - 15:00
	ShiftB       Shift = "B" // 15:00 - 23:00
	ShiftC       Shift = "C" // 23:00 - 06:30 (через полночь)
	ShiftUnknown Shift = "Desconhecido"
)

// Границы смен в дробных часах (час + минуты/60)
const (
	shiftAStart = 6.5  // 06:30
	shiftBStart = 15.0 // 15:00
	shiftCStart = 23.0 // 23:00
)

// ShiftOrder фиксированный порядок смен для отчетов и разрешения ничьих
var ShiftOrder = []Shift{ShiftA, ShiftB, ShiftC}

// ClassifyShift относит метку времени к одной из трех смен.
// Интервалы закрыты слева: ровно 06:30 — смена A, ровно 15:00 — смена B,
// ровно 23:00 — смена C. Нулевое время классифицируется как ShiftUnknown
// и никогда не приводится к смене молча.
func ClassifyShift(t time.Time) Shift {
	if t.IsZero() {
		return ShiftUnknown
	}

	h := float64(t.Hour()) + float64(t.Minute())/60.0

	switch {
	case h >= shiftAStart && h < shiftBStart:
		return ShiftA
	case h >= shiftBStart && h < shiftCStart:
		return ShiftB
	default:
		// Дополнение A∪B: [23:00, 24:00) ∪ [00:00, 06:30)
		return ShiftC
	}
}
