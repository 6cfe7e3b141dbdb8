package services

import (
	"fmt"
	"time"
)

// ElapsedTime вычисляет длительность заявки. Для закрытой заявки это
// closedAt - openedAt, для открытой — now - openedAt (живая величина,
// растущая при повторных вычислениях). Отрицательный результат обрезается
// до нуля; второй результат сообщает, что обрезка произошла, — вызывающий
// обязан поднять замечание к качеству данных, а не скрыть его.
func ElapsedTime(openedAt time.Time, closedAt *time.Time, now time.Time) (time.Duration, bool) {
	end := now
	if closedAt != nil {
		end = *closedAt
	}

	d := end.Sub(openedAt)
	if d < 0 {
		return 0, true
	}
	return d, false
}

// FormatDuration раскладывает длительность на дни/часы/минуты для отображения.
// Только для показа: арифметика всегда ведется по числовой длительности.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalMinutes := int(d.Minutes())
	days := totalMinutes / (24 * 60)
	hours := (totalMinutes % (24 * 60)) / 60
	minutes := totalMinutes % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dmin", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	}
	return fmt.Sprintf("%dmin", minutes)
}
