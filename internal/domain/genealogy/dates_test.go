package genealogy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/genealogy"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSubtractWorkingDays_Calendario(t *testing.T) {
	// Lunes 2024-01-15 - 3 días calendario = viernes 12
	got := genealogy.SubtractWorkingDays(date(2024, 1, 15), 3, false)
	assert.Equal(t, date(2024, 1, 12), got)
}

func TestSubtractWorkingDays_Habiles(t *testing.T) {
	// Lunes 15 - 3 días hábiles = miércoles 10 (se saltan sábado y domingo)
	got := genealogy.SubtractWorkingDays(date(2024, 1, 15), 3, true)
	assert.Equal(t, date(2024, 1, 10), got)

	// Desde un domingo: viernes, jueves, miércoles
	got = genealogy.SubtractWorkingDays(date(2024, 1, 14), 3, true)
	assert.Equal(t, date(2024, 1, 10), got)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 3, genealogy.DaysBetween(date(2024, 1, 1), date(2024, 1, 4)))
	assert.Equal(t, -1, genealogy.DaysBetween(date(2024, 1, 2), date(2024, 1, 1)))
	// La hora no cuenta
	assert.Equal(t, 0, genealogy.DaysBetween(time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), date(2024, 1, 1)))
}

func TestToday_ZonaHoraria(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	now := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC) // 22:00 del día 1 en Bogotá
	assert.Equal(t, date(2024, 1, 1), genealogy.Today(now, bogota))
	assert.Equal(t, date(2024, 1, 2), genealogy.Today(now, nil))
}
