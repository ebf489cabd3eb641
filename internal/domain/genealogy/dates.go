package genealogy

import "time"

// DateOnly normaliza una fecha a medianoche UTC conservando año, mes y día.
// Las comparaciones de umbrales se hacen siempre sobre fechas sin hora.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today devuelve la fecha de "hoy" vista desde la zona horaria indicada (nil = UTC).
func Today(now time.Time, loc *time.Location) time.Time {
	if loc != nil {
		now = now.In(loc)
	}
	return DateOnly(now)
}

// DaysBetween cuenta días calendario de from a to (negativo si to es anterior).
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// SubtractWorkingDays resta n días a t. Con skipWeekends se omiten sábados y domingos.
func SubtractWorkingDays(t time.Time, n int, skipWeekends bool) time.Time {
	d := DateOnly(t)
	if !skipWeekends {
		return d.AddDate(0, 0, -n)
	}
	for n > 0 {
		d = d.AddDate(0, 0, -1)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		n--
	}
	return d
}
