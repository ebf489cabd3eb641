package ports

import "time"

// Clock provee "ahora" a los casos de uso; inyectable para pruebas deterministas.
type Clock interface {
	Now() time.Time
}

// SystemClock reloj del sistema.
type SystemClock struct{}

// Now devuelve la hora actual.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock reloj detenido en un instante (pruebas y CLI con --as-of).
type FixedClock struct {
	At time.Time
}

// Now devuelve siempre el instante configurado.
func (c FixedClock) Now() time.Time { return c.At }
