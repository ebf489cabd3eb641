package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotObtained otra instancia tiene el candado.
var ErrLockNotObtained = errors.New("candado no obtenido")

// ReleaseFunc libera un candado obtenido.
type ReleaseFunc func(ctx context.Context) error

// RunLocker candado distribuido para procesos de instancia única (escaneo de ciclo de vida).
type RunLocker interface {
	// Acquire devuelve ErrLockNotObtained si la llave ya está tomada.
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}
