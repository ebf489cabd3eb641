package lock

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
)

// LocalLocker candado en proceso para despliegues de una sola instancia y pruebas.
// El TTL se ignora: la llave se libera solo con la función devuelta.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

var _ ports.RunLocker = (*LocalLocker)(nil)

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, _ time.Duration) (ports.ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, ports.ErrLockNotObtained
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
		return nil
	}, nil
}
