package lifecycle

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción. El escáner abre una por candidato:
// transición, movimiento y notificación se confirman juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}
