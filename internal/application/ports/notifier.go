package ports

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// Notifier puerto de salida para la entrega de alertas (email, push, cola de mensajes).
// El núcleo solo produce el registro; la entrega es responsabilidad del adaptador.
// Un error indica que la notificación debe reintentarse en el próximo escaneo.
type Notifier interface {
	Notify(ctx context.Context, n *entity.Notification) error
}
