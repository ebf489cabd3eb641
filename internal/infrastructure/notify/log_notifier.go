package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// LogNotifier escribe las notificaciones en el log. Se usa cuando no hay Pub/Sub configurado.
type LogNotifier struct {
	log zerolog.Logger
}

var _ ports.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n *entity.Notification) error {
	m := toMessage(n)
	l.log.Info().
		Str("tenant_id", m.TenantID).
		Str("entity_type", m.EntityType).
		Str("entity_id", m.EntityID).
		Str("rule_id", m.RuleID).
		Str("severity", m.Severity).
		Str("dedupe_key", m.DedupeKey).
		Msg(m.Title)
	return nil
}
