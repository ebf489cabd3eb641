package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// LifecycleRepository consultas de candidatos del escáner de ciclo de vida.
// Son transversales a tenants: cada entidad devuelta lleva su TenantID.
type LifecycleRepository interface {
	// ListActiveBatchesWithStock lotes con status active y cantidad restante > 0.
	ListActiveBatchesWithStock(ctx context.Context) ([]*entity.StockBatch, error)
	// ListLatestCalibrations la calibración con NextDue más reciente por equipo.
	ListLatestCalibrations(ctx context.Context) ([]*entity.Calibration, error)
	// ListCorrectiveActionsDueBefore acciones con fecha compromiso anterior a before.
	ListCorrectiveActionsDueBefore(ctx context.Context, before time.Time) ([]*entity.CorrectiveAction, error)
	// ListPendingRecallNotifications avisos activos aún no notificados.
	ListPendingRecallNotifications(ctx context.Context) ([]*entity.RecallNotification, error)
	// ListSupplierDocumentsExpiringBetween documentos con vencimiento en [from, to].
	ListSupplierDocumentsExpiringBetween(ctx context.Context, from, to time.Time) ([]*entity.SupplierDocument, error)
}

// NotificationRepository persistencia de alertas con deduplicación por DedupeKey.
type NotificationRepository interface {
	// Insert devuelve false (sin error) si ya existía una notificación con la misma DedupeKey.
	Insert(ctx context.Context, n *entity.Notification) (bool, error)
	ListUndelivered(ctx context.Context, limit int) ([]*entity.Notification, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
}
