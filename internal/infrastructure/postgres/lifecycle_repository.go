package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var (
	_ repository.LifecycleRepository    = (*LifecycleRepo)(nil)
	_ repository.NotificationRepository = (*NotificationRepo)(nil)
)

// LifecycleRepo consultas de candidatos del escáner (transversal a tenants).
type LifecycleRepo struct {
	q Querier
}

// NewLifecycleRepository construye el adaptador.
func NewLifecycleRepository(q Querier) *LifecycleRepo {
	return &LifecycleRepo{q: q}
}

func (r *LifecycleRepo) ListActiveBatchesWithStock(ctx context.Context) ([]*entity.StockBatch, error) {
	query := `SELECT ` + stockBatchColumns + ` FROM stock_batches
		WHERE status = $1 AND quantity_remaining > 0
		ORDER BY tenant_id, batch_code`
	rows, err := r.q.Query(ctx, query, entity.BatchStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active batches: %w", err)
	}
	return collect(rows, scanStockBatch)
}

// ListLatestCalibrations DISTINCT ON deja un registro por equipo: el de next_due más reciente.
func (r *LifecycleRepo) ListLatestCalibrations(ctx context.Context) ([]*entity.Calibration, error) {
	query := `
		SELECT DISTINCT ON (c.tenant_id, c.asset_id)
			c.id, c.tenant_id, c.asset_id, COALESCE(a.name, ''), c.calibrated_at, c.next_due
		FROM calibrations c
		LEFT JOIN assets a ON a.id = c.asset_id
		ORDER BY c.tenant_id, c.asset_id, c.next_due DESC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list latest calibrations: %w", err)
	}
	return collect(rows, func(row pgx.Row) (*entity.Calibration, error) {
		var c entity.Calibration
		if err := row.Scan(&c.ID, &c.TenantID, &c.AssetID, &c.AssetName, &c.CalibratedAt, &c.NextDue); err != nil {
			return nil, err
		}
		return &c, nil
	})
}

func (r *LifecycleRepo) ListCorrectiveActionsDueBefore(ctx context.Context, before time.Time) ([]*entity.CorrectiveAction, error) {
	query := `
		SELECT id, tenant_id, title, status, due_date
		FROM corrective_actions
		WHERE due_date < $1 AND status NOT IN ($2, $3)`
	rows, err := r.q.Query(ctx, query, before, entity.CorrectiveActionClosed, entity.CorrectiveActionVerification)
	if err != nil {
		return nil, fmt.Errorf("list overdue corrective actions: %w", err)
	}
	return collect(rows, func(row pgx.Row) (*entity.CorrectiveAction, error) {
		var a entity.CorrectiveAction
		if err := row.Scan(&a.ID, &a.TenantID, &a.Title, &a.Status, &a.DueDate); err != nil {
			return nil, err
		}
		return &a, nil
	})
}

func (r *LifecycleRepo) ListPendingRecallNotifications(ctx context.Context) ([]*entity.RecallNotification, error) {
	query := `
		SELECT n.id, n.tenant_id, n.recall_id, n.recipient_name, n.status, n.notified, r.initiated_at
		FROM recall_notifications n
		JOIN recalls r ON r.id = n.recall_id
		WHERE n.status = $1 AND NOT n.notified`
	rows, err := r.q.Query(ctx, query, entity.RecallNotificationActive)
	if err != nil {
		return nil, fmt.Errorf("list pending recall notifications: %w", err)
	}
	return collect(rows, func(row pgx.Row) (*entity.RecallNotification, error) {
		var n entity.RecallNotification
		if err := row.Scan(&n.ID, &n.TenantID, &n.RecallID, &n.RecipientName, &n.Status, &n.Notified, &n.InitiatedAt); err != nil {
			return nil, err
		}
		return &n, nil
	})
}

func (r *LifecycleRepo) ListSupplierDocumentsExpiringBetween(ctx context.Context, from, to time.Time) ([]*entity.SupplierDocument, error) {
	query := `
		SELECT d.id, d.tenant_id, d.supplier_id, s.name, d.document_type, d.expiry_date
		FROM supplier_documents d
		JOIN suppliers s ON s.id = d.supplier_id
		WHERE d.expiry_date BETWEEN $1 AND $2`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expiring supplier documents: %w", err)
	}
	return collect(rows, func(row pgx.Row) (*entity.SupplierDocument, error) {
		var d entity.SupplierDocument
		if err := row.Scan(&d.ID, &d.TenantID, &d.SupplierID, &d.SupplierName, &d.DocumentType, &d.ExpiryDate); err != nil {
			return nil, err
		}
		return &d, nil
	})
}

// NotificationRepo notificaciones del escáner.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Insert usa dedupe_key como objetivo de conflicto: una segunda inserción se ignora.
func (r *NotificationRepo) Insert(ctx context.Context, n *entity.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (id, tenant_id, entity_type, entity_id, rule_id, severity, title, message, dedupe_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (dedupe_key) DO NOTHING
		RETURNING id`
	var id string
	err := r.q.QueryRow(ctx, query,
		n.ID, n.TenantID, n.EntityType, n.EntityID, n.RuleID, n.Severity, n.Title, n.Message, n.DedupeKey, n.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert notification: %w", err)
	}
	return true, nil
}

func (r *NotificationRepo) ListUndelivered(ctx context.Context, limit int) ([]*entity.Notification, error) {
	query := `
		SELECT id, tenant_id, entity_type, entity_id, rule_id, severity, title, message, dedupe_key, created_at, delivered_at
		FROM notifications
		WHERE delivered_at IS NULL
		ORDER BY created_at
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list undelivered notifications: %w", err)
	}
	return collect(rows, func(row pgx.Row) (*entity.Notification, error) {
		var n entity.Notification
		if err := row.Scan(&n.ID, &n.TenantID, &n.EntityType, &n.EntityID, &n.RuleID, &n.Severity,
			&n.Title, &n.Message, &n.DedupeKey, &n.CreatedAt, &n.DeliveredAt); err != nil {
			return nil, err
		}
		return &n, nil
	})
}

func (r *NotificationRepo) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	if _, err := r.q.Exec(ctx, `UPDATE notifications SET delivered_at = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("mark notification delivered: %w", err)
	}
	return nil
}
