package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.StockBatchRepository = (*StockBatchRepo)(nil)

const stockBatchColumns = `
	id, tenant_id, batch_code, stock_item_id, quantity_received, quantity_remaining, unit,
	use_by_date, best_before_date, allergens, status, origin_delivery_line_id,
	origin_production_batch_id, created_at, updated_at`

// StockBatchRepo implementación de StockBatchRepository sobre PostgreSQL (usable con pool o tx).
type StockBatchRepo struct {
	q Querier
}

// NewStockBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockBatchRepository(q Querier) *StockBatchRepo {
	return &StockBatchRepo{q: q}
}

func scanStockBatch(row pgx.Row) (*entity.StockBatch, error) {
	var b entity.StockBatch
	err := row.Scan(
		&b.ID, &b.TenantID, &b.BatchCode, &b.StockItemID, &b.QuantityReceived, &b.QuantityRemaining, &b.Unit,
		&b.UseByDate, &b.BestBeforeDate, &b.Allergens, &b.Status, &b.OriginDeliveryLineID,
		&b.OriginProductionBatchID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserta el lote. ON CONFLICT DO NOTHING evita abortar la transacción en curso
// cuando el código ya existe, así el generador puede reintentar dentro de la misma tx.
func (r *StockBatchRepo) Create(ctx context.Context, b *entity.StockBatch) error {
	query := `
		INSERT INTO stock_batches (` + stockBatchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (tenant_id, batch_code) DO NOTHING
		RETURNING id`
	allergens := b.Allergens
	if allergens == nil {
		allergens = []string{}
	}
	var id string
	err := r.q.QueryRow(ctx, query,
		b.ID, b.TenantID, b.BatchCode, b.StockItemID, b.QuantityReceived, b.QuantityRemaining, b.Unit,
		b.UseByDate, b.BestBeforeDate, allergens, b.Status, b.OriginDeliveryLineID,
		b.OriginProductionBatchID, b.CreatedAt, b.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if isNoRows(err) || isUniqueViolation(err) {
			return domain.ErrStoreConflict
		}
		return fmt.Errorf("insert stock batch: %w", err)
	}
	return nil
}

func (r *StockBatchRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.StockBatch, error) {
	query := `SELECT ` + stockBatchColumns + ` FROM stock_batches WHERE id = $1 AND tenant_id = $2`
	b, err := scanStockBatch(r.q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock batch: %w", err)
	}
	return b, nil
}

func (r *StockBatchRepo) ListByIDs(ctx context.Context, tenantID string, ids []string) ([]*entity.StockBatch, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + stockBatchColumns + ` FROM stock_batches WHERE tenant_id = $1 AND id = ANY($2) ORDER BY batch_code`
	rows, err := r.q.Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("list stock batches: %w", err)
	}
	return collect(rows, scanStockBatch)
}

func (r *StockBatchRepo) ExistsByCode(ctx context.Context, tenantID, code string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_batches WHERE tenant_id = $1 AND batch_code = $2)`,
		tenantID, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists stock batch code: %w", err)
	}
	return exists, nil
}

// Expire transición condicional: solo afecta lotes que siguen en active.
func (r *StockBatchRepo) Expire(ctx context.Context, tenantID, id string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_batches SET status = $3, updated_at = $4
		WHERE id = $1 AND tenant_id = $2 AND status = $5`,
		id, tenantID, entity.BatchStatusExpired, at, entity.BatchStatusActive,
	)
	if err != nil {
		return false, fmt.Errorf("expire stock batch: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
