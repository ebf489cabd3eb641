package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.BatchMovementRepository = (*BatchMovementRepo)(nil)

// BatchMovementRepo movimientos de lote (solo INSERT y SELECT).
type BatchMovementRepo struct {
	q Querier
}

// NewBatchMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchMovementRepository(q Querier) *BatchMovementRepo {
	return &BatchMovementRepo{q: q}
}

func (r *BatchMovementRepo) Create(ctx context.Context, m *entity.BatchMovement) error {
	query := `
		INSERT INTO batch_movements (id, tenant_id, stock_batch_id, type, quantity, unit, note, reference_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.StockBatchID, m.Type, m.Quantity, m.Unit, m.Note, m.ReferenceID, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert batch movement: %w", err)
	}
	return nil
}

func (r *BatchMovementRepo) ListByStockBatch(ctx context.Context, tenantID, stockBatchID string) ([]*entity.BatchMovement, error) {
	query := `
		SELECT id, tenant_id, stock_batch_id, type, quantity, unit, note, reference_id, created_at, created_by
		FROM batch_movements WHERE tenant_id = $1 AND stock_batch_id = $2 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, tenantID, stockBatchID)
	if err != nil {
		return nil, fmt.Errorf("list batch movements: %w", err)
	}
	return collect(rows, func(row pgx.Row) (*entity.BatchMovement, error) {
		var m entity.BatchMovement
		if err := row.Scan(&m.ID, &m.TenantID, &m.StockBatchID, &m.Type, &m.Quantity, &m.Unit,
			&m.Note, &m.ReferenceID, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, err
		}
		return &m, nil
	})
}
