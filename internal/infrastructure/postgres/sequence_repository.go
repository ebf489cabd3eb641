package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var (
	_ repository.SequenceRepository             = (*SequenceRepo)(nil)
	_ repository.ProductSpecificationRepository = (*ProductSpecificationRepo)(nil)
)

// SequenceRepo contadores de códigos de lote.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incremento atómico en una sola sentencia: varias instancias nunca obtienen el mismo valor.
func (r *SequenceRepo) Next(ctx context.Context, tenantID, scopeKey string) (int64, error) {
	query := `
		INSERT INTO batch_code_sequences (tenant_id, scope_key, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, scope_key)
		DO UPDATE SET value = batch_code_sequences.value + 1
		RETURNING value`
	var value int64
	if err := r.q.QueryRow(ctx, query, tenantID, scopeKey).Scan(&value); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return value, nil
}

// ProductSpecificationRepo especificaciones de vida útil.
type ProductSpecificationRepo struct {
	q Querier
}

// NewProductSpecificationRepository construye el adaptador.
func NewProductSpecificationRepository(q Querier) *ProductSpecificationRepo {
	return &ProductSpecificationRepo{q: q}
}

func (r *ProductSpecificationRepo) GetActiveByStockItem(ctx context.Context, tenantID, stockItemID string) (*entity.ProductSpecification, error) {
	query := `
		SELECT id, tenant_id, stock_item_id, shelf_life, shelf_life_unit, is_active, created_at, updated_at
		FROM product_specifications
		WHERE tenant_id = $1 AND stock_item_id = $2 AND is_active
		ORDER BY updated_at DESC
		LIMIT 1`
	var s entity.ProductSpecification
	err := r.q.QueryRow(ctx, query, tenantID, stockItemID).Scan(
		&s.ID, &s.TenantID, &s.StockItemID, &s.ShelfLife, &s.ShelfLifeUnit, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active specification: %w", err)
	}
	return &s, nil
}
