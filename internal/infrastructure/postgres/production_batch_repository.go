package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.ProductionBatchRepository = (*ProductionBatchRepo)(nil)

const (
	productionBatchColumns  = `id, tenant_id, batch_code, recipe_id, production_date, unit, status, created_at, updated_at`
	productionInputColumns  = `id, tenant_id, production_batch_id, stock_batch_id, planned_quantity, actual_quantity`
	productionOutputColumns = `
		id, tenant_id, production_batch_id, stock_item_id, output_type, quantity, unit,
		use_by_date, best_before_date, generated_batch_code, stock_batch_id, created_at, created_by`
)

// ProductionBatchRepo lotes de producción, entradas y salidas sobre PostgreSQL.
type ProductionBatchRepo struct {
	q Querier
}

// NewProductionBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionBatchRepository(q Querier) *ProductionBatchRepo {
	return &ProductionBatchRepo{q: q}
}

func scanProductionBatch(row pgx.Row) (*entity.ProductionBatch, error) {
	var pb entity.ProductionBatch
	if err := row.Scan(&pb.ID, &pb.TenantID, &pb.BatchCode, &pb.RecipeID, &pb.ProductionDate,
		&pb.Unit, &pb.Status, &pb.CreatedAt, &pb.UpdatedAt); err != nil {
		return nil, err
	}
	return &pb, nil
}

func scanProductionInput(row pgx.Row) (*entity.ProductionBatchInput, error) {
	var in entity.ProductionBatchInput
	if err := row.Scan(&in.ID, &in.TenantID, &in.ProductionBatchID, &in.StockBatchID,
		&in.PlannedQuantity, &in.ActualQuantity); err != nil {
		return nil, err
	}
	return &in, nil
}

func scanProductionOutput(row pgx.Row) (*entity.ProductionBatchOutput, error) {
	var o entity.ProductionBatchOutput
	if err := row.Scan(&o.ID, &o.TenantID, &o.ProductionBatchID, &o.StockItemID, &o.OutputType,
		&o.Quantity, &o.Unit, &o.UseByDate, &o.BestBeforeDate, &o.GeneratedBatchCode,
		&o.StockBatchID, &o.CreatedAt, &o.CreatedBy); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ProductionBatchRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.ProductionBatch, error) {
	query := `SELECT ` + productionBatchColumns + ` FROM production_batches WHERE id = $1 AND tenant_id = $2`
	pb, err := scanProductionBatch(r.q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production batch: %w", err)
	}
	return pb, nil
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *ProductionBatchRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ProductionBatch, error) {
	query := `SELECT ` + productionBatchColumns + ` FROM production_batches WHERE id = $1 AND tenant_id = $2 FOR UPDATE`
	pb, err := scanProductionBatch(r.q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production batch for update: %w", err)
	}
	return pb, nil
}

func (r *ProductionBatchRepo) ListInputs(ctx context.Context, tenantID, productionBatchID string) ([]*entity.ProductionBatchInput, error) {
	query := `SELECT ` + productionInputColumns + ` FROM production_batch_inputs
		WHERE tenant_id = $1 AND production_batch_id = $2 ORDER BY id`
	rows, err := r.q.Query(ctx, query, tenantID, productionBatchID)
	if err != nil {
		return nil, fmt.Errorf("list production inputs: %w", err)
	}
	return collect(rows, scanProductionInput)
}

func (r *ProductionBatchRepo) ListInputsByStockBatch(ctx context.Context, tenantID, stockBatchID string) ([]*entity.ProductionBatchInput, error) {
	query := `SELECT ` + productionInputColumns + ` FROM production_batch_inputs
		WHERE tenant_id = $1 AND stock_batch_id = $2 ORDER BY id`
	rows, err := r.q.Query(ctx, query, tenantID, stockBatchID)
	if err != nil {
		return nil, fmt.Errorf("list inputs by stock batch: %w", err)
	}
	return collect(rows, scanProductionInput)
}

func (r *ProductionBatchRepo) ListOutputs(ctx context.Context, tenantID, productionBatchID string) ([]*entity.ProductionBatchOutput, error) {
	query := `SELECT ` + productionOutputColumns + ` FROM production_batch_outputs
		WHERE tenant_id = $1 AND production_batch_id = $2 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, tenantID, productionBatchID)
	if err != nil {
		return nil, fmt.Errorf("list production outputs: %w", err)
	}
	return collect(rows, scanProductionOutput)
}

func (r *ProductionBatchRepo) GetOutputByStockBatch(ctx context.Context, tenantID, stockBatchID string) (*entity.ProductionBatchOutput, error) {
	query := `SELECT ` + productionOutputColumns + ` FROM production_batch_outputs
		WHERE tenant_id = $1 AND stock_batch_id = $2`
	o, err := scanProductionOutput(r.q.QueryRow(ctx, query, tenantID, stockBatchID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get output by stock batch: %w", err)
	}
	return o, nil
}

func (r *ProductionBatchRepo) CreateOutput(ctx context.Context, o *entity.ProductionBatchOutput) error {
	query := `INSERT INTO production_batch_outputs (` + productionOutputColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.TenantID, o.ProductionBatchID, o.StockItemID, o.OutputType, o.Quantity, o.Unit,
		o.UseByDate, o.BestBeforeDate, o.GeneratedBatchCode, o.StockBatchID, o.CreatedAt, o.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert production output: %w", err)
	}
	return nil
}
