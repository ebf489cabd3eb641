package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var (
	_ repository.DispatchRepository = (*DispatchRepo)(nil)
	_ repository.PartyRepository    = (*PartyRepo)(nil)
)

const dispatchColumns = `id, tenant_id, stock_batch_id, customer_id, quantity, unit, dispatch_date`

// DispatchRepo despachos de lotes (lectura).
type DispatchRepo struct {
	q Querier
}

// NewDispatchRepository construye el adaptador.
func NewDispatchRepository(q Querier) *DispatchRepo {
	return &DispatchRepo{q: q}
}

func scanDispatch(row pgx.Row) (*entity.BatchDispatchRecord, error) {
	var d entity.BatchDispatchRecord
	if err := row.Scan(&d.ID, &d.TenantID, &d.StockBatchID, &d.CustomerID, &d.Quantity, &d.Unit, &d.DispatchDate); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DispatchRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.BatchDispatchRecord, error) {
	query := `SELECT ` + dispatchColumns + ` FROM batch_dispatch_records WHERE id = $1 AND tenant_id = $2`
	d, err := scanDispatch(r.q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispatch: %w", err)
	}
	return d, nil
}

func (r *DispatchRepo) ListByStockBatch(ctx context.Context, tenantID, stockBatchID string) ([]*entity.BatchDispatchRecord, error) {
	query := `SELECT ` + dispatchColumns + ` FROM batch_dispatch_records
		WHERE tenant_id = $1 AND stock_batch_id = $2 ORDER BY dispatch_date, id`
	rows, err := r.q.Query(ctx, query, tenantID, stockBatchID)
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	return collect(rows, scanDispatch)
}

// PartyRepo proveedores y clientes (proyecciones de nombre).
type PartyRepo struct {
	q Querier
}

// NewPartyRepository construye el adaptador.
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

// GetSupplierByDeliveryLine resuelve el proveedor a través de la recepción de la línea.
func (r *PartyRepo) GetSupplierByDeliveryLine(ctx context.Context, tenantID, deliveryLineID string) (*entity.Supplier, error) {
	query := `
		SELECT s.id, s.tenant_id, s.name
		FROM delivery_lines dl
		JOIN deliveries d ON d.id = dl.delivery_id
		JOIN suppliers s ON s.id = d.supplier_id
		WHERE dl.id = $1 AND s.tenant_id = $2`
	var s entity.Supplier
	err := r.q.QueryRow(ctx, query, deliveryLineID, tenantID).Scan(&s.ID, &s.TenantID, &s.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier by delivery line: %w", err)
	}
	return &s, nil
}

func (r *PartyRepo) GetCustomer(ctx context.Context, tenantID, id string) (*entity.Customer, error) {
	var c entity.Customer
	err := r.q.QueryRow(ctx,
		`SELECT id, tenant_id, name FROM customers WHERE id = $1 AND tenant_id = $2`, id, tenantID,
	).Scan(&c.ID, &c.TenantID, &c.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}
