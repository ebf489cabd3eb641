package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var (
	_ repository.StockBatchRepository           = (*BatchRepo)(nil)
	_ repository.ProductionBatchRepository      = (*ProductionRepo)(nil)
	_ repository.BatchMovementRepository        = (*MovementRepo)(nil)
	_ repository.DispatchRepository             = (*DispatchRepo)(nil)
	_ repository.PartyRepository                = (*PartyRepo)(nil)
	_ repository.SequenceRepository             = (*SequenceRepo)(nil)
	_ repository.ProductSpecificationRepository = (*SpecificationRepo)(nil)
)

func copyBatch(b *entity.StockBatch) *entity.StockBatch {
	c := *b
	c.Allergens = append([]string(nil), b.Allergens...)
	return &c
}

// BatchRepo lotes de stock.
type BatchRepo struct{ handle }

func (r *BatchRepo) Create(_ context.Context, batch *entity.StockBatch) error {
	return r.write(func(st *state) error {
		if _, ok := st.batches[batch.ID]; ok {
			return domain.ErrStoreConflict
		}
		for _, b := range st.batches {
			if b.TenantID == batch.TenantID && b.BatchCode == batch.BatchCode {
				return domain.ErrStoreConflict
			}
		}
		st.batches[batch.ID] = copyBatch(batch)
		return nil
	})
}

func (r *BatchRepo) GetByID(_ context.Context, tenantID, id string) (*entity.StockBatch, error) {
	var out *entity.StockBatch
	r.read(func(st *state) {
		if b, ok := st.batches[id]; ok && b.TenantID == tenantID {
			out = copyBatch(b)
		}
	})
	return out, nil
}

func (r *BatchRepo) ListByIDs(_ context.Context, tenantID string, ids []string) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	r.read(func(st *state) {
		for _, id := range ids {
			if b, ok := st.batches[id]; ok && b.TenantID == tenantID {
				out = append(out, copyBatch(b))
			}
		}
	})
	return out, nil
}

func (r *BatchRepo) ExistsByCode(_ context.Context, tenantID, code string) (bool, error) {
	found := false
	r.read(func(st *state) {
		for _, b := range st.batches {
			if b.TenantID == tenantID && b.BatchCode == code {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *BatchRepo) Expire(_ context.Context, tenantID, id string, at time.Time) (bool, error) {
	expired := false
	err := r.write(func(st *state) error {
		b, ok := st.batches[id]
		if !ok || b.TenantID != tenantID || b.Status != entity.BatchStatusActive {
			return nil
		}
		b.Status = entity.BatchStatusExpired
		b.UpdatedAt = at
		expired = true
		return nil
	})
	return expired, err
}

// ProductionRepo lotes de producción con entradas y salidas.
type ProductionRepo struct{ handle }

func (r *ProductionRepo) GetByID(_ context.Context, tenantID, id string) (*entity.ProductionBatch, error) {
	var out *entity.ProductionBatch
	r.read(func(st *state) {
		if pb, ok := st.productions[id]; ok && pb.TenantID == tenantID {
			c := *pb
			out = &c
		}
	})
	return out, nil
}

// GetForUpdate en memoria equivale a GetByID: la transacción ya es exclusiva.
func (r *ProductionRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ProductionBatch, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *ProductionRepo) ListInputs(_ context.Context, tenantID, productionBatchID string) ([]*entity.ProductionBatchInput, error) {
	var out []*entity.ProductionBatchInput
	r.read(func(st *state) {
		for _, in := range st.inputs {
			if in.TenantID == tenantID && in.ProductionBatchID == productionBatchID {
				c := *in
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *ProductionRepo) ListInputsByStockBatch(_ context.Context, tenantID, stockBatchID string) ([]*entity.ProductionBatchInput, error) {
	var out []*entity.ProductionBatchInput
	r.read(func(st *state) {
		for _, in := range st.inputs {
			if in.TenantID == tenantID && in.StockBatchID == stockBatchID {
				c := *in
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *ProductionRepo) ListOutputs(_ context.Context, tenantID, productionBatchID string) ([]*entity.ProductionBatchOutput, error) {
	var out []*entity.ProductionBatchOutput
	r.read(func(st *state) {
		for _, o := range st.outputs {
			if o.TenantID == tenantID && o.ProductionBatchID == productionBatchID {
				c := *o
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *ProductionRepo) GetOutputByStockBatch(_ context.Context, tenantID, stockBatchID string) (*entity.ProductionBatchOutput, error) {
	var out *entity.ProductionBatchOutput
	r.read(func(st *state) {
		for _, o := range st.outputs {
			if o.TenantID == tenantID && o.StockBatchID != nil && *o.StockBatchID == stockBatchID {
				c := *o
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *ProductionRepo) CreateOutput(_ context.Context, output *entity.ProductionBatchOutput) error {
	return r.write(func(st *state) error {
		if _, ok := st.productions[output.ProductionBatchID]; !ok {
			return domain.ErrEntityNotFound
		}
		c := *output
		st.outputs = append(st.outputs, &c)
		return nil
	})
}

// MovementRepo movimientos append-only.
type MovementRepo struct{ handle }

func (r *MovementRepo) Create(_ context.Context, m *entity.BatchMovement) error {
	return r.write(func(st *state) error {
		if _, ok := st.batches[m.StockBatchID]; !ok {
			return domain.ErrEntityNotFound
		}
		c := *m
		st.movements = append(st.movements, &c)
		return nil
	})
}

func (r *MovementRepo) ListByStockBatch(_ context.Context, tenantID, stockBatchID string) ([]*entity.BatchMovement, error) {
	var out []*entity.BatchMovement
	r.read(func(st *state) {
		for _, m := range st.movements {
			if m.TenantID == tenantID && m.StockBatchID == stockBatchID {
				c := *m
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

// DispatchRepo despachos.
type DispatchRepo struct{ handle }

func (r *DispatchRepo) GetByID(_ context.Context, tenantID, id string) (*entity.BatchDispatchRecord, error) {
	var out *entity.BatchDispatchRecord
	r.read(func(st *state) {
		for _, d := range st.dispatches {
			if d.ID == id && d.TenantID == tenantID {
				c := *d
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *DispatchRepo) ListByStockBatch(_ context.Context, tenantID, stockBatchID string) ([]*entity.BatchDispatchRecord, error) {
	var out []*entity.BatchDispatchRecord
	r.read(func(st *state) {
		for _, d := range st.dispatches {
			if d.TenantID == tenantID && d.StockBatchID == stockBatchID {
				c := *d
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

// PartyRepo proveedores y clientes.
type PartyRepo struct{ handle }

func (r *PartyRepo) GetSupplierByDeliveryLine(_ context.Context, tenantID, deliveryLineID string) (*entity.Supplier, error) {
	var out *entity.Supplier
	r.read(func(st *state) {
		sid, ok := st.deliveryLines[deliveryLineID]
		if !ok {
			return
		}
		if s, ok := st.suppliers[sid]; ok && s.TenantID == tenantID {
			c := *s
			out = &c
		}
	})
	return out, nil
}

func (r *PartyRepo) GetCustomer(_ context.Context, tenantID, id string) (*entity.Customer, error) {
	var out *entity.Customer
	r.read(func(st *state) {
		if c, ok := st.customers[id]; ok && c.TenantID == tenantID {
			cp := *c
			out = &cp
		}
	})
	return out, nil
}

// SequenceRepo contadores por (tenant, ámbito).
type SequenceRepo struct{ handle }

func (r *SequenceRepo) Next(_ context.Context, tenantID, scopeKey string) (int64, error) {
	var next int64
	err := r.write(func(st *state) error {
		key := tenantID + "|" + scopeKey
		st.sequences[key]++
		next = st.sequences[key]
		return nil
	})
	return next, err
}

// SpecificationRepo especificaciones de producto.
type SpecificationRepo struct{ handle }

func (r *SpecificationRepo) GetActiveByStockItem(_ context.Context, tenantID, stockItemID string) (*entity.ProductSpecification, error) {
	var out *entity.ProductSpecification
	r.read(func(st *state) {
		var candidates []*entity.ProductSpecification
		for _, s := range st.specs {
			if s.TenantID == tenantID && s.StockItemID == stockItemID && s.IsActive {
				candidates = append(candidates, s)
			}
		}
		if len(candidates) == 0 {
			return
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].UpdatedAt.After(candidates[j].UpdatedAt)
		})
		c := *candidates[0]
		out = &c
	})
	return out, nil
}
