package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// Convención de los adaptadores: GetXxx devuelve (nil, nil) cuando el registro no existe
// para el tenant indicado; las violaciones de unicidad se devuelven como domain.ErrStoreConflict.

// StockBatchRepository puerto de persistencia para lotes de stock.
type StockBatchRepository interface {
	// Create inserta el lote; domain.ErrStoreConflict si el código ya existe para el tenant.
	Create(ctx context.Context, batch *entity.StockBatch) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.StockBatch, error)
	ListByIDs(ctx context.Context, tenantID string, ids []string) ([]*entity.StockBatch, error)
	ExistsByCode(ctx context.Context, tenantID, code string) (bool, error)
	// Expire cambia active -> expired de forma condicional; false si el lote ya no estaba activo.
	Expire(ctx context.Context, tenantID, id string, at time.Time) (bool, error)
}

// ProductionBatchRepository puerto para lotes de producción y sus aristas de entrada/salida.
type ProductionBatchRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*entity.ProductionBatch, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) durante la transacción.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ProductionBatch, error)
	ListInputs(ctx context.Context, tenantID, productionBatchID string) ([]*entity.ProductionBatchInput, error)
	ListInputsByStockBatch(ctx context.Context, tenantID, stockBatchID string) ([]*entity.ProductionBatchInput, error)
	ListOutputs(ctx context.Context, tenantID, productionBatchID string) ([]*entity.ProductionBatchOutput, error)
	GetOutputByStockBatch(ctx context.Context, tenantID, stockBatchID string) (*entity.ProductionBatchOutput, error)
	CreateOutput(ctx context.Context, output *entity.ProductionBatchOutput) error
}

// BatchMovementRepository puerto append-only para movimientos de lote.
type BatchMovementRepository interface {
	Create(ctx context.Context, movement *entity.BatchMovement) error
	ListByStockBatch(ctx context.Context, tenantID, stockBatchID string) ([]*entity.BatchMovement, error)
}

// DispatchRepository puerto de lectura para despachos.
type DispatchRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*entity.BatchDispatchRecord, error)
	ListByStockBatch(ctx context.Context, tenantID, stockBatchID string) ([]*entity.BatchDispatchRecord, error)
}

// PartyRepository resuelve proveedores y clientes para los nodos extremos de la traza.
type PartyRepository interface {
	GetSupplierByDeliveryLine(ctx context.Context, tenantID, deliveryLineID string) (*entity.Supplier, error)
	GetCustomer(ctx context.Context, tenantID, id string) (*entity.Customer, error)
}

// SequenceRepository contador atómico por (tenant, ámbito) administrado por el almacenamiento.
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor (el primero es 1).
	Next(ctx context.Context, tenantID, scopeKey string) (int64, error)
}

// ProductSpecificationRepository puerto de lectura para reglas de vida útil.
type ProductSpecificationRepository interface {
	// GetActiveByStockItem devuelve la especificación activa actualizada más recientemente.
	GetActiveByStockItem(ctx context.Context, tenantID, stockItemID string) (*entity.ProductSpecification, error)
}
