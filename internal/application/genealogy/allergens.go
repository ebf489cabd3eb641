package genealogy

import (
	"context"

	dgen "github.com/jhoicas/Trazabilidad-api/internal/domain/genealogy"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// AllergenPropagator calcula los alérgenos que hereda una salida de producción.
type AllergenPropagator struct {
	productions repository.ProductionBatchRepository
	batches     repository.StockBatchRepository
}

// NewAllergenPropagator construye el propagador.
func NewAllergenPropagator(productions repository.ProductionBatchRepository, batches repository.StockBatchRepository) *AllergenPropagator {
	return &AllergenPropagator{productions: productions, batches: batches}
}

// Inherited devuelve la unión de alérgenos de todos los lotes de entrada del lote de producción.
// Sin entradas devuelve un conjunto vacío.
func (p *AllergenPropagator) Inherited(ctx context.Context, tenantID, productionBatchID string) ([]string, error) {
	inputs, err := p.productions.ListInputs(ctx, tenantID, productionBatchID)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return []string{}, nil
	}
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.StockBatchID)
	}
	batches, err := p.batches.ListByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	sets := make([][]string, 0, len(batches))
	for _, b := range batches {
		sets = append(sets, b.Allergens)
	}
	return dgen.UnionAllergens(sets...), nil
}
