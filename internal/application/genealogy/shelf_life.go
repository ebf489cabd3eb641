package genealogy

import (
	"context"
	"time"

	dgen "github.com/jhoicas/Trazabilidad-api/internal/domain/genealogy"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// ShelfLifeValidator verifica fechas de vencimiento contra la especificación activa del ítem.
type ShelfLifeValidator struct {
	specs repository.ProductSpecificationRepository
}

// NewShelfLifeValidator construye el validador.
func NewShelfLifeValidator(specs repository.ProductSpecificationRepository) *ShelfLifeValidator {
	return &ShelfLifeValidator{specs: specs}
}

// MaxUseBy devuelve la fecha máxima permitida o nil si el ítem no tiene especificación activa.
func (v *ShelfLifeValidator) MaxUseBy(ctx context.Context, tenantID, stockItemID string, productionDate time.Time) (*time.Time, error) {
	spec, err := v.specs.GetActiveByStockItem(ctx, tenantID, stockItemID)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, nil
	}
	max := dgen.MaxUseBy(spec, productionDate)
	return &max, nil
}

// Validate devuelve *domain.ShelfLifeExceededError (con la fecha máxima) si proposed la supera.
func (v *ShelfLifeValidator) Validate(ctx context.Context, tenantID string, proposed time.Time, stockItemID string, productionDate time.Time) error {
	max, err := v.MaxUseBy(ctx, tenantID, stockItemID, productionDate)
	if err != nil || max == nil {
		return err
	}
	return dgen.ValidateUseBy(proposed, *max)
}
