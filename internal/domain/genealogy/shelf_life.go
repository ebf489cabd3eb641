package genealogy

import (
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// MaxUseBy calcula la fecha de vencimiento máxima: fecha de producción + vida útil.
func MaxUseBy(spec *entity.ProductSpecification, productionDate time.Time) time.Time {
	base := DateOnly(productionDate)
	switch spec.ShelfLifeUnit {
	case entity.ShelfLifeUnitWeeks:
		return base.AddDate(0, 0, 7*spec.ShelfLife)
	case entity.ShelfLifeUnitMonths:
		return base.AddDate(0, spec.ShelfLife, 0)
	case entity.ShelfLifeUnitYears:
		return base.AddDate(spec.ShelfLife, 0, 0)
	default:
		return base.AddDate(0, 0, spec.ShelfLife)
	}
}

// ValidateUseBy rechaza una fecha propuesta posterior al máximo (el máximo es inclusivo).
func ValidateUseBy(proposed, max time.Time) error {
	if DateOnly(proposed).After(DateOnly(max)) {
		return &domain.ShelfLifeExceededError{Max: DateOnly(max), Proposed: DateOnly(proposed)}
	}
	return nil
}
