package entity

import "time"

// Unidades de vida útil.
const (
	ShelfLifeUnitDays   = "days"
	ShelfLifeUnitWeeks  = "weeks"
	ShelfLifeUnitMonths = "months"
	ShelfLifeUnitYears  = "years"
)

// ProductSpecification regla de vida útil de un ítem de stock. Solo cuenta la activa
// actualizada más recientemente.
type ProductSpecification struct {
	ID            string
	TenantID      string
	StockItemID   string
	ShelfLife     int
	ShelfLifeUnit string // days por defecto
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
