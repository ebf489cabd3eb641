package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote de producción. completed y cancelled son terminales.
const (
	ProductionStatusPlanned    = "planned"
	ProductionStatusInProgress = "in_progress"
	ProductionStatusCompleted  = "completed"
	ProductionStatusCancelled  = "cancelled"
)

// Tipos de salida de producción.
const (
	OutputTypeFinishedProduct = "finished_product"
	OutputTypeByproduct       = "byproduct"
	OutputTypeWaste           = "waste" // nunca genera StockBatch ni código
)

// ProductionBatch representa una corrida de producción.
type ProductionBatch struct {
	ID             string
	TenantID       string
	BatchCode      string
	RecipeID       string
	ProductionDate time.Time
	Unit           string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsTerminal indica si el lote ya no admite cambios de estado.
func (p *ProductionBatch) IsTerminal() bool {
	return p.Status == ProductionStatusCompleted || p.Status == ProductionStatusCancelled
}

// ProductionBatchInput arista lote de stock -> lote de producción (consumo parcial permitido).
type ProductionBatchInput struct {
	ID                string
	TenantID          string
	ProductionBatchID string
	StockBatchID      string
	PlannedQuantity   decimal.Decimal
	ActualQuantity    *decimal.Decimal
}

// ConsumedQuantity devuelve la cantidad real si fue registrada; si no, la planificada.
func (in *ProductionBatchInput) ConsumedQuantity() decimal.Decimal {
	if in.ActualQuantity != nil {
		return *in.ActualQuantity
	}
	return in.PlannedQuantity
}

// ProductionBatchOutput salida de un lote de producción. StockBatchID y GeneratedBatchCode
// quedan vacíos para desperdicio.
type ProductionBatchOutput struct {
	ID                 string
	TenantID           string
	ProductionBatchID  string
	StockItemID        string
	OutputType         string
	Quantity           decimal.Decimal
	Unit               string
	UseByDate          *time.Time
	BestBeforeDate     *time.Time
	GeneratedBatchCode *string
	StockBatchID       *string
	CreatedAt          time.Time
	CreatedBy          string
}

// IsWaste indica si la salida es desperdicio (sin huella de genealogía).
func (o *ProductionBatchOutput) IsWaste() bool {
	return o.OutputType == OutputTypeWaste
}

// IsValidOutputType valida el tipo de salida.
func IsValidOutputType(t string) bool {
	switch t {
	case OutputTypeFinishedProduct, OutputTypeByproduct, OutputTypeWaste:
		return true
	}
	return false
}
