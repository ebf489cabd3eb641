package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote de stock. Solo se sale de active; nunca se vuelve a active (salvo restauración manual).
const (
	BatchStatusActive      = "active"
	BatchStatusExpired     = "expired"
	BatchStatusQuarantined = "quarantined"
	BatchStatusRecalled    = "recalled"
)

// StockBatch representa una cantidad física de un ítem de stock (materia prima o producido).
// Origen: línea de entrega (materia prima) o lote de producción (terminado/subproducto); nunca ambos.
// Un lote sin ningún origen es un ajuste manual.
type StockBatch struct {
	ID                      string
	TenantID                string
	BatchCode               string // único por tenant
	StockItemID             string
	QuantityReceived        decimal.Decimal
	QuantityRemaining       decimal.Decimal // 0 <= remaining <= received
	Unit                    string
	UseByDate               *time.Time
	BestBeforeDate          *time.Time
	Allergens               []string
	Status                  string
	OriginDeliveryLineID    *string
	OriginProductionBatchID *string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// IsRawMaterial indica si el lote proviene de una recepción de proveedor.
func (b *StockBatch) IsRawMaterial() bool {
	return b.OriginDeliveryLineID != nil && *b.OriginDeliveryLineID != ""
}

// IsProductionOrigin indica si el lote fue generado por una salida de producción.
func (b *StockBatch) IsProductionOrigin() bool {
	return b.OriginProductionBatchID != nil && *b.OriginProductionBatchID != ""
}

// HasValidOrigin verifica que el lote no declare ambos orígenes y que las cantidades sean coherentes.
func (b *StockBatch) HasValidOrigin() bool {
	if b.IsRawMaterial() && b.IsProductionOrigin() {
		return false
	}
	if b.QuantityRemaining.IsNegative() || b.QuantityRemaining.GreaterThan(b.QuantityReceived) {
		return false
	}
	return true
}

// CanTransitionTo valida la máquina de estados: solo active -> {expired, quarantined, recalled}.
func (b *StockBatch) CanTransitionTo(status string) bool {
	if b.Status != BatchStatusActive {
		return false
	}
	switch status {
	case BatchStatusExpired, BatchStatusQuarantined, BatchStatusRecalled:
		return true
	}
	return false
}
