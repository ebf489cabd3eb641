package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de lote.
const (
	BatchMovementReceived   = "received"
	BatchMovementAdjustment = "adjustment"
	BatchMovementDispatch   = "dispatch"
)

// BatchMovement registro de auditoría append-only de un evento que afecta cantidad de un lote.
// Nunca se modifica ni se elimina.
type BatchMovement struct {
	ID           string
	TenantID     string
	StockBatchID string
	Type         string
	Quantity     decimal.Decimal
	Unit         string
	Note         string
	ReferenceID  string // lote de producción, despacho o regla que lo originó
	CreatedAt    time.Time
	CreatedBy    string
}
