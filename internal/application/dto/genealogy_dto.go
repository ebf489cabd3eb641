package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordOutputRequest body para POST /api/production-batches/:id/outputs.
// Unit es opcional; si viene debe coincidir con la unidad del lote de producción.
// BatchCode permite un código manual (omite la generación, no la verificación de unicidad).
type RecordOutputRequest struct {
	StockItemID    string          `json:"stock_item_id" validate:"required,max=64"`
	OutputType     string          `json:"output_type" validate:"required,oneof=finished_product byproduct waste"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit,omitempty" validate:"omitempty,max=16"`
	UseByDate      string          `json:"use_by_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	BestBeforeDate string          `json:"best_before_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	BatchCode      string          `json:"batch_code,omitempty" validate:"omitempty,max=64"`
}

// ProductionOutputResponse salida de producción registrada.
type ProductionOutputResponse struct {
	ID                 string          `json:"id"`
	ProductionBatchID  string          `json:"production_batch_id"`
	StockItemID        string          `json:"stock_item_id"`
	OutputType         string          `json:"output_type"`
	Quantity           decimal.Decimal `json:"quantity"`
	Unit               string          `json:"unit"`
	UseByDate          *string         `json:"use_by_date,omitempty"`
	BestBeforeDate     *string         `json:"best_before_date,omitempty"`
	GeneratedBatchCode *string         `json:"generated_batch_code,omitempty"`
	StockBatchID       *string         `json:"stock_batch_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// StockBatchResponse lote de stock.
type StockBatchResponse struct {
	ID                      string          `json:"id"`
	BatchCode               string          `json:"batch_code"`
	StockItemID             string          `json:"stock_item_id"`
	QuantityReceived        decimal.Decimal `json:"quantity_received"`
	QuantityRemaining       decimal.Decimal `json:"quantity_remaining"`
	Unit                    string          `json:"unit"`
	UseByDate               *string         `json:"use_by_date,omitempty"`
	BestBeforeDate          *string         `json:"best_before_date,omitempty"`
	Allergens               []string        `json:"allergens"`
	Status                  string          `json:"status"`
	OriginProductionBatchID *string         `json:"origin_production_batch_id,omitempty"`
}

// OutputResultResponse resultado de registrar una salida: el lote es nil para desperdicio.
type OutputResultResponse struct {
	Output     ProductionOutputResponse `json:"output"`
	StockBatch *StockBatchResponse      `json:"stock_batch,omitempty"`
}

// TraceNodeResponse nodo del grafo de trazabilidad.
type TraceNodeResponse struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Label     string           `json:"label"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	Unit      string           `json:"unit,omitempty"`
	Date      *string          `json:"date,omitempty"`
	Allergens []string         `json:"allergens,omitempty"`
	Status    string           `json:"status,omitempty"`
}

// TraceLinkResponse enlace dirigido aguas arriba -> aguas abajo.
type TraceLinkResponse struct {
	Source   string           `json:"source"`
	Target   string           `json:"target"`
	Relation string           `json:"relation"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Unit     string           `json:"unit,omitempty"`
}

// MassBalanceResponse conciliación de masa (solo trazas hacia adelante).
type MassBalanceResponse struct {
	Unit            string          `json:"unit"`
	TotalInput      decimal.Decimal `json:"total_input"`
	TotalOutput     decimal.Decimal `json:"total_output"`
	Variance        decimal.Decimal `json:"variance"`
	VariancePercent decimal.Decimal `json:"variance_percent"`
	SkippedNodes    int             `json:"skipped_nodes,omitempty"`
}

// TraceResponse grafo de linaje enraizado en la semilla.
type TraceResponse struct {
	SeedID      string               `json:"seed_id"`
	Direction   string               `json:"direction"`
	Nodes       []TraceNodeResponse  `json:"nodes"`
	Links       []TraceLinkResponse  `json:"links"`
	MassBalance *MassBalanceResponse `json:"mass_balance,omitempty"`
}

// GenerateBatchCodeRequest body para POST /api/batch-codes.
// Date (YYYY-MM-DD) es opcional; por defecto hoy.
type GenerateBatchCodeRequest struct {
	Template string `json:"template" validate:"required,max=64"`
	Scope    string `json:"scope" validate:"required,max=64"`
	Date     string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// BatchCodeResponse código generado.
type BatchCodeResponse struct {
	Code string `json:"code"`
}
