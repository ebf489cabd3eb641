package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchDispatchRecord despacho de un lote a un cliente (arista terminal de la traza hacia adelante).
type BatchDispatchRecord struct {
	ID           string
	TenantID     string
	StockBatchID string
	CustomerID   string
	Quantity     decimal.Decimal
	Unit         string
	DispatchDate time.Time
}

// Customer proyección de solo lectura usada como nodo terminal de la traza.
type Customer struct {
	ID       string
	TenantID string
	Name     string
}

// Supplier proyección de solo lectura usada como nodo origen de la traza.
type Supplier struct {
	ID       string
	TenantID string
	Name     string
}
