package genealogy_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Trazabilidad-api/internal/application/genealogy"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	tenantID = "00000000-0000-0000-0000-0000000000aa"
	userID   = "00000000-0000-0000-0000-000000000001"
)

var (
	prodDate = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	now      = time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

// fixture store en memoria con RM(100 kg, gluten) -> PB(entrada 80 kg).
type fixture struct {
	store  *memory.Store
	record *genealogy.RecordOutputUseCase
	trace  *genealogy.TraceUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddStockBatch(&entity.StockBatch{
		ID:                   "rm",
		TenantID:             tenantID,
		BatchCode:            "RM-2024-0101-001",
		StockItemID:          "harina",
		QuantityReceived:     dec("100"),
		QuantityRemaining:    dec("20"),
		Unit:                 "kg",
		Allergens:            []string{"gluten"},
		Status:               entity.BatchStatusActive,
		OriginDeliveryLineID: strPtr("dl-1"),
	})
	store.AddProductionBatch(&entity.ProductionBatch{
		ID:             "pb",
		TenantID:       tenantID,
		BatchCode:      "PB-2024-0102-001",
		RecipeID:       "pan",
		ProductionDate: prodDate,
		Unit:           "kg",
		Status:         entity.ProductionStatusInProgress,
	})
	store.AddInput(&entity.ProductionBatchInput{
		ID:                "in-1",
		TenantID:          tenantID,
		ProductionBatchID: "pb",
		StockBatchID:      "rm",
		PlannedQuantity:   dec("80"),
	})

	clock := ports.FixedClock{At: now}
	return &fixture{
		store: store,
		record: genealogy.NewRecordOutputUseCase(
			store.TxRunner(), genealogy.NewCodeGenerator(0), genealogy.OutputConfig{}, clock,
		),
		trace: genealogy.NewTraceUseCase(
			store.Batches(), store.Productions(), store.Dispatches(), store.Parties(), zerolog.Nop(),
		),
	}
}

// constSequence devuelve siempre el mismo valor y cuenta las llamadas.
type constSequence struct {
	mu    sync.Mutex
	value int64
	calls int
}

func (s *constSequence) Next(context.Context, string, string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.value, nil
}
