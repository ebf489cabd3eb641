package lifecycle_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Trazabilidad-api/internal/application/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const tenantID = "00000000-0000-0000-0000-0000000000aa"

// asOf lunes 2024-01-15.
var asOf = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

// addBatch registra un lote activo con 5 kg restantes.
func addBatch(store *memory.Store, id string, useBy, bestBefore *time.Time) {
	store.AddStockBatch(&entity.StockBatch{
		ID:                id,
		TenantID:          tenantID,
		BatchCode:         "LOT-" + id,
		QuantityReceived:  decimal.NewFromInt(10),
		QuantityRemaining: decimal.NewFromInt(5),
		Unit:              "kg",
		UseByDate:         useBy,
		BestBeforeDate:    bestBefore,
		Status:            entity.BatchStatusActive,
	})
}

func newScanner(store *memory.Store, repo repository.LifecycleRepository, notifier ports.Notifier, locker ports.RunLocker, cfg lifecycle.Config) *lifecycle.Scanner {
	if repo == nil {
		repo = store.Lifecycle()
	}
	return lifecycle.NewScanner(
		store.TxRunner(), repo, store.Notifications(), notifier, locker,
		ports.FixedClock{At: asOf}, cfg, zerolog.Nop(),
	)
}

func runScan(t *testing.T, s *lifecycle.Scanner, at time.Time) *lifecycle.ScanSummary {
	t.Helper()
	summary, err := s.Run(context.Background(), at)
	if err != nil {
		t.Fatalf("escaneo: %v", err)
	}
	return summary
}

// notificationsFor filtra las notificaciones de una regla.
func notificationsFor(store *memory.Store, ruleID string) []entity.Notification {
	var out []entity.Notification
	for _, n := range store.AllNotifications() {
		if n.RuleID == ruleID {
			out = append(out, n)
		}
	}
	return out
}

// fakeNotifier registra entregas; con fail=true todas fallan.
type fakeNotifier struct {
	mu        sync.Mutex
	fail      bool
	delivered []string
}

func (f *fakeNotifier) Notify(_ context.Context, n *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker no disponible")
	}
	f.delivered = append(f.delivered, n.DedupeKey)
	return nil
}

func (f *fakeNotifier) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

// failingCalibrations falla al cargar calibraciones y delega el resto.
type failingCalibrations struct {
	repository.LifecycleRepository
}

func (failingCalibrations) ListLatestCalibrations(context.Context) ([]*entity.Calibration, error) {
	return nil, errors.New("tabla de calibraciones no disponible")
}

// staleBatches devuelve siempre la foto de lotes tomada antes del escaneo,
// como una lectura concurrente que no ve las transiciones ya confirmadas.
type staleBatches struct {
	repository.LifecycleRepository
	snapshot []*entity.StockBatch
}

func newStaleBatches(t *testing.T, store *memory.Store) *staleBatches {
	t.Helper()
	snap, err := store.Lifecycle().ListActiveBatchesWithStock(context.Background())
	if err != nil {
		t.Fatalf("foto de lotes: %v", err)
	}
	return &staleBatches{LifecycleRepository: store.Lifecycle(), snapshot: snap}
}

func (s *staleBatches) ListActiveBatchesWithStock(context.Context) ([]*entity.StockBatch, error) {
	out := make([]*entity.StockBatch, 0, len(s.snapshot))
	for _, b := range s.snapshot {
		c := *b
		out = append(out, &c)
	}
	return out, nil
}
