package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/lock"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestScan_AutoExpire_TransicionMovimientoYAlerta(t *testing.T) {
	store := memory.NewStore()
	addBatch(store, "vencido", datePtr(2024, 1, 14), nil)
	s := newScanner(store, nil, nil, nil, lifecycle.Config{})

	summary := runScan(t, s, asOf)

	rs := summary.Rules[lifecycle.RuleAutoExpire]
	require.NotNil(t, rs)
	assert.Equal(t, 1, rs.Transitioned)
	assert.Equal(t, 1, rs.Notified)
	assert.Empty(t, rs.Errors)

	b := store.StockBatch("vencido")
	assert.Equal(t, entity.BatchStatusExpired, b.Status)
	assert.True(t, b.QuantityRemaining.Equal(decimal.NewFromInt(5)), "vencer no descuenta stock")

	movements := store.AllMovements()
	require.Len(t, movements, 1)
	assert.Equal(t, entity.BatchMovementAdjustment, movements[0].Type)
	assert.True(t, movements[0].Quantity.IsZero())
	assert.Contains(t, movements[0].Note, "2024-01-14")
	assert.Equal(t, lifecycle.RuleAutoExpire, movements[0].ReferenceID)

	notes := notificationsFor(store, lifecycle.RuleAutoExpire)
	require.Len(t, notes, 1)
	assert.Equal(t, entity.SeverityCritical, notes[0].Severity)
	assert.Equal(t, "stock_batch:vencido:auto_expire:use_by=2024-01-14", notes[0].DedupeKey)
	assert.Equal(t, tenantID, notes[0].TenantID)
}

func TestScan_UseByYBestBefore(t *testing.T) {
	store := memory.NewStore()
	addBatch(store, "hoy", datePtr(2024, 1, 15), nil)
	addBatch(store, "tres", datePtr(2024, 1, 18), nil)
	addBatch(store, "lejos", datePtr(2024, 1, 19), datePtr(2024, 1, 22))
	s := newScanner(store, nil, nil, nil, lifecycle.Config{})

	summary := runScan(t, s, asOf)

	assert.Equal(t, 0, summary.Rules[lifecycle.RuleAutoExpire].Notified)
	assert.Equal(t, 3, summary.Rules[lifecycle.RuleUseByApproaching].Evaluated)

	bySeverity := map[string]string{}
	for _, n := range notificationsFor(store, lifecycle.RuleUseByApproaching) {
		bySeverity[n.EntityID] = n.Severity
	}
	assert.Equal(t, map[string]string{"hoy": entity.SeverityCritical, "tres": entity.SeverityWarning}, bySeverity)

	bb := notificationsFor(store, lifecycle.RuleBestBeforeApproaching)
	require.Len(t, bb, 1)
	assert.Equal(t, "lejos", bb[0].EntityID)
	assert.Equal(t, entity.SeverityInfo, bb[0].Severity)
	assert.Equal(t, entity.BatchStatusActive, store.StockBatch("hoy").Status)
}

func TestScan_SegundaCorrida_Idempotente(t *testing.T) {
	store := memory.NewStore()
	addBatch(store, "vencido", datePtr(2024, 1, 14), nil)
	addBatch(store, "pronto", datePtr(2024, 1, 16), datePtr(2024, 1, 20))
	s := newScanner(store, nil, nil, nil, lifecycle.Config{})

	first := runScan(t, s, asOf)
	require.Equal(t, 3, first.TotalNotified())
	before := len(store.AllNotifications())

	second := runScan(t, s, asOf)
	assert.Equal(t, 0, second.TotalNotified())
	assert.Equal(t, 0, second.Rules[lifecycle.RuleAutoExpire].Transitioned)
	assert.Len(t, store.AllNotifications(), before)
	assert.Len(t, store.AllMovements(), 1)
}

func TestScan_CambioDeUmbral_NuevaAlerta(t *testing.T) {
	store := memory.NewStore()
	addBatch(store, "b", datePtr(2024, 1, 18), nil)
	s := newScanner(store, nil, nil, nil, lifecycle.Config{})

	runScan(t, s, asOf)
	runScan(t, s, asOf.AddDate(0, 0, 1)) // days_left=2, otro umbral
	runScan(t, s, asOf.AddDate(0, 0, 1))

	notes := notificationsFor(store, lifecycle.RuleUseByApproaching)
	require.Len(t, notes, 2)
	assert.NotEqual(t, notes[0].DedupeKey, notes[1].DedupeKey)
}

func TestScan_LoteVencidoEnLaCorrida_SinAlertaDeConsumoPreferente(t *testing.T) {
	store := memory.NewStore()
	addBatch(store, "mixto", datePtr(2024, 1, 14), datePtr(2024, 1, 18))
	s := newScanner(store, newStaleBatches(t, store), nil, nil, lifecycle.Config{Concurrency: 8})

	summary := runScan(t, s, asOf)

	assert.Equal(t, entity.BatchStatusExpired, store.StockBatch("mixto").Status)
	assert.Equal(t, 1, summary.Rules[lifecycle.RuleAutoExpire].Notified)
	assert.Equal(t, 1, summary.Rules[lifecycle.RuleBestBeforeApproaching].Evaluated, "la foto vieja aún lo incluye")
	assert.Equal(t, 0, summary.Rules[lifecycle.RuleBestBeforeApproaching].Notified)
	assert.Empty(t, notificationsFor(store, lifecycle.RuleBestBeforeApproaching))
}

func TestScan_ReglasDeLote_MismoResultadoConCualquierConcurrencia(t *testing.T) {
	for _, concurrency := range []int{1, 2, 8} {
		for range 10 {
			store := memory.NewStore()
			addBatch(store, "mixto", datePtr(2024, 1, 14), datePtr(2024, 1, 18))
			addBatch(store, "vigente", datePtr(2024, 1, 30), datePtr(2024, 1, 18))
			s := newScanner(store, nil, nil, nil, lifecycle.Config{Concurrency: concurrency})

			runScan(t, s, asOf)

			assert.Equal(t, entity.BatchStatusExpired, store.StockBatch("mixto").Status)
			bb := notificationsFor(store, lifecycle.RuleBestBeforeApproaching)
			require.Len(t, bb, 1, "concurrency=%d", concurrency)
			assert.Equal(t, "vigente", bb[0].EntityID)
			assert.Len(t, notificationsFor(store, lifecycle.RuleAutoExpire), 1)
		}
	}
}

func TestScan_LoteEnCuarentena_NoSeToca(t *testing.T) {
	store := memory.NewStore()
	store.AddStockBatch(&entity.StockBatch{
		ID: "q", TenantID: tenantID, BatchCode: "LOT-q",
		QuantityReceived: decimal.NewFromInt(10), QuantityRemaining: decimal.NewFromInt(10), Unit: "kg",
		UseByDate: datePtr(2024, 1, 1), Status: entity.BatchStatusQuarantined,
	})
	s := newScanner(store, nil, nil, nil, lifecycle.Config{})

	summary := runScan(t, s, asOf)

	assert.Equal(t, 0, summary.TotalNotified())
	assert.Equal(t, entity.BatchStatusQuarantined, store.StockBatch("q").Status)
	assert.Empty(t, store.AllMovements())
}

func TestScan_ZonaHoraria_DefineHoy(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	store := memory.NewStore()
	addBatch(store, "b", datePtr(2024, 1, 14), nil)
	s := newScanner(store, nil, nil, nil, lifecycle.Config{Location: bogota})

	// 03:00 UTC del 15 es todavía 14 en Bogotá
	summary := runScan(t, s, time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-01-14", summary.AsOf.Format(time.DateOnly))
	assert.Equal(t, entity.BatchStatusActive, store.StockBatch("b").Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Calidad
// ──────────────────────────────────────────────────────────────────────────────

func TestScan_Calibraciones_SoloLaVigentePorEquipo(t *testing.T) {
	store := memory.NewStore()
	store.AddCalibration(&entity.Calibration{ID: "old", TenantID: tenantID, AssetID: "horno", AssetName: "Horno 1", NextDue: date(2024, 1, 1)})
	store.AddCalibration(&entity.Calibration{ID: "new", TenantID: tenantID, AssetID: "horno", AssetName: "Horno 1", NextDue: date(2024, 6, 1)})
	store.AddCalibration(&entity.Calibration{ID: "bal", TenantID: tenantID, AssetID: "balanza", NextDue: date(2024, 1, 10)})
	store.AddCalibration(&entity.Calibration{ID: "hoy", TenantID: tenantID, AssetID: "termometro", NextDue: date(2024, 1, 15)})
	s := newScanner(store, nil, nil, nil, lifecycle.Config{})

	runScan(t, s, asOf)

	notes := notificationsFor(store, lifecycle.RuleCalibrationOverdue)
	require.Len(t, notes, 1)
	assert.Equal(t, "bal", notes[0].EntityID)
	assert.Equal(t, entity.SeverityWarning, notes[0].Severity)
	assert.Contains(t, notes[0].Message, "balanza", "sin nombre se usa el id del equipo")
}

func TestScan_AccionesCorrectivas(t *testing.T) {
	store := memory.NewStore()
	store.AddCorrectiveAction(&entity.CorrectiveAction{ID: "open", TenantID: tenantID, Title: "Limpieza", Status: entity.CorrectiveActionOpen, DueDate: date(2024, 1, 14)})
	store.AddCorrectiveAction(&entity.CorrectiveAction{ID: "verif", TenantID: tenantID, Title: "Rotulado", Status: entity.CorrectiveActionVerification, DueDate: date(2024, 1, 1)})
	store.AddCorrectiveAction(&entity.CorrectiveAction{ID: "closed", TenantID: tenantID, Title: "Plagas", Status: entity.CorrectiveActionClosed, DueDate: date(2024, 1, 1)})
	store.AddCorrectiveAction(&entity.CorrectiveAction{ID: "today", TenantID: tenantID, Title: "Filtro", Status: entity.CorrectiveActionInProgress, DueDate: date(2024, 1, 15)})
	s := newScanner(store, nil, nil, nil, lifecycle.Config{})

	runScan(t, s, asOf)

	notes := notificationsFor(store, lifecycle.RuleCorrectiveActionOverdue)
	require.Len(t, notes, 1)
	assert.Equal(t, "open", notes[0].EntityID)
}

func TestScan_AvisosDeRetiro(t *testing.T) {
	build := func() *memory.Store {
		store := memory.NewStore()
		store.AddRecallNotification(&entity.RecallNotification{ID: "jue", TenantID: tenantID, RecipientName: "Tienda A", Status: entity.RecallNotificationActive, InitiatedAt: date(2024, 1, 11)})
		store.AddRecallNotification(&entity.RecallNotification{ID: "ok", TenantID: tenantID, RecipientName: "Tienda B", Status: entity.RecallNotificationActive, Notified: true, InitiatedAt: date(2024, 1, 1)})
		store.AddRecallNotification(&entity.RecallNotification{ID: "fin", TenantID: tenantID, RecipientName: "Tienda C", Status: entity.RecallNotificationCompleted, InitiatedAt: date(2024, 1, 1)})
		return store
	}

	calendar := build()
	runScan(t, newScanner(calendar, nil, nil, nil, lifecycle.Config{}), asOf)
	notes := notificationsFor(calendar, lifecycle.RuleRecallNotificationOverdue)
	require.Len(t, notes, 1)
	assert.Equal(t, "jue", notes[0].EntityID)
	assert.Equal(t, entity.SeverityCritical, notes[0].Severity)

	business := build()
	runScan(t, newScanner(business, nil, nil, nil, lifecycle.Config{RecallBusinessDays: true}), asOf)
	assert.Empty(t, notificationsFor(business, lifecycle.RuleRecallNotificationOverdue))
}

func TestScan_DocumentosDeProveedor(t *testing.T) {
	store := memory.NewStore()
	store.AddSupplierDocument(&entity.SupplierDocument{ID: "cert", TenantID: tenantID, SupplierName: "Molinos", DocumentType: "Certificado HACCP", ExpiryDate: date(2024, 2, 14)})
	store.AddSupplierDocument(&entity.SupplierDocument{ID: "ficha", TenantID: tenantID, SupplierName: "Molinos", DocumentType: "Ficha técnica", ExpiryDate: date(2024, 2, 15)})
	s := newScanner(store, nil, nil, nil, lifecycle.Config{})

	runScan(t, s, asOf)

	notes := notificationsFor(store, lifecycle.RuleSupplierDocumentExpiring)
	require.Len(t, notes, 1)
	assert.Equal(t, "cert", notes[0].EntityID)
	assert.Equal(t, entity.SeverityInfo, notes[0].Severity)
	assert.Contains(t, notes[0].Message, "Certificado HACCP de Molinos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento, candado y entrega
// ──────────────────────────────────────────────────────────────────────────────

func TestScan_ErrorDeUnaRegla_NoDetieneLasDemas(t *testing.T) {
	store := memory.NewStore()
	addBatch(store, "vencido", datePtr(2024, 1, 14), nil)
	store.AddCalibration(&entity.Calibration{ID: "bal", TenantID: tenantID, AssetID: "balanza", NextDue: date(2024, 1, 10)})
	s := newScanner(store, failingCalibrations{store.Lifecycle()}, nil, nil, lifecycle.Config{})

	summary, err := s.Run(context.Background(), asOf)
	require.NoError(t, err)

	cal := summary.Rules[lifecycle.RuleCalibrationOverdue]
	require.Len(t, cal.Errors, 1)
	assert.Contains(t, cal.Errors[0], "calibraciones")
	assert.Equal(t, 1, summary.Rules[lifecycle.RuleAutoExpire].Transitioned)
}

func TestScan_CandadoTomado_EscaneoEnCurso(t *testing.T) {
	store := memory.NewStore()
	locker := lock.NewLocalLocker()
	s := newScanner(store, nil, nil, locker, lifecycle.Config{})
	ctx := context.Background()

	release, err := locker.Acquire(ctx, lifecycle.LockKey, time.Minute)
	require.NoError(t, err)

	_, err = s.Run(ctx, asOf)
	assert.True(t, errors.Is(err, domain.ErrScanInProgress))

	require.NoError(t, release(ctx))
	_, err = s.Run(ctx, asOf)
	assert.NoError(t, err)

	// El escaneo libera el candado al terminar
	again, err := locker.Acquire(ctx, lifecycle.LockKey, time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestScan_EntregaFallida_SeReintentaEnLaSiguiente(t *testing.T) {
	store := memory.NewStore()
	addBatch(store, "vencido", datePtr(2024, 1, 14), nil)
	addBatch(store, "pronto", datePtr(2024, 1, 16), nil)
	notifier := &fakeNotifier{fail: true}
	s := newScanner(store, nil, notifier, nil, lifecycle.Config{})

	first := runScan(t, s, asOf)
	assert.Equal(t, 2, first.TotalNotified())
	assert.Equal(t, 0, first.Delivered)
	assert.Equal(t, 2, first.DeliveryErrors, "no se reintenta dentro de la misma corrida")
	for _, n := range store.AllNotifications() {
		assert.Nil(t, n.DeliveredAt)
	}

	notifier.setFail(false)
	second := runScan(t, s, asOf)
	assert.Equal(t, 0, second.TotalNotified())
	assert.Equal(t, 2, second.Delivered)
	assert.Equal(t, 2, notifier.count())
	for _, n := range store.AllNotifications() {
		require.NotNil(t, n.DeliveredAt)
		assert.True(t, n.DeliveredAt.Equal(asOf))
	}

	third := runScan(t, s, asOf)
	assert.Equal(t, 0, third.Delivered)
	assert.Equal(t, 2, notifier.count())
}

func TestScan_SinNotifier_SoloRegistra(t *testing.T) {
	store := memory.NewStore()
	addBatch(store, "pronto", datePtr(2024, 1, 16), nil)
	s := newScanner(store, nil, nil, nil, lifecycle.Config{})

	summary := runScan(t, s, asOf)
	assert.Equal(t, 1, summary.TotalNotified())
	assert.Equal(t, 0, summary.Delivered)
	assert.Equal(t, 0, summary.DeliveryErrors)
}

func TestScan_ContextoCancelado(t *testing.T) {
	store := memory.NewStore()
	addBatch(store, "vencido", datePtr(2024, 1, 14), nil)
	s := newScanner(store, nil, nil, nil, lifecycle.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Run(ctx, asOf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, entity.BatchStatusActive, store.StockBatch("vencido").Status)
}

func TestToScanSummaryResponse(t *testing.T) {
	store := memory.NewStore()
	addBatch(store, "vencido", datePtr(2024, 1, 14), nil)
	summary := runScan(t, newScanner(store, nil, nil, nil, lifecycle.Config{}), asOf)

	res := lifecycle.ToScanSummaryResponse(summary)
	assert.Equal(t, "2024-01-15", res.AsOf)
	assert.Len(t, res.Rules, 7)
	assert.Equal(t, 1, res.Rules[lifecycle.RuleAutoExpire].Transitioned)
}

// ──────────────────────────────────────────────────────────────────────────────
// Scheduler
// ──────────────────────────────────────────────────────────────────────────────

func TestScheduler_EjecutaAlIniciarYTerminaConElContexto(t *testing.T) {
	store := memory.NewStore()
	addBatch(store, "vencido", datePtr(2024, 1, 14), nil)
	s := newScanner(store, nil, nil, nil, lifecycle.Config{})
	sched := lifecycle.NewScheduler(s, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		b := store.StockBatch("vencido")
		return b != nil && b.Status == entity.BatchStatusExpired
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("el scheduler no terminó tras cancelar el contexto")
	}
}
