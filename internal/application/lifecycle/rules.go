package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	dgen "github.com/jhoicas/Trazabilidad-api/internal/domain/genealogy"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// Identificadores de regla (forman parte de la llave de deduplicación, no cambiarlos).
const (
	RuleAutoExpire                = "auto_expire"
	RuleUseByApproaching          = "use_by_approaching"
	RuleBestBeforeApproaching     = "best_before_approaching"
	RuleCalibrationOverdue        = "calibration_overdue"
	RuleCorrectiveActionOverdue   = "corrective_action_overdue"
	RuleRecallNotificationOverdue = "recall_notification_overdue"
	RuleSupplierDocumentExpiring  = "supplier_document_expiring"
)

// Ventanas de anticipación en días.
const (
	useByWindowDays       = 3
	bestBeforeWindowDays  = 7
	supplierDocWindowDays = 30
	recallGraceDays       = 3
)

// Candidate proyección mínima de una entidad evaluada por una regla.
type Candidate struct {
	TenantID  string
	EntityID  string
	Label     string
	Status    string
	Due       time.Time // fecha umbral propia de la regla
	Remaining decimal.Decimal
	Pending   bool // acción sin cerrar / aviso sin notificar
}

// Breach umbral incumplido: define la notificación y si el lote debe pasar a expired.
type Breach struct {
	Tier     string
	Severity string
	Title    string
	Message  string
	Expire   bool
}

// Rule descriptor de regla: a qué entidad aplica, cómo cargar candidatos y el predicado.
// La lista de reglas es cerrada; el ejecutor es uno solo para todas.
// Las reglas con Transitions cambian el estado de la entidad y se ejecutan antes que el resto.
type Rule struct {
	ID          string
	EntityType  string
	Transitions bool
	Load        func(ctx context.Context, repo repository.LifecycleRepository, today time.Time) ([]Candidate, error)
	Check       func(c Candidate, today time.Time) *Breach
}

// RuleOptions parámetros que alteran el cálculo de algunas reglas.
type RuleOptions struct {
	// RecallBusinessDays omite sábados y domingos al contar los 3 días hábiles.
	RecallBusinessDays bool
}

// Rules devuelve la lista fija de reglas.
func Rules(opts RuleOptions) []Rule {
	return []Rule{
		{
			ID:          RuleAutoExpire,
			EntityType:  entity.EntityTypeStockBatch,
			Transitions: true,
			Load:        loadBatches(func(b *entity.StockBatch) *time.Time { return b.UseByDate }),
			Check: func(c Candidate, today time.Time) *Breach {
				if !activeWithStock(c) || !c.Due.Before(today) {
					return nil
				}
				return &Breach{
					Tier:     "use_by=" + day(c.Due),
					Severity: entity.SeverityCritical,
					Title:    "Lote vencido",
					Message:  fmt.Sprintf("El lote %s venció el %s y pasó a estado expired", c.Label, day(c.Due)),
					Expire:   true,
				}
			},
		},
		{
			ID:         RuleUseByApproaching,
			EntityType: entity.EntityTypeStockBatch,
			Load:       loadBatches(func(b *entity.StockBatch) *time.Time { return b.UseByDate }),
			Check: func(c Candidate, today time.Time) *Breach {
				if !activeWithStock(c) || !within(c.Due, today, useByWindowDays) {
					return nil
				}
				daysLeft := dgen.DaysBetween(today, c.Due)
				severity := entity.SeverityWarning
				if daysLeft <= 1 {
					severity = entity.SeverityCritical
				}
				return &Breach{
					Tier:     fmt.Sprintf("days_left=%d", daysLeft),
					Severity: severity,
					Title:    "Fecha límite de consumo próxima",
					Message:  fmt.Sprintf("El lote %s vence el %s (%d días)", c.Label, day(c.Due), daysLeft),
				}
			},
		},
		{
			ID:         RuleBestBeforeApproaching,
			EntityType: entity.EntityTypeStockBatch,
			Load:       loadBatches(func(b *entity.StockBatch) *time.Time { return b.BestBeforeDate }),
			Check: func(c Candidate, today time.Time) *Breach {
				if !activeWithStock(c) || !within(c.Due, today, bestBeforeWindowDays) {
					return nil
				}
				return &Breach{
					Tier:     "best_before=" + day(c.Due),
					Severity: entity.SeverityInfo,
					Title:    "Consumo preferente próximo",
					Message:  fmt.Sprintf("El lote %s tiene consumo preferente hasta el %s", c.Label, day(c.Due)),
				}
			},
		},
		{
			ID:         RuleCalibrationOverdue,
			EntityType: entity.EntityTypeCalibration,
			Load:       loadCalibrations,
			Check: func(c Candidate, today time.Time) *Breach {
				if !c.Due.Before(today) {
					return nil
				}
				return &Breach{
					Tier:     "next_due=" + day(c.Due),
					Severity: entity.SeverityWarning,
					Title:    "Calibración vencida",
					Message:  fmt.Sprintf("El equipo %s debía calibrarse el %s", c.Label, day(c.Due)),
				}
			},
		},
		{
			ID:         RuleCorrectiveActionOverdue,
			EntityType: entity.EntityTypeCorrectiveAction,
			Load:       loadCorrectiveActions,
			Check: func(c Candidate, today time.Time) *Breach {
				if !c.Pending || !c.Due.Before(today) {
					return nil
				}
				return &Breach{
					Tier:     "due=" + day(c.Due),
					Severity: entity.SeverityWarning,
					Title:    "Acción correctiva vencida",
					Message:  fmt.Sprintf("La acción correctiva %q venció el %s (estado %s)", c.Label, day(c.Due), c.Status),
				}
			},
		},
		{
			ID:         RuleRecallNotificationOverdue,
			EntityType: entity.EntityTypeRecallNotification,
			Load:       loadRecallNotifications,
			Check: func(c Candidate, today time.Time) *Breach {
				cutoff := dgen.SubtractWorkingDays(today, recallGraceDays, opts.RecallBusinessDays)
				if c.Status != entity.RecallNotificationActive || !c.Pending || !c.Due.Before(cutoff) {
					return nil
				}
				return &Breach{
					Tier:     "initiated=" + day(c.Due),
					Severity: entity.SeverityCritical,
					Title:    "Aviso de retiro sin notificar",
					Message:  fmt.Sprintf("%s no ha sido notificado del retiro iniciado el %s", c.Label, day(c.Due)),
				}
			},
		},
		{
			ID:         RuleSupplierDocumentExpiring,
			EntityType: entity.EntityTypeSupplierDocument,
			Load:       loadSupplierDocuments,
			Check: func(c Candidate, today time.Time) *Breach {
				if !within(c.Due, today, supplierDocWindowDays) {
					return nil
				}
				return &Breach{
					Tier:     "expiry=" + day(c.Due),
					Severity: entity.SeverityInfo,
					Title:    "Documento de proveedor por vencer",
					Message:  fmt.Sprintf("%s vence el %s", c.Label, day(c.Due)),
				}
			},
		},
	}
}

func activeWithStock(c Candidate) bool {
	return c.Status == entity.BatchStatusActive && c.Remaining.IsPositive()
}

// within: today <= due <= today+days.
func within(due, today time.Time, days int) bool {
	return !due.Before(today) && !due.After(today.AddDate(0, 0, days))
}

func day(t time.Time) string { return t.Format(time.DateOnly) }

func loadBatches(date func(*entity.StockBatch) *time.Time) func(context.Context, repository.LifecycleRepository, time.Time) ([]Candidate, error) {
	return func(ctx context.Context, repo repository.LifecycleRepository, _ time.Time) ([]Candidate, error) {
		batches, err := repo.ListActiveBatchesWithStock(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Candidate, 0, len(batches))
		for _, b := range batches {
			d := date(b)
			if d == nil {
				continue
			}
			out = append(out, Candidate{
				TenantID:  b.TenantID,
				EntityID:  b.ID,
				Label:     b.BatchCode,
				Status:    b.Status,
				Due:       dgen.DateOnly(*d),
				Remaining: b.QuantityRemaining,
			})
		}
		return out, nil
	}
}

func loadCalibrations(ctx context.Context, repo repository.LifecycleRepository, _ time.Time) ([]Candidate, error) {
	cals, err := repo.ListLatestCalibrations(ctx)
	if err != nil {
		return nil, err
	}
	latest := LatestPerAsset(cals)
	out := make([]Candidate, 0, len(latest))
	for _, c := range latest {
		label := c.AssetName
		if label == "" {
			label = c.AssetID
		}
		out = append(out, Candidate{TenantID: c.TenantID, EntityID: c.ID, Label: label, Due: dgen.DateOnly(c.NextDue)})
	}
	return out, nil
}

// LatestPerAsset conserva solo la calibración con NextDue más reciente por (tenant, equipo).
// Los registros reemplazados no deben generar alertas.
func LatestPerAsset(cals []*entity.Calibration) []*entity.Calibration {
	idx := make(map[string]int)
	var out []*entity.Calibration
	for _, c := range cals {
		key := c.TenantID + ":" + c.AssetID
		i, ok := idx[key]
		if !ok {
			idx[key] = len(out)
			out = append(out, c)
			continue
		}
		if c.NextDue.After(out[i].NextDue) {
			out[i] = c
		}
	}
	return out
}

func loadCorrectiveActions(ctx context.Context, repo repository.LifecycleRepository, today time.Time) ([]Candidate, error) {
	actions, err := repo.ListCorrectiveActionsDueBefore(ctx, today)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(actions))
	for _, a := range actions {
		out = append(out, Candidate{
			TenantID: a.TenantID,
			EntityID: a.ID,
			Label:    a.Title,
			Status:   a.Status,
			Due:      dgen.DateOnly(a.DueDate),
			Pending:  a.IsPendingClosure(),
		})
	}
	return out, nil
}

func loadRecallNotifications(ctx context.Context, repo repository.LifecycleRepository, _ time.Time) ([]Candidate, error) {
	notes, err := repo.ListPendingRecallNotifications(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(notes))
	for _, n := range notes {
		out = append(out, Candidate{
			TenantID: n.TenantID,
			EntityID: n.ID,
			Label:    n.RecipientName,
			Status:   n.Status,
			Due:      dgen.DateOnly(n.InitiatedAt),
			Pending:  !n.Notified,
		})
	}
	return out, nil
}

func loadSupplierDocuments(ctx context.Context, repo repository.LifecycleRepository, today time.Time) ([]Candidate, error) {
	docs, err := repo.ListSupplierDocumentsExpiringBetween(ctx, today, today.AddDate(0, 0, supplierDocWindowDays))
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(docs))
	for _, d := range docs {
		out = append(out, Candidate{
			TenantID: d.TenantID,
			EntityID: d.ID,
			Label:    fmt.Sprintf("%s de %s", d.DocumentType, d.SupplierName),
			Due:      dgen.DateOnly(d.ExpiryDate),
		})
	}
	return out, nil
}
