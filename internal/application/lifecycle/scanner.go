package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	dgen "github.com/jhoicas/Trazabilidad-api/internal/domain/genealogy"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// LockKey llave del candado distribuido del escaneo.
const LockKey = "lifecycle-scan"

const systemUser = "system:lifecycle-scan"

// Config parámetros del escáner.
type Config struct {
	Concurrency        int            // reglas evaluadas en paralelo
	RecallBusinessDays bool           // días hábiles sin fines de semana para avisos de retiro
	LockTTL            time.Duration  // vigencia del candado
	RedeliveryBatch    int            // notificaciones pendientes reenviadas por escaneo
	Location           *time.Location // zona horaria para "hoy"
}

// RuleSummary contadores de una regla.
type RuleSummary struct {
	Evaluated    int
	Transitioned int
	Notified     int
	Errors       []string
}

// ScanSummary resultado de un escaneo.
type ScanSummary struct {
	AsOf           time.Time
	Rules          map[string]*RuleSummary
	Delivered      int
	DeliveryErrors int
}

// TotalNotified suma de notificaciones nuevas de todas las reglas.
func (s *ScanSummary) TotalNotified() int {
	total := 0
	for _, r := range s.Rules {
		total += r.Notified
	}
	return total
}

// Scanner evalúa la lista fija de reglas contra las entidades activas.
// Cada candidato se procesa en su propia transacción, así un escaneo interrumpido
// puede repetirse: las transiciones son monótonas y las notificaciones se deduplican.
type Scanner struct {
	txRunner      TxRunner
	lifecycle     repository.LifecycleRepository
	notifications repository.NotificationRepository
	notifier      ports.Notifier
	locker        ports.RunLocker
	clock         ports.Clock
	rules         []Rule
	cfg           Config
	log           zerolog.Logger
}

// NewScanner construye el escáner. notifier y locker pueden ser nil.
func NewScanner(
	txRunner TxRunner,
	lifecycleRepo repository.LifecycleRepository,
	notifications repository.NotificationRepository,
	notifier ports.Notifier,
	locker ports.RunLocker,
	clock ports.Clock,
	cfg Config,
	log zerolog.Logger,
) *Scanner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	if cfg.RedeliveryBatch <= 0 {
		cfg.RedeliveryBatch = 500
	}
	return &Scanner{
		txRunner:      txRunner,
		lifecycle:     lifecycleRepo,
		notifications: notifications,
		notifier:      notifier,
		locker:        locker,
		clock:         clock,
		rules:         Rules(RuleOptions{RecallBusinessDays: cfg.RecallBusinessDays}),
		cfg:           cfg,
		log:           log,
	}
}

// Run ejecuta un escaneo para la fecha asOf (cero = ahora). Los errores de una regla
// quedan en el resumen y no detienen las demás; solo el candado o el contexto abortan.
func (s *Scanner) Run(ctx context.Context, asOf time.Time) (*ScanSummary, error) {
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	today := dgen.Today(asOf, s.cfg.Location)

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, LockKey, s.cfg.LockTTL)
		if errors.Is(err, ports.ErrLockNotObtained) {
			return nil, domain.ErrScanInProgress
		}
		if err != nil {
			return nil, fmt.Errorf("obtener candado %s: %w", LockKey, err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn().Err(err).Msg("liberar candado de escaneo")
			}
		}()
	}

	summary := &ScanSummary{AsOf: today, Rules: make(map[string]*RuleSummary, len(s.rules))}
	results := make([]*RuleSummary, len(s.rules))
	var (
		mu        sync.Mutex
		attempted = make(map[string]struct{})
	)

	// Primero las reglas que cambian estado, luego el resto ya ve el estado final.
	for _, transitions := range []bool{true, false} {
		var g errgroup.Group
		g.SetLimit(s.cfg.Concurrency)
		for i, rule := range s.rules {
			if rule.Transitions != transitions {
				continue
			}
			g.Go(func() error {
				rs, delivered, failed, ids := s.evaluate(ctx, rule, today)
				results[i] = rs
				mu.Lock()
				summary.Delivered += delivered
				summary.DeliveryErrors += failed
				for _, id := range ids {
					attempted[id] = struct{}{}
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}
	for i, rule := range s.rules {
		summary.Rules[rule.ID] = results[i]
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	delivered, failed := s.redeliver(ctx, attempted)
	summary.Delivered += delivered
	summary.DeliveryErrors += failed

	s.log.Info().
		Str("as_of", today.Format(time.DateOnly)).
		Int("notified", summary.TotalNotified()).
		Int("delivered", summary.Delivered).
		Int("delivery_errors", summary.DeliveryErrors).
		Msg("escaneo de ciclo de vida finalizado")
	return summary, nil
}

// evaluate es el ejecutor genérico: cargar candidatos -> predicado -> transición opcional ->
// notificación con llave de deduplicación. Devuelve también los ids de notificación
// cuya entrega ya se intentó en esta corrida.
func (s *Scanner) evaluate(ctx context.Context, rule Rule, today time.Time) (*RuleSummary, int, int, []string) {
	rs := &RuleSummary{}
	log := s.log.With().Str("rule", rule.ID).Logger()

	candidates, err := rule.Load(ctx, s.lifecycle, today)
	if err != nil {
		log.Error().Err(err).Msg("cargar candidatos")
		rs.Errors = append(rs.Errors, fmt.Sprintf("cargar candidatos: %v", err))
		return rs, 0, 0, nil
	}

	var (
		delivered, failed int
		attempted         []string
	)
	for _, c := range candidates {
		if ctx.Err() != nil {
			rs.Errors = append(rs.Errors, ctx.Err().Error())
			break
		}
		rs.Evaluated++
		breach := rule.Check(c, today)
		if breach == nil {
			continue
		}
		n, transitioned, err := s.apply(ctx, rule, c, breach)
		if err != nil {
			log.Error().Err(err).Str("entity_id", c.EntityID).Msg("aplicar regla")
			rs.Errors = append(rs.Errors, fmt.Sprintf("%s: %v", c.EntityID, err))
			continue
		}
		if transitioned {
			rs.Transitioned++
		}
		if n == nil {
			continue
		}
		rs.Notified++
		if s.notifier != nil {
			attempted = append(attempted, n.ID)
			if s.deliver(ctx, n) {
				delivered++
			} else {
				failed++
			}
		}
	}
	return rs, delivered, failed, attempted
}

// apply confirma en una transacción la transición (si aplica), su movimiento y la notificación.
// Devuelve la notificación solo si se insertó (no existía la llave).
func (s *Scanner) apply(ctx context.Context, rule Rule, c Candidate, b *Breach) (*entity.Notification, bool, error) {
	now := s.clock.Now()
	var (
		inserted     *entity.Notification
		transitioned bool
	)
	err := s.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if rule.EntityType == entity.EntityTypeStockBatch {
			current, err := repos.Batches.GetByID(ctx, c.TenantID, c.EntityID)
			if err != nil {
				return err
			}
			// El candidato pudo salir de active después de cargarse.
			if current == nil || current.Status != entity.BatchStatusActive || !current.QuantityRemaining.IsPositive() {
				return nil
			}
		}
		if b.Expire {
			ok, err := repos.Batches.Expire(ctx, c.TenantID, c.EntityID, now)
			if err != nil {
				return err
			}
			if !ok {
				// Otro flujo lo sacó de active (cuarentena, retiro): no se toca.
				return nil
			}
			transitioned = true
			if err := repos.Movements.Create(ctx, &entity.BatchMovement{
				ID:           uuid.New().String(),
				TenantID:     c.TenantID,
				StockBatchID: c.EntityID,
				Type:         entity.BatchMovementAdjustment,
				Quantity:     decimal.Zero,
				Note:         fmt.Sprintf("Vencimiento automático: fecha límite %s superada", day(c.Due)),
				ReferenceID:  rule.ID,
				CreatedAt:    now,
				CreatedBy:    systemUser,
			}); err != nil {
				return err
			}
		}
		n := &entity.Notification{
			ID:         uuid.New().String(),
			TenantID:   c.TenantID,
			EntityType: rule.EntityType,
			EntityID:   c.EntityID,
			RuleID:     rule.ID,
			Severity:   b.Severity,
			Title:      b.Title,
			Message:    b.Message,
			DedupeKey:  entity.DedupeKey(rule.EntityType, c.EntityID, rule.ID, b.Tier),
			CreatedAt:  now,
		}
		ok, err := repos.Notifications.Insert(ctx, n)
		if err != nil {
			return err
		}
		if ok {
			inserted = n
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return inserted, transitioned, nil
}

func (s *Scanner) deliver(ctx context.Context, n *entity.Notification) bool {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("notification_id", n.ID).Str("dedupe_key", n.DedupeKey).Msg("entrega de notificación fallida, se reintentará")
		return false
	}
	if err := s.notifications.MarkDelivered(ctx, n.ID, s.clock.Now()); err != nil {
		s.log.Warn().Err(err).Str("notification_id", n.ID).Msg("marcar notificación entregada")
		return false
	}
	return true
}

// redeliver reenvía notificaciones pendientes de corridas anteriores.
func (s *Scanner) redeliver(ctx context.Context, skip map[string]struct{}) (int, int) {
	if s.notifier == nil {
		return 0, 0
	}
	pending, err := s.notifications.ListUndelivered(ctx, s.cfg.RedeliveryBatch)
	if err != nil {
		s.log.Error().Err(err).Msg("listar notificaciones pendientes")
		return 0, 1
	}
	delivered, failed := 0, 0
	for _, n := range pending {
		if _, ok := skip[n.ID]; ok {
			continue
		}
		if s.deliver(ctx, n) {
			delivered++
		} else {
			failed++
		}
	}
	return delivered, failed
}

// ToScanSummaryResponse adapta el resumen al DTO HTTP/CLI.
func ToScanSummaryResponse(s *ScanSummary) *dto.ScanSummaryResponse {
	res := &dto.ScanSummaryResponse{
		AsOf:           s.AsOf.Format(time.DateOnly),
		Rules:          make(map[string]dto.RuleSummaryResponse, len(s.Rules)),
		Delivered:      s.Delivered,
		DeliveryErrors: s.DeliveryErrors,
	}
	for id, r := range s.Rules {
		res.Rules[id] = dto.RuleSummaryResponse{
			Evaluated:    r.Evaluated,
			Transitioned: r.Transitioned,
			Notified:     r.Notified,
			Errors:       r.Errors,
		}
	}
	return res
}
