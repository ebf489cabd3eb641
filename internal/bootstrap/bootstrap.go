// Package bootstrap arma el grafo de dependencias compartido por el API y el CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/application/genealogy"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/lock"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/notify"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

// Container casos de uso listos para exponer.
type Container struct {
	RecordOutput *genealogy.RecordOutputUseCase
	Trace        *genealogy.TraceUseCase
	BatchCodes   *genealogy.BatchCodeUseCase
	Scanner      *lifecycle.Scanner
	Scheduler    *lifecycle.Scheduler

	closers []func()
}

// Close libera conexiones en orden inverso de apertura.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// stores repositorios no transaccionales más el runner de transacciones.
type stores struct {
	batches       repository.StockBatchRepository
	productions   repository.ProductionBatchRepository
	dispatches    repository.DispatchRepository
	parties       repository.PartyRepository
	sequences     repository.SequenceRepository
	lifecycle     repository.LifecycleRepository
	notifications repository.NotificationRepository
	genealogyTx   genealogy.TxRunner
	lifecycleTx   lifecycle.TxRunner
}

// Build conecta almacenamiento, candado y notificador según la configuración.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{}

	st, err := c.openStores(ctx, cfg, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	locker, err := c.openLocker(ctx, cfg, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	notifier, err := c.openNotifier(ctx, cfg, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	loc, err := cfg.Lifecycle.Location()
	if err != nil {
		c.Close()
		return nil, err
	}

	clock := ports.SystemClock{}
	generator := genealogy.NewCodeGenerator(cfg.Genealogy.CodeMaxRetries)

	c.RecordOutput = genealogy.NewRecordOutputUseCase(st.genealogyTx, generator, genealogy.OutputConfig{
		FinishedTemplate:  cfg.Genealogy.FinishedTemplate,
		ByproductTemplate: cfg.Genealogy.ByproductTemplate,
	}, clock)
	c.Trace = genealogy.NewTraceUseCase(st.batches, st.productions, st.dispatches, st.parties, log.Component("trace"))
	c.BatchCodes = genealogy.NewBatchCodeUseCase(st.sequences, st.batches, generator, clock)

	c.Scanner = lifecycle.NewScanner(st.lifecycleTx, st.lifecycle, st.notifications, notifier, locker, clock, lifecycle.Config{
		Concurrency:        cfg.Lifecycle.Concurrency,
		RecallBusinessDays: cfg.Lifecycle.RecallBusinessDays(),
		LockTTL:            cfg.Lifecycle.LockTTL,
		RedeliveryBatch:    cfg.Lifecycle.RedeliveryBatch,
		Location:           loc,
	}, log.Component("lifecycle"))
	c.Scheduler = lifecycle.NewScheduler(c.Scanner, cfg.Lifecycle.Interval, log.Component("scheduler"))

	return c, nil
}

func (c *Container) openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.App.StoreDriver == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &stores{
			batches:       s.Batches(),
			productions:   s.Productions(),
			dispatches:    s.Dispatches(),
			parties:       s.Parties(),
			sequences:     s.Sequences(),
			lifecycle:     s.Lifecycle(),
			notifications: s.Notifications(),
			genealogyTx:   s.TxRunner(),
			lifecycleTx:   s.TxRunner(),
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	c.closers = append(c.closers, pool.Close)
	txRunner := postgres.NewTxRunner(pool)
	return &stores{
		batches:       postgres.NewStockBatchRepository(pool),
		productions:   postgres.NewProductionBatchRepository(pool),
		dispatches:    postgres.NewDispatchRepository(pool),
		parties:       postgres.NewPartyRepository(pool),
		sequences:     postgres.NewSequenceRepository(pool),
		lifecycle:     postgres.NewLifecycleRepository(pool),
		notifications: postgres.NewNotificationRepository(pool),
		genealogyTx:   txRunner,
		lifecycleTx:   txRunner,
	}, nil
}

func (c *Container) openLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.RunLocker, error) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("REDIS_ADDR vacío: candado de escaneo local al proceso")
		return lock.NewLocalLocker(), nil
	}
	rdb, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return lock.NewRedisLocker(rdb, cfg.App.Name), nil
}

func (c *Container) openNotifier(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.Notifier, error) {
	if cfg.PubSub.ProjectID == "" {
		return notify.NewLogNotifier(log.Component("notifier")), nil
	}
	n, err := notify.NewPubSubNotifier(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicID, cfg.PubSub.CredentialsFile)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() {
		if err := n.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar cliente pubsub")
		}
	})
	return n, nil
}

// Logger construye el logger de la aplicación desde la configuración.
func Logger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})
}
