// Package memory implementa los puertos de repositorio en memoria con transacciones
// (copia de trabajo + confirmación). Se usa en pruebas y con STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

type state struct {
	batches       map[string]*entity.StockBatch
	productions   map[string]*entity.ProductionBatch
	inputs        []*entity.ProductionBatchInput
	outputs       []*entity.ProductionBatchOutput
	movements     []*entity.BatchMovement
	dispatches    []*entity.BatchDispatchRecord
	suppliers     map[string]*entity.Supplier
	deliveryLines map[string]string // línea de entrega -> proveedor
	customers     map[string]*entity.Customer
	sequences     map[string]int64
	specs         []*entity.ProductSpecification
	calibrations  []*entity.Calibration
	actions       []*entity.CorrectiveAction
	recalls       []*entity.RecallNotification
	documents     []*entity.SupplierDocument
	notifications []*entity.Notification
}

func newState() *state {
	return &state{
		batches:       make(map[string]*entity.StockBatch),
		productions:   make(map[string]*entity.ProductionBatch),
		suppliers:     make(map[string]*entity.Supplier),
		deliveryLines: make(map[string]string),
		customers:     make(map[string]*entity.Customer),
		sequences:     make(map[string]int64),
	}
}

// clone copia lo mutable por las transacciones; los registros append-only se copian por slice.
func (s *state) clone() *state {
	c := *s
	c.batches = make(map[string]*entity.StockBatch, len(s.batches))
	for k, v := range s.batches {
		b := *v
		c.batches[k] = &b
	}
	c.sequences = make(map[string]int64, len(s.sequences))
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	c.outputs = append([]*entity.ProductionBatchOutput(nil), s.outputs...)
	c.movements = append([]*entity.BatchMovement(nil), s.movements...)
	c.notifications = make([]*entity.Notification, len(s.notifications))
	for i, n := range s.notifications {
		cp := *n
		c.notifications[i] = &cp
	}
	return &c
}

// Store almacenamiento en memoria.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// handle resuelve sobre qué estado opera un repositorio: el de la transacción en curso
// (el candado ya está tomado) o el del store con candado por llamada.
type handle struct {
	s  *Store
	tx *state
}

func (h handle) read(fn func(st *state)) {
	if h.tx != nil {
		fn(h.tx)
		return
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	fn(h.s.data)
}

func (h handle) write(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return fn(h.s.data)
}

// Repositorios fuera de transacción.

func (s *Store) Batches() *BatchRepo { return &BatchRepo{handle{s: s}} }
func (s *Store) Productions() *ProductionRepo { return &ProductionRepo{handle{s: s}} }
func (s *Store) Movements() *MovementRepo { return &MovementRepo{handle{s: s}} }
func (s *Store) Dispatches() *DispatchRepo { return &DispatchRepo{handle{s: s}} }
func (s *Store) Parties() *PartyRepo { return &PartyRepo{handle{s: s}} }
func (s *Store) Sequences() *SequenceRepo { return &SequenceRepo{handle{s: s}} }
func (s *Store) Specifications() *SpecificationRepo { return &SpecificationRepo{handle{s: s}} }
func (s *Store) Lifecycle() *LifecycleRepo { return &LifecycleRepo{handle{s: s}} }
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{handle{s: s}} }
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// TxRunner ejecuta fn sobre una copia del estado y la confirma solo si fn no falla.
// Las transacciones se serializan.
type TxRunner struct {
	s *Store
}

// Run implementa genealogy.TxRunner y lifecycle.TxRunner.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	work := r.s.data.clone()
	h := handle{s: r.s, tx: work}
	repos := repository.TxRepos{
		Batches:        &BatchRepo{h},
		Productions:    &ProductionRepo{h},
		Movements:      &MovementRepo{h},
		Sequences:      &SequenceRepo{h},
		Specifications: &SpecificationRepo{h},
		Notifications:  &NotificationRepo{h},
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.data = work
	return nil
}
