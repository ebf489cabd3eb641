package genealogy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	dgen "github.com/jhoicas/Trazabilidad-api/internal/domain/genealogy"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// TraceUseCase construye grafos de linaje hacia adelante o hacia atrás desde un lote.
// Es de solo lectura; trazas concurrentes no requieren coordinación.
type TraceUseCase struct {
	batches     repository.StockBatchRepository
	productions repository.ProductionBatchRepository
	dispatches  repository.DispatchRepository
	parties     repository.PartyRepository
	log         zerolog.Logger
}

// NewTraceUseCase construye el caso de uso.
func NewTraceUseCase(
	batches repository.StockBatchRepository,
	productions repository.ProductionBatchRepository,
	dispatches repository.DispatchRepository,
	parties repository.PartyRepository,
	log zerolog.Logger,
) *TraceUseCase {
	return &TraceUseCase{
		batches:     batches,
		productions: productions,
		dispatches:  dispatches,
		parties:     parties,
		log:         log,
	}
}

// TraceBatch recorre la genealogía desde el lote semilla. Las trazas hacia adelante incluyen
// el balance de masa en la unidad del lote semilla.
func (uc *TraceUseCase) TraceBatch(ctx context.Context, tenantID, batchID, direction string) (*dto.TraceResponse, error) {
	if direction == "" {
		direction = dgen.DirectionForward
	}
	if !dgen.IsValidDirection(direction) {
		return nil, &domain.ValidationError{Fields: map[string]string{"direction": "oneof"}}
	}
	seed, err := uc.batches.GetByID(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}
	if seed == nil {
		return nil, domain.ErrEntityNotFound
	}

	w := uc.newWalk(ctx, tenantID, dgen.NodeKey(dgen.KeyStockBatch, seed.ID), direction)
	if _, err := w.addBatchNode(seed, ""); err != nil {
		return nil, err
	}
	if err := w.run(seed.ID); err != nil {
		return nil, err
	}

	var mb *dgen.MassBalance
	if direction == dgen.DirectionForward {
		r := dgen.Reconcile(w.g, seed.Unit)
		mb = &r
	}
	return toTraceResponse(w.g, mb), nil
}

// TraceDispatch traza hacia atrás desde un despacho: cliente -> lote despachado -> ... -> proveedor.
func (uc *TraceUseCase) TraceDispatch(ctx context.Context, tenantID, dispatchID string) (*dto.TraceResponse, error) {
	d, err := uc.dispatches.GetByID(ctx, tenantID, dispatchID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrEntityNotFound
	}
	batch, err := uc.batches.GetByID(ctx, tenantID, d.StockBatchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrEntityNotFound
	}

	w := uc.newWalk(ctx, tenantID, dgen.NodeKey(dgen.KeyStockBatch, batch.ID), dgen.DirectionBackward)
	batchNode, err := w.addBatchNode(batch, "")
	if err != nil {
		return nil, err
	}
	if err := w.addDispatch(batchNode, d); err != nil {
		return nil, err
	}
	if err := w.run(batch.ID); err != nil {
		return nil, err
	}
	return toTraceResponse(w.g, nil), nil
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	done
)

// walkFrame entrada de la pila explícita. exit marca la salida del nodo (post-orden).
type walkFrame struct {
	nodeID   string
	kind     string // dgen.KeyStockBatch | dgen.KeyProductionBatch
	entityID string
	exit     bool
}

// walk recorrido en profundidad iterativo con estados por nodo: volver a un nodo que
// sigue en el camino actual es un ciclo.
type walk struct {
	uc       *TraceUseCase
	ctx      context.Context
	tenantID string
	g        *dgen.Graph
	state    map[string]visitState
	stack    []walkFrame
}

func (uc *TraceUseCase) newWalk(ctx context.Context, tenantID, seedID, direction string) *walk {
	return &walk{
		uc:       uc,
		ctx:      ctx,
		tenantID: tenantID,
		g:        dgen.NewGraph(seedID, direction),
		state:    make(map[string]visitState),
	}
}

func (w *walk) run(seedBatchID string) error {
	w.stack = append(w.stack, walkFrame{
		nodeID:   dgen.NodeKey(dgen.KeyStockBatch, seedBatchID),
		kind:     dgen.KeyStockBatch,
		entityID: seedBatchID,
	})
	for len(w.stack) > 0 {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		f := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]

		if f.exit {
			w.state[f.nodeID] = done
			continue
		}
		switch w.state[f.nodeID] {
		case done:
			continue
		case visiting:
			return w.cycle(f.nodeID)
		}
		w.state[f.nodeID] = visiting
		w.stack = append(w.stack, walkFrame{nodeID: f.nodeID, exit: true})

		children, err := w.expand(f)
		if err != nil {
			return err
		}
		// Apilar en orden inverso para visitar los hijos en el orden en que se descubrieron.
		for i := len(children) - 1; i >= 0; i-- {
			c := children[i]
			switch w.state[c.nodeID] {
			case visiting:
				return w.cycle(c.nodeID)
			case done:
				continue
			}
			w.stack = append(w.stack, c)
		}
	}
	return nil
}

func (w *walk) cycle(nodeID string) error {
	path := make([]string, 0, len(w.state))
	for id, s := range w.state {
		if s == visiting {
			path = append(path, id)
		}
	}
	w.uc.log.Error().
		Str("tenant_id", w.tenantID).
		Str("seed", w.g.SeedID).
		Str("direction", w.g.Direction).
		Str("node", nodeID).
		Strs("visiting", path).
		Msg("ciclo detectado en la genealogía")
	return fmt.Errorf("%w: nodo %s", domain.ErrCycleDetected, nodeID)
}

func (w *walk) expand(f walkFrame) ([]walkFrame, error) {
	switch {
	case f.kind == dgen.KeyStockBatch && w.g.Direction == dgen.DirectionForward:
		return w.forwardFromBatch(f)
	case f.kind == dgen.KeyStockBatch:
		return w.backwardFromBatch(f)
	case w.g.Direction == dgen.DirectionForward:
		return w.forwardFromProduction(f)
	default:
		return w.backwardFromProduction(f)
	}
}

// forwardFromBatch: proveedor (si es materia prima), producciones que lo consumieron y despachos.
func (w *walk) forwardFromBatch(f walkFrame) ([]walkFrame, error) {
	b, err := w.uc.batches.GetByID(w.ctx, w.tenantID, f.entityID)
	if err != nil || b == nil {
		return nil, err
	}
	if err := w.addSupplier(f.nodeID, b); err != nil {
		return nil, err
	}

	inputs, err := w.uc.productions.ListInputsByStockBatch(w.ctx, w.tenantID, b.ID)
	if err != nil {
		return nil, fmt.Errorf("entradas del lote %s: %w", b.ID, err)
	}
	var children []walkFrame
	for _, in := range inputs {
		pb, err := w.uc.productions.GetByID(w.ctx, w.tenantID, in.ProductionBatchID)
		if err != nil {
			return nil, err
		}
		if pb == nil {
			w.missing(dgen.KeyProductionBatch, in.ProductionBatchID)
			continue
		}
		pbNode, _ := w.g.AddNode(productionNode(pb))
		qty := in.ConsumedQuantity()
		w.g.AddLink(&dgen.Link{Source: f.nodeID, Target: pbNode.ID, Relation: dgen.RelationInput, Quantity: &qty, Unit: b.Unit})
		children = append(children, walkFrame{nodeID: pbNode.ID, kind: dgen.KeyProductionBatch, entityID: pb.ID})
	}

	node := w.g.Node(f.nodeID)
	dispatches, err := w.uc.dispatches.ListByStockBatch(w.ctx, w.tenantID, b.ID)
	if err != nil {
		return nil, fmt.Errorf("despachos del lote %s: %w", b.ID, err)
	}
	for _, d := range dispatches {
		if err := w.addDispatch(node, d); err != nil {
			return nil, err
		}
	}
	return children, nil
}

// forwardFromProduction: salidas no desperdicio -> lotes generados.
func (w *walk) forwardFromProduction(f walkFrame) ([]walkFrame, error) {
	outputs, err := w.uc.productions.ListOutputs(w.ctx, w.tenantID, f.entityID)
	if err != nil {
		return nil, fmt.Errorf("salidas del lote de producción %s: %w", f.entityID, err)
	}
	var children []walkFrame
	for _, o := range outputs {
		if o.IsWaste() || o.StockBatchID == nil {
			continue
		}
		b, err := w.uc.batches.GetByID(w.ctx, w.tenantID, *o.StockBatchID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			w.missing(dgen.KeyStockBatch, *o.StockBatchID)
			continue
		}
		bNode, err := w.addBatchNode(b, o.OutputType)
		if err != nil {
			return nil, err
		}
		qty := o.Quantity
		w.g.AddLink(&dgen.Link{Source: f.nodeID, Target: bNode.ID, Relation: dgen.RelationOutput, Quantity: &qty, Unit: o.Unit})
		children = append(children, walkFrame{nodeID: bNode.ID, kind: dgen.KeyStockBatch, entityID: b.ID})
	}
	return children, nil
}

// backwardFromBatch: lote de producción que lo originó, o proveedor si es materia prima.
func (w *walk) backwardFromBatch(f walkFrame) ([]walkFrame, error) {
	b, err := w.uc.batches.GetByID(w.ctx, w.tenantID, f.entityID)
	if err != nil || b == nil {
		return nil, err
	}
	if err := w.addSupplier(f.nodeID, b); err != nil {
		return nil, err
	}
	if !b.IsProductionOrigin() {
		return nil, nil
	}
	pb, err := w.uc.productions.GetByID(w.ctx, w.tenantID, *b.OriginProductionBatchID)
	if err != nil {
		return nil, err
	}
	if pb == nil {
		w.missing(dgen.KeyProductionBatch, *b.OriginProductionBatchID)
		return nil, nil
	}
	pbNode, _ := w.g.AddNode(productionNode(pb))

	qty := b.QuantityReceived
	unit := b.Unit
	if o, err := w.uc.productions.GetOutputByStockBatch(w.ctx, w.tenantID, b.ID); err != nil {
		return nil, err
	} else if o != nil {
		qty, unit = o.Quantity, o.Unit
	}
	w.g.AddLink(&dgen.Link{Source: pbNode.ID, Target: f.nodeID, Relation: dgen.RelationOutput, Quantity: &qty, Unit: unit})
	return []walkFrame{{nodeID: pbNode.ID, kind: dgen.KeyProductionBatch, entityID: pb.ID}}, nil
}

// backwardFromProduction: lotes consumidos como entrada.
func (w *walk) backwardFromProduction(f walkFrame) ([]walkFrame, error) {
	inputs, err := w.uc.productions.ListInputs(w.ctx, w.tenantID, f.entityID)
	if err != nil {
		return nil, fmt.Errorf("entradas del lote de producción %s: %w", f.entityID, err)
	}
	var children []walkFrame
	for _, in := range inputs {
		b, err := w.uc.batches.GetByID(w.ctx, w.tenantID, in.StockBatchID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			w.missing(dgen.KeyStockBatch, in.StockBatchID)
			continue
		}
		bNode, err := w.addBatchNode(b, "")
		if err != nil {
			return nil, err
		}
		qty := in.ConsumedQuantity()
		w.g.AddLink(&dgen.Link{Source: bNode.ID, Target: f.nodeID, Relation: dgen.RelationInput, Quantity: &qty, Unit: b.Unit})
		children = append(children, walkFrame{nodeID: bNode.ID, kind: dgen.KeyStockBatch, entityID: b.ID})
	}
	return children, nil
}

// addBatchNode agrega el nodo del lote. outputType vacío obliga a resolver el tipo por su origen.
func (w *walk) addBatchNode(b *entity.StockBatch, outputType string) (*dgen.Node, error) {
	id := dgen.NodeKey(dgen.KeyStockBatch, b.ID)
	if n := w.g.Node(id); n != nil {
		return n, nil
	}
	nodeType := dgen.NodeStockBatch
	switch {
	case b.IsRawMaterial():
		nodeType = dgen.NodeRawMaterialBatch
	case b.IsProductionOrigin():
		if outputType == "" {
			o, err := w.uc.productions.GetOutputByStockBatch(w.ctx, w.tenantID, b.ID)
			if err != nil {
				return nil, err
			}
			if o != nil {
				outputType = o.OutputType
			}
		}
		nodeType = dgen.NodeFinishedProductBatch
		if outputType == entity.OutputTypeByproduct {
			nodeType = dgen.NodeByproductBatch
		}
	}
	qty := b.QuantityReceived
	n, _ := w.g.AddNode(&dgen.Node{
		ID:        id,
		Type:      nodeType,
		EntityID:  b.ID,
		Label:     b.BatchCode,
		Quantity:  &qty,
		Unit:      b.Unit,
		Date:      b.UseByDate,
		Allergens: b.Allergens,
		Status:    b.Status,
	})
	return n, nil
}

func (w *walk) addSupplier(batchNodeID string, b *entity.StockBatch) error {
	if !b.IsRawMaterial() {
		return nil
	}
	s, err := w.uc.parties.GetSupplierByDeliveryLine(w.ctx, w.tenantID, *b.OriginDeliveryLineID)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	sNode, _ := w.g.AddNode(&dgen.Node{
		ID:       dgen.NodeKey(dgen.KeySupplier, s.ID),
		Type:     dgen.NodeSupplier,
		EntityID: s.ID,
		Label:    s.Name,
	})
	qty := b.QuantityReceived
	w.g.AddLink(&dgen.Link{Source: sNode.ID, Target: batchNodeID, Relation: dgen.RelationSupplied, Quantity: &qty, Unit: b.Unit})
	return nil
}

// addDispatch agrega el cliente (deduplicado) y un enlace por despacho.
func (w *walk) addDispatch(batchNode *dgen.Node, d *entity.BatchDispatchRecord) error {
	label := d.CustomerID
	c, err := w.uc.parties.GetCustomer(w.ctx, w.tenantID, d.CustomerID)
	if err != nil {
		return err
	}
	if c != nil {
		label = c.Name
	}
	date := d.DispatchDate
	cNode, _ := w.g.AddNode(&dgen.Node{
		ID:       dgen.NodeKey(dgen.KeyCustomer, d.CustomerID),
		Type:     dgen.NodeCustomer,
		EntityID: d.CustomerID,
		Label:    label,
		Date:     &date,
	})
	qty := d.Quantity
	w.g.AddLink(&dgen.Link{Source: batchNode.ID, Target: cNode.ID, Relation: dgen.RelationDispatched, Quantity: &qty, Unit: d.Unit})
	return nil
}

func (w *walk) missing(kind, id string) {
	w.uc.log.Warn().
		Str("tenant_id", w.tenantID).
		Str("seed", w.g.SeedID).
		Str("kind", kind).
		Str("id", id).
		Msg("referencia de genealogía inexistente, se omite")
}

func productionNode(pb *entity.ProductionBatch) *dgen.Node {
	date := pb.ProductionDate
	return &dgen.Node{
		ID:       dgen.NodeKey(dgen.KeyProductionBatch, pb.ID),
		Type:     dgen.NodeProductionBatch,
		EntityID: pb.ID,
		Label:    pb.BatchCode,
		Unit:     pb.Unit,
		Date:     &date,
		Status:   pb.Status,
	}
}

func toTraceResponse(g *dgen.Graph, mb *dgen.MassBalance) *dto.TraceResponse {
	res := &dto.TraceResponse{
		SeedID:    g.SeedID,
		Direction: g.Direction,
		Nodes:     make([]dto.TraceNodeResponse, 0, len(g.Nodes)),
		Links:     make([]dto.TraceLinkResponse, 0, len(g.Links)),
	}
	for _, n := range g.Nodes {
		res.Nodes = append(res.Nodes, dto.TraceNodeResponse{
			ID:        n.ID,
			Type:      n.Type,
			Label:     n.Label,
			Quantity:  n.Quantity,
			Unit:      n.Unit,
			Date:      formatDate(n.Date),
			Allergens: n.Allergens,
			Status:    n.Status,
		})
	}
	for _, l := range g.Links {
		res.Links = append(res.Links, dto.TraceLinkResponse{
			Source:   l.Source,
			Target:   l.Target,
			Relation: l.Relation,
			Quantity: l.Quantity,
			Unit:     l.Unit,
		})
	}
	if mb != nil {
		res.MassBalance = &dto.MassBalanceResponse{
			Unit:            mb.Unit,
			TotalInput:      mb.TotalInput,
			TotalOutput:     mb.TotalOutput,
			Variance:        mb.Variance,
			VariancePercent: mb.VariancePercent,
			SkippedNodes:    mb.SkippedNodes,
		}
	}
	return res
}
