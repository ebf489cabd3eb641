package genealogy

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del recorrido de trazabilidad.
const (
	DirectionForward  = "forward"  // proveedor -> cliente
	DirectionBackward = "backward" // cliente -> proveedor
)

// Tipos de nodo del grafo de linaje.
const (
	NodeSupplier             = "supplier"
	NodeRawMaterialBatch     = "raw_material_batch"
	NodeProductionBatch      = "production_batch"
	NodeFinishedProductBatch = "finished_product_batch"
	NodeByproductBatch       = "byproduct_batch"
	NodeStockBatch           = "stock_batch" // lote de ajuste manual, sin origen
	NodeCustomer             = "customer"
)

// Relaciones entre nodos. Los enlaces siempre apuntan aguas arriba -> aguas abajo.
const (
	RelationSupplied   = "Supplied"
	RelationInput      = "Input"
	RelationOutput     = "Output"
	RelationDispatched = "Dispatched"
)

// Prefijos de clave por tipo de entidad persistida (la clave es tipo:pk).
const (
	KeyStockBatch      = "stock_batch"
	KeyProductionBatch = "production_batch"
	KeySupplier        = "supplier"
	KeyCustomer        = "customer"
)

// NodeKey deriva el id de nodo a partir de (tipo de entidad, llave primaria).
func NodeKey(entityType, id string) string {
	return entityType + ":" + id
}

// IsValidDirection valida la dirección solicitada.
func IsValidDirection(d string) bool {
	return d == DirectionForward || d == DirectionBackward
}

// Node nodo del grafo de trazabilidad.
type Node struct {
	ID        string
	Type      string
	EntityID  string
	Label     string
	Quantity  *decimal.Decimal
	Unit      string
	Date      *time.Time
	Allergens []string
	Status    string
}

// Link enlace dirigido entre dos nodos.
type Link struct {
	Source   string
	Target   string
	Relation string
	Quantity *decimal.Decimal
	Unit     string
}

// Graph grafo de linaje enraizado en un único lote semilla.
type Graph struct {
	SeedID    string
	Direction string
	Nodes     []*Node
	Links     []*Link

	index map[string]*Node
}

// NewGraph crea un grafo vacío para la semilla indicada.
func NewGraph(seedID, direction string) *Graph {
	return &Graph{SeedID: seedID, Direction: direction, index: make(map[string]*Node)}
}

// AddNode agrega el nodo si no existe; devuelve el nodo canónico y si fue agregado.
func (g *Graph) AddNode(n *Node) (*Node, bool) {
	if g.index == nil {
		g.index = make(map[string]*Node)
		for _, existing := range g.Nodes {
			g.index[existing.ID] = existing
		}
	}
	if existing, ok := g.index[n.ID]; ok {
		return existing, false
	}
	g.index[n.ID] = n
	g.Nodes = append(g.Nodes, n)
	return n, true
}

// Node devuelve el nodo por id o nil.
func (g *Graph) Node(id string) *Node {
	if g.index == nil {
		for _, n := range g.Nodes {
			if n.ID == id {
				return n
			}
		}
		return nil
	}
	return g.index[id]
}

// AddLink agrega un enlace.
func (g *Graph) AddLink(l *Link) {
	g.Links = append(g.Links, l)
}

// OutgoingLinks devuelve los enlaces que salen del nodo con la relación dada.
func (g *Graph) OutgoingLinks(nodeID, relation string) []*Link {
	var out []*Link
	for _, l := range g.Links {
		if l.Source == nodeID && l.Relation == relation {
			out = append(out, l)
		}
	}
	return out
}

// IncomingLinks devuelve los enlaces que llegan al nodo con la relación dada.
func (g *Graph) IncomingLinks(nodeID, relation string) []*Link {
	var out []*Link
	for _, l := range g.Links {
		if l.Target == nodeID && l.Relation == relation {
			out = append(out, l)
		}
	}
	return out
}
