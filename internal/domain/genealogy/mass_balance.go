package genealogy

import "github.com/shopspring/decimal"

// MassBalance conciliación de cantidad de entrada contra salida trazable.
// La varianza es informativa: se espera distinta de cero por mermas y desperdicio.
type MassBalance struct {
	Unit            string
	TotalInput      decimal.Decimal
	TotalOutput     decimal.Decimal
	Variance        decimal.Decimal
	VariancePercent decimal.Decimal
	SkippedNodes    int // lotes o despachos en otra unidad
}

var hundred = decimal.NewFromInt(100)

// Reconcile calcula el balance de masa sobre un grafo ya construido.
//
//	TotalInput  = cantidad recibida del lote semilla
//	TotalOutput = cantidades despachadas que llegan a cada cliente alcanzable (desde
//	              cualquier lote: terminado, subproducto o materia prima vendida directo)
//	              + la propia cantidad de cada producto terminado sin despachos
//	Variance    = TotalInput - TotalOutput
//	Variance%   = Variance / TotalInput * 100 (0 si TotalInput = 0)
//
// Un subproducto sin despachar no suma: queda como existencia, igual que la materia
// prima sin consumir. El desperdicio no genera nodos, por eso nunca suma a TotalOutput.
func Reconcile(g *Graph, unit string) MassBalance {
	mb := MassBalance{Unit: unit, TotalInput: decimal.Zero, TotalOutput: decimal.Zero}

	if seed := g.Node(g.SeedID); seed != nil && seed.Quantity != nil && seed.Unit == unit {
		mb.TotalInput = *seed.Quantity
	}

	for _, n := range g.Nodes {
		switch n.Type {
		case NodeCustomer:
			for _, l := range g.IncomingLinks(n.ID, RelationDispatched) {
				if l.Quantity == nil {
					continue
				}
				if l.Unit != "" && l.Unit != unit {
					mb.SkippedNodes++
					continue
				}
				mb.TotalOutput = mb.TotalOutput.Add(*l.Quantity)
			}
		case NodeFinishedProductBatch:
			if len(g.OutgoingLinks(n.ID, RelationDispatched)) > 0 {
				continue
			}
			if n.Unit != unit {
				mb.SkippedNodes++
				continue
			}
			if n.Quantity != nil {
				mb.TotalOutput = mb.TotalOutput.Add(*n.Quantity)
			}
		}
	}

	mb.Variance = mb.TotalInput.Sub(mb.TotalOutput)
	mb.VariancePercent = decimal.Zero
	if !mb.TotalInput.IsZero() {
		mb.VariancePercent = mb.Variance.Div(mb.TotalInput).Mul(hundred).Round(2)
	}
	return mb
}
