package genealogy_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/genealogy"
)

func qty(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// rawToFinished arma RM(100 kg) -> PB -> FP(75 kg).
func rawToFinished() *genealogy.Graph {
	g := genealogy.NewGraph("stock_batch:rm", genealogy.DirectionForward)
	g.AddNode(&genealogy.Node{ID: "stock_batch:rm", Type: genealogy.NodeRawMaterialBatch, Quantity: qty("100"), Unit: "kg"})
	g.AddNode(&genealogy.Node{ID: "production_batch:pb", Type: genealogy.NodeProductionBatch, Unit: "kg"})
	g.AddNode(&genealogy.Node{ID: "stock_batch:fp", Type: genealogy.NodeFinishedProductBatch, Quantity: qty("75"), Unit: "kg"})
	g.AddLink(&genealogy.Link{Source: "stock_batch:rm", Target: "production_batch:pb", Relation: genealogy.RelationInput, Quantity: qty("80"), Unit: "kg"})
	g.AddLink(&genealogy.Link{Source: "production_batch:pb", Target: "stock_batch:fp", Relation: genealogy.RelationOutput, Quantity: qty("75"), Unit: "kg"})
	return g
}

func TestReconcile_SinDespachos_UsaCantidadDelLote(t *testing.T) {
	mb := genealogy.Reconcile(rawToFinished(), "kg")

	assert.True(t, mb.TotalInput.Equal(decimal.NewFromInt(100)))
	assert.True(t, mb.TotalOutput.Equal(decimal.NewFromInt(75)))
	assert.True(t, mb.Variance.Equal(decimal.NewFromInt(25)))
	assert.True(t, mb.VariancePercent.Equal(decimal.NewFromInt(25)))
}

func TestReconcile_TresClientes_SumaDespachosSinDobleConteo(t *testing.T) {
	g := rawToFinished()
	for _, c := range []string{"c1", "c2", "c3"} {
		g.AddNode(&genealogy.Node{ID: "customer:" + c, Type: genealogy.NodeCustomer})
		g.AddLink(&genealogy.Link{Source: "stock_batch:fp", Target: "customer:" + c, Relation: genealogy.RelationDispatched, Quantity: qty("20"), Unit: "kg"})
	}

	mb := genealogy.Reconcile(g, "kg")
	assert.True(t, mb.TotalOutput.Equal(decimal.NewFromInt(60)), "got %s", mb.TotalOutput)
	assert.True(t, mb.Variance.Equal(decimal.NewFromInt(40)))
}

func TestReconcile_OmiteOtrasUnidades(t *testing.T) {
	g := rawToFinished()
	g.AddNode(&genealogy.Node{ID: "stock_batch:fp2", Type: genealogy.NodeFinishedProductBatch, Quantity: qty("30"), Unit: "units"})

	mb := genealogy.Reconcile(g, "kg")
	assert.True(t, mb.TotalOutput.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, 1, mb.SkippedNodes)
}

func TestReconcile_SubproductoNoCuenta(t *testing.T) {
	g := rawToFinished()
	g.AddNode(&genealogy.Node{ID: "stock_batch:bp", Type: genealogy.NodeByproductBatch, Quantity: qty("5"), Unit: "kg"})

	mb := genealogy.Reconcile(g, "kg")
	assert.True(t, mb.TotalOutput.Equal(decimal.NewFromInt(75)))
}

func TestReconcile_MateriaPrimaDespachadaDirecto(t *testing.T) {
	g := rawToFinished()
	g.AddNode(&genealogy.Node{ID: "customer:c1", Type: genealogy.NodeCustomer})
	g.AddNode(&genealogy.Node{ID: "customer:c2", Type: genealogy.NodeCustomer})
	g.AddLink(&genealogy.Link{Source: "stock_batch:fp", Target: "customer:c1", Relation: genealogy.RelationDispatched, Quantity: qty("75"), Unit: "kg"})
	g.AddLink(&genealogy.Link{Source: "stock_batch:rm", Target: "customer:c2", Relation: genealogy.RelationDispatched, Quantity: qty("20"), Unit: "kg"})

	mb := genealogy.Reconcile(g, "kg")
	assert.True(t, mb.TotalOutput.Equal(decimal.NewFromInt(95)), "got %s", mb.TotalOutput)
	assert.True(t, mb.Variance.Equal(decimal.NewFromInt(5)))
	assert.True(t, mb.VariancePercent.Equal(decimal.NewFromInt(5)))
}

func TestReconcile_SubproductoDespachado_Cuenta(t *testing.T) {
	g := rawToFinished()
	g.AddNode(&genealogy.Node{ID: "stock_batch:bp", Type: genealogy.NodeByproductBatch, Quantity: qty("5"), Unit: "kg"})
	g.AddNode(&genealogy.Node{ID: "customer:c1", Type: genealogy.NodeCustomer})
	g.AddLink(&genealogy.Link{Source: "stock_batch:bp", Target: "customer:c1", Relation: genealogy.RelationDispatched, Quantity: qty("4"), Unit: "kg"})

	mb := genealogy.Reconcile(g, "kg")
	// 75 del terminado sin despachar + 4 del subproducto despachado
	assert.True(t, mb.TotalOutput.Equal(decimal.NewFromInt(79)), "got %s", mb.TotalOutput)
}

func TestReconcile_TerminadoParcialmenteDespachado_SoloCuentaLoDespachado(t *testing.T) {
	g := rawToFinished()
	g.AddNode(&genealogy.Node{ID: "customer:c1", Type: genealogy.NodeCustomer})
	g.AddLink(&genealogy.Link{Source: "stock_batch:fp", Target: "customer:c1", Relation: genealogy.RelationDispatched, Quantity: qty("30"), Unit: "kg"})

	mb := genealogy.Reconcile(g, "kg")
	assert.True(t, mb.TotalOutput.Equal(decimal.NewFromInt(30)))
}

func TestReconcile_DespachoEnOtraUnidad_SeOmite(t *testing.T) {
	g := rawToFinished()
	g.AddNode(&genealogy.Node{ID: "customer:c1", Type: genealogy.NodeCustomer})
	g.AddLink(&genealogy.Link{Source: "stock_batch:fp", Target: "customer:c1", Relation: genealogy.RelationDispatched, Quantity: qty("10"), Unit: "units"})

	mb := genealogy.Reconcile(g, "kg")
	assert.True(t, mb.TotalOutput.IsZero())
	assert.Equal(t, 1, mb.SkippedNodes)
}

func TestReconcile_EntradaCero(t *testing.T) {
	g := genealogy.NewGraph("stock_batch:rm", genealogy.DirectionForward)
	g.AddNode(&genealogy.Node{ID: "stock_batch:rm", Type: genealogy.NodeRawMaterialBatch, Quantity: qty("0"), Unit: "kg"})

	mb := genealogy.Reconcile(g, "kg")
	assert.True(t, mb.VariancePercent.IsZero())
}

func TestGraph_AddNode_Deduplica(t *testing.T) {
	g := genealogy.NewGraph("a", genealogy.DirectionForward)
	first, added := g.AddNode(&genealogy.Node{ID: "customer:c1", Label: "primero"})
	assert.True(t, added)
	again, added := g.AddNode(&genealogy.Node{ID: "customer:c1", Label: "segundo"})
	assert.False(t, added)
	assert.Same(t, first, again)
	assert.Len(t, g.Nodes, 1)
}
