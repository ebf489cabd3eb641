package memory

import "github.com/jhoicas/Trazabilidad-api/internal/domain/entity"

// Carga de datos que en producción llegan por flujos externos (recepciones, recetas,
// despachos, calidad). Usado por pruebas y por el modo de desarrollo.

func (s *Store) AddStockBatch(b *entity.StockBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.batches[b.ID] = copyBatch(b)
}

func (s *Store) AddProductionBatch(pb *entity.ProductionBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *pb
	s.data.productions[pb.ID] = &c
}

func (s *Store) AddInput(in *entity.ProductionBatchInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *in
	s.data.inputs = append(s.data.inputs, &c)
}

func (s *Store) AddDispatch(d *entity.BatchDispatchRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *d
	s.data.dispatches = append(s.data.dispatches, &c)
}

// AddSupplier registra el proveedor y las líneas de entrega que le pertenecen.
func (s *Store) AddSupplier(sup *entity.Supplier, deliveryLineIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *sup
	s.data.suppliers[sup.ID] = &c
	for _, id := range deliveryLineIDs {
		s.data.deliveryLines[id] = sup.ID
	}
}

func (s *Store) AddCustomer(c *entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.data.customers[c.ID] = &cp
}

func (s *Store) AddSpecification(spec *entity.ProductSpecification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *spec
	s.data.specs = append(s.data.specs, &c)
}

func (s *Store) AddCalibration(c *entity.Calibration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.data.calibrations = append(s.data.calibrations, &cp)
}

func (s *Store) AddCorrectiveAction(a *entity.CorrectiveAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *a
	s.data.actions = append(s.data.actions, &c)
}

func (s *Store) AddRecallNotification(n *entity.RecallNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *n
	s.data.recalls = append(s.data.recalls, &c)
}

func (s *Store) AddSupplierDocument(d *entity.SupplierDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *d
	s.data.documents = append(s.data.documents, &c)
}

// Lectura completa para verificaciones.

func (s *Store) AllNotifications() []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Notification, 0, len(s.data.notifications))
	for _, n := range s.data.notifications {
		out = append(out, *n)
	}
	return out
}

func (s *Store) AllMovements() []entity.BatchMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.BatchMovement, 0, len(s.data.movements))
	for _, m := range s.data.movements {
		out = append(out, *m)
	}
	return out
}

func (s *Store) AllOutputs() []entity.ProductionBatchOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ProductionBatchOutput, 0, len(s.data.outputs))
	for _, o := range s.data.outputs {
		out = append(out, *o)
	}
	return out
}

func (s *Store) CountStockBatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.batches)
}

// AddOutput registra una salida ya existente (historia importada).
func (s *Store) AddOutput(o *entity.ProductionBatchOutput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *o
	s.data.outputs = append(s.data.outputs, &c)
}

// StockBatch devuelve una copia del lote o nil.
func (s *Store) StockBatch(id string) *entity.StockBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.batches[id]
	if !ok {
		return nil
	}
	return copyBatch(b)
}
