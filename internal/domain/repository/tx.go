package repository

// TxRepos agrupa los repositorios atados a una misma transacción.
type TxRepos struct {
	Batches        StockBatchRepository
	Productions    ProductionBatchRepository
	Movements      BatchMovementRepository
	Sequences      SequenceRepository
	Specifications ProductSpecificationRepository
	Notifications  NotificationRepository
}
