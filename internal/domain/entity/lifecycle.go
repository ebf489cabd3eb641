package entity

import "time"

// Tipos de entidad evaluados por el escáner de ciclo de vida.
const (
	EntityTypeStockBatch         = "stock_batch"
	EntityTypeCalibration        = "calibration"
	EntityTypeCorrectiveAction   = "corrective_action"
	EntityTypeRecallNotification = "recall_notification"
	EntityTypeSupplierDocument   = "supplier_document"
)

// Calibration registro de calibración de un equipo. Solo el de NextDue más reciente por equipo es vigente.
type Calibration struct {
	ID           string
	TenantID     string
	AssetID      string
	AssetName    string
	CalibratedAt time.Time
	NextDue      time.Time
}

// Estados de acción correctiva.
const (
	CorrectiveActionOpen         = "open"
	CorrectiveActionInProgress   = "in_progress"
	CorrectiveActionVerification = "verification"
	CorrectiveActionClosed       = "closed"
)

// CorrectiveAction acción correctiva con fecha compromiso.
type CorrectiveAction struct {
	ID       string
	TenantID string
	Title    string
	Status   string
	DueDate  time.Time
}

// IsPendingClosure indica si la acción sigue abierta (no cerrada ni en verificación).
func (a *CorrectiveAction) IsPendingClosure() bool {
	return a.Status != CorrectiveActionClosed && a.Status != CorrectiveActionVerification
}

// Estados de notificación de retiro.
const (
	RecallNotificationActive    = "active"
	RecallNotificationCompleted = "completed"
)

// RecallNotification aviso a un destinatario dentro de un retiro de producto.
type RecallNotification struct {
	ID            string
	TenantID      string
	RecallID      string
	RecipientName string
	Status        string
	Notified      bool
	InitiatedAt   time.Time
}

// SupplierDocument documento de proveedor con vencimiento (certificados, fichas, auditorías).
type SupplierDocument struct {
	ID           string
	TenantID     string
	SupplierID   string
	SupplierName string
	DocumentType string
	ExpiryDate   time.Time
}
