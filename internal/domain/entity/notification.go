package entity

import (
	"strings"
	"time"
)

// Severidades de notificación.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Notification alerta producida por el escáner. DedupeKey es único: a lo sumo una alerta
// por (entidad, regla, umbral). La entrega (email/push) es responsabilidad del Notifier.
type Notification struct {
	ID          string
	TenantID    string
	EntityType  string
	EntityID    string
	RuleID      string
	Severity    string
	Title       string
	Message     string
	DedupeKey   string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

// DedupeKey construye la clave de deduplicación entityType:entityID:ruleID:tier.
func DedupeKey(entityType, entityID, ruleID, tier string) string {
	return strings.Join([]string{entityType, entityID, ruleID, tier}, ":")
}
