package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// message forma serializada de una notificación hacia los consumidores externos.
type message struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	RuleID     string    `json:"rule_id"`
	Severity   string    `json:"severity"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	DedupeKey  string    `json:"dedupe_key"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMessage(n *entity.Notification) message {
	return message{
		ID:         n.ID,
		TenantID:   n.TenantID,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		RuleID:     n.RuleID,
		Severity:   n.Severity,
		Title:      n.Title,
		Message:    n.Message,
		DedupeKey:  n.DedupeKey,
		CreatedAt:  n.CreatedAt,
	}
}

// BuildMessage arma el mensaje de Pub/Sub: cuerpo JSON, atributos para filtrar
// suscripciones y clave de orden por entidad.
func BuildMessage(n *entity.Notification) (*pubsub.Message, error) {
	data, err := json.Marshal(toMessage(n))
	if err != nil {
		return nil, fmt.Errorf("pubsub: serializar notificación: %w", err)
	}
	return &pubsub.Message{
		Data:        data,
		OrderingKey: n.EntityType + ":" + n.EntityID,
		Attributes: map[string]string{
			"tenant_id": n.TenantID,
			"rule_id":   n.RuleID,
			"severity":  n.Severity,
		},
	}, nil
}
