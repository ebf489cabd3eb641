package notify

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// PubSubNotifier publica cada notificación en un tópico de Google Pub/Sub.
// Los consumidores (email, push) se suscriben al tópico.
type PubSubNotifier struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

var _ ports.Notifier = (*PubSubNotifier)(nil)

// NewPubSubNotifier crea el cliente. credentialsFile vacío usa las credenciales por defecto del entorno.
func NewPubSubNotifier(ctx context.Context, projectID, topicID, credentialsFile string) (*PubSubNotifier, error) {
	if projectID == "" || topicID == "" {
		return nil, fmt.Errorf("pubsub: projectID y topicID son obligatorios")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub: crear cliente: %w", err)
	}
	topic := client.Topic(topicID)
	// La clave de orden agrupa por entidad para que las alertas de un lote lleguen en orden.
	topic.EnableMessageOrdering = true
	return &PubSubNotifier{client: client, topic: topic}, nil
}

// Notify publica y espera la confirmación del servidor.
func (p *PubSubNotifier) Notify(ctx context.Context, n *entity.Notification) error {
	msg, err := BuildMessage(n)
	if err != nil {
		return err
	}
	result := p.topic.Publish(ctx, msg)
	if _, err := result.Get(ctx); err != nil {
		// Tras un fallo la clave de orden queda pausada hasta reanudarla.
		p.topic.ResumePublish(msg.OrderingKey)
		return fmt.Errorf("pubsub: publicar %s: %w", n.DedupeKey, err)
	}
	return nil
}

// Close vacía los mensajes pendientes y cierra el cliente.
func (p *PubSubNotifier) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
