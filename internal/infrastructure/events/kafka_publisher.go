// Package events publica en Kafka los movimientos confirmados del libro.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// EventTypeMovementRecorded tipo de evento por cada movimiento del libro.
const EventTypeMovementRecorded = "lotes.movement.recorded"

// MovementEvent cuerpo JSON publicado.
type MovementEvent struct {
	EventType        string    `json:"event_type"`
	MovementID       string    `json:"movement_id"`
	LotID            string    `json:"lot_id"`
	ProductID        string    `json:"product_id"`
	Kind             string    `json:"kind"`
	Quantity         int       `json:"quantity"`
	FromLocation     *string   `json:"from_location,omitempty"`
	ToLocation       *string   `json:"to_location,omitempty"`
	DestinationLotID *string   `json:"destination_lot_id,omitempty"`
	TransactionID    string    `json:"transaction_id"`
	CreatedAt        time.Time `json:"created_at"`
	CreatedBy        string    `json:"created_by,omitempty"`
}

func newMovementEvent(m *entity.MovementEntry) MovementEvent {
	return MovementEvent{
		EventType:        EventTypeMovementRecorded,
		MovementID:       m.ID,
		LotID:            m.LotID,
		ProductID:        m.ProductID,
		Kind:             m.Kind,
		Quantity:         m.Quantity,
		FromLocation:     m.FromLocation,
		ToLocation:       m.ToLocation,
		DestinationLotID: m.DestinationLotID,
		TransactionID:    m.TransactionID,
		CreatedAt:        m.CreatedAt,
		CreatedBy:        m.CreatedBy,
	}
}

var _ ports.MovementNotifier = (*Publisher)(nil)

// Publisher envía movimientos a un topic. La clave del mensaje es el lote, así los eventos
// de un mismo lote llegan ordenados a una partición.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewPublisher crea un productor síncrono contra los brokers.
func NewPublisher(brokers []string, topic string, log *logger.Logger) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("crear productor kafka: %w", err)
	}
	if log != nil {
		log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("publicador Kafka inicializado")
	}
	return NewPublisherWithProducer(producer, topic, log), nil
}

// NewPublisherWithProducer usa un productor existente (tests con sarama/mocks).
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{producer: producer, topic: topic, log: log}
}

// Publish envía los movimientos en un solo lote de mensajes.
func (p *Publisher) Publish(ctx context.Context, movements []*entity.MovementEntry) error {
	if len(movements) == 0 {
		return nil
	}
	ctx, span := otel.Tracer("lotes-events").Start(ctx, "kafka.publish.movements",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", p.topic),
			attribute.Int("messaging.batch.message_count", len(movements)),
			attribute.String("lotes.transaction_id", movements[0].TransactionID),
		),
	)
	defer span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	msgs := make([]*sarama.ProducerMessage, 0, len(movements))
	for _, m := range movements {
		body, err := json.Marshal(newMovementEvent(m))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "marshal")
			return fmt.Errorf("marshal movement event: %w", err)
		}
		headers := []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeMovementRecorded)},
			{Key: []byte("movement_kind"), Value: []byte(m.Kind)},
		}
		for k, v := range carrier {
			headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic:   p.topic,
			Key:     sarama.StringEncoder(m.LotID),
			Value:   sarama.ByteEncoder(body),
			Headers: headers,
		})
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return fmt.Errorf("enviar a kafka: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// MovementsCommitted publica y registra el error sin propagarlo: la operación ya está confirmada.
func (p *Publisher) MovementsCommitted(ctx context.Context, movements []*entity.MovementEntry) {
	if err := p.Publish(ctx, movements); err != nil {
		p.log.Error().Err(err).
			Str("topic", p.topic).
			Int("movements", len(movements)).
			Msg("no se pudieron publicar los movimientos")
		return
	}
	p.log.Debug().Str("topic", p.topic).Int("movements", len(movements)).Msg("movimientos publicados")
}

// Close cierra el productor.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
