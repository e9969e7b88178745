package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/attaboy/trustplane/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxRelay polls the event_outbox table and publishes audit and alert
// events to Kafka. Topic layout: trustplane.<aggregate>.<event suffix>.
type OutboxRelay struct {
	pool      *pgxpool.Pool
	outbox    repository.OutboxRepository
	producer  *KafkaProducer
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(pool *pgxpool.Pool, outbox repository.OutboxRepository, producer *KafkaProducer, logger *slog.Logger) *OutboxRelay {
	return &OutboxRelay{
		pool:      pool,
		outbox:    outbox,
		producer:  producer,
		logger:    logger,
		interval:  500 * time.Millisecond,
		batchSize: 100,
	}
}

// Run polls until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) {
	r.logger.Info("outbox relay started", "interval", r.interval, "batch_size", r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if err := r.poll(ctx); err != nil {
				r.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

func (r *OutboxRelay) poll(ctx context.Context) error {
	rows, err := r.outbox.FetchUnpublished(ctx, r.pool, r.batchSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	published := make([]int64, 0, len(rows))
	for _, row := range rows {
		draft := row.Draft
		topic := "trustplane." + string(draft.AggregateType)
		key := []byte(draft.PartitionKey)

		msg, _ := json.Marshal(map[string]interface{}{
			"event_id":       draft.EventID,
			"aggregate_type": draft.AggregateType,
			"aggregate_id":   draft.AggregateID,
			"event_type":     draft.EventType,
			"payload":        draft.Payload,
			"occurred_at":    draft.OccurredAt,
		})

		if err := r.producer.Publish(ctx, topic, key, msg); err != nil {
			r.logger.Error("kafka publish failed", "event_id", draft.EventID, "error", err)
			continue
		}
		published = append(published, row.SeqID)
	}

	if err := r.outbox.MarkPublished(ctx, r.pool, published); err != nil {
		r.logger.Error("mark published failed", "error", err)
	}

	r.logger.Debug("outbox poll complete", "published", len(published))
	return nil
}
