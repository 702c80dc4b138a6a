package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"tasksphere/internal/domain/outbox"
	"tasksphere/internal/events"
	"tasksphere/internal/metrics"
	"tasksphere/internal/repository"
)

// Relay drains the outbox into the broker. One instance per process; if
// several processes overlap the mark-published step keeps delivery
// at-least-once and never loses a row.
type Relay struct {
	outboxRepo     repository.OutboxRepository
	broker         events.Broker
	interval       time.Duration
	batchSize      int
	publishTimeout time.Duration
	logger         *zap.Logger
	stopChan       chan struct{}
	wg             sync.WaitGroup
}

type Config struct {
	Interval       time.Duration
	BatchSize      int
	PublishTimeout time.Duration
}

func New(outboxRepo repository.OutboxRepository, broker events.Broker, cfg Config) *Relay {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	return &Relay{
		outboxRepo:     outboxRepo,
		broker:         broker,
		interval:       cfg.Interval,
		batchSize:      cfg.BatchSize,
		publishTimeout: cfg.PublishTimeout,
		logger:         zap.L().With(zap.String("component", "relay")),
		stopChan:       make(chan struct{}),
	}
}

// Start begins the worker loop
func (r *Relay) Start() {
	r.wg.Add(1)
	go r.run()
}

// Stop finishes the in-flight batch and shuts the loop down.
func (r *Relay) Stop() {
	close(r.stopChan)
	r.wg.Wait()
}

func (r *Relay) run() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.ProcessBatch(context.Background())
		}
	}
}

// ProcessBatch drains one batch of unpublished rows. A failing row is
// counted and left unpublished for the next tick; the rest of the batch
// continues.
func (r *Relay) ProcessBatch(ctx context.Context) {
	batch, err := r.outboxRepo.ScanUnpublished(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("outbox scan failed", zap.Error(err))
		return
	}

	if depth, err := r.outboxRepo.Depth(ctx); err == nil {
		metrics.OutboxDepth.Set(float64(depth))
	}

	if len(batch) == 0 {
		return
	}

	published := make([]string, 0, len(batch))
	for _, row := range batch {
		if err := r.publishRow(ctx, row); err != nil {
			metrics.EventsFailed.Inc()
			r.logger.Error("outbox publish failed",
				zap.String("event_id", row.EventID),
				zap.String("type", row.Type),
				zap.String("channel", row.Channel),
				zap.Error(err))
			continue
		}
		metrics.EventsPublished.Inc()
		published = append(published, row.EventID)
	}

	if err := r.outboxRepo.MarkPublished(ctx, published); err != nil {
		// Rows stay unpublished and will be re-delivered next tick;
		// subscribers dedupe by event id.
		r.logger.Error("outbox mark-published failed",
			zap.Int("count", len(published)),
			zap.Error(err))
	}
}

func (r *Relay) publishRow(ctx context.Context, row outbox.Event) error {
	envelope := events.Envelope{
		EventID:   row.EventID,
		Type:      row.Type,
		Channel:   row.Channel,
		Payload:   json.RawMessage(row.Payload),
		CreatedAt: row.CreatedAt,
	}
	data, err := envelope.Encode()
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, r.publishTimeout)
	defer cancel()

	start := time.Now()
	err = r.broker.Publish(pubCtx, row.Channel, data)
	metrics.PublishLatency.Observe(time.Since(start).Seconds())
	return err
}
