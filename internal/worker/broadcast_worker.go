package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/config"
	"github.com/stemsi/ascent-backend/internal/logger"
	"github.com/stemsi/ascent-backend/internal/model"
)

// Publisher is the subset of the Redis client used to fan events out.
// *redis.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Envelope is the wire format published on the expeditions channel.
type Envelope struct {
	Event  string    `json:"event"`
	Data   any       `json:"data"`
	SentAt time.Time `json:"sent_at"`
}

// BroadcastWorker decouples request handlers from the broker. Notify never
// blocks; events that do not fit in the queue are dropped.
type BroadcastWorker struct {
	pub          Publisher
	channel      string
	queue        chan model.ProgressEvent
	drainTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger
}

// NewBroadcastWorker creates a new BroadcastWorker with a queue of queueSize events.
func NewBroadcastWorker(pub Publisher, queueSize int, log zerolog.Logger) *BroadcastWorker {
	if queueSize < 1 {
		queueSize = 1
	}
	return &BroadcastWorker{
		pub:          pub,
		channel:      config.Broadcast.Channel,
		queue:        make(chan model.ProgressEvent, queueSize),
		drainTimeout: config.Broadcast.DrainTimeout,
		now:          time.Now,
		log:          logger.Component(log, "broadcast_worker"),
	}
}

// Notify enqueues an event for publishing.
func (w *BroadcastWorker) Notify(event model.ProgressEvent) {
	select {
	case w.queue <- event:
	default:
		w.log.Warn().Str("event", event.Name).Msg("Broadcast queue full, event dropped")
	}
}

// Start begins the worker loop. Call in a goroutine; it returns once ctx is
// cancelled and the queue has been drained.
func (w *BroadcastWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			drainCtx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
			w.drain(drainCtx)
			cancel()
			w.log.Info().Msg("Worker stopped")
			return
		case event := <-w.queue:
			w.publish(context.WithoutCancel(ctx), event)
		}
	}
}

func (w *BroadcastWorker) publish(ctx context.Context, event model.ProgressEvent) bool {
	raw, err := json.Marshal(Envelope{Event: event.Name, Data: event.Payload, SentAt: w.now().UTC()})
	if err != nil {
		w.log.Error().Err(err).Str("event", event.Name).Msg("Marshal error")
		return false
	}
	if err := w.pub.Publish(ctx, w.channel, raw).Err(); err != nil {
		w.log.Error().Err(err).Str("event", event.Name).Msg("Publish error, event dropped")
		return false
	}
	return true
}

// drain publishes whatever is still queued until the queue is empty or ctx expires.
func (w *BroadcastWorker) drain(ctx context.Context) {
	drained := 0
	for {
		select {
		case <-ctx.Done():
			w.log.Warn().Int("left", len(w.queue)).Msg("Drain deadline reached")
			return
		case event := <-w.queue:
			if w.publish(ctx, event) {
				drained++
			}
		default:
			if drained > 0 {
				w.log.Info().Int("count", drained).Msg("Drained remaining events")
			}
			return
		}
	}
}
