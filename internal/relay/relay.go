package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgnsrekt/glassbox/internal/signal"
)

// Relay decodes producer envelopes and republishes them on the broadcast
// topic. It keeps no per-request state.
type Relay struct {
	broker *Broker
	topic  string
	now    func() time.Time
}

// NewRelay creates a relay publishing on topic through broker.
func NewRelay(broker *Broker, topic string) *Relay {
	if topic == "" {
		topic = signal.DefaultTopic
	}
	return &Relay{broker: broker, topic: topic, now: time.Now}
}

// Ingest decodes body and publishes it. The returned envelope has its
// timestamp defaulted. Publishing succeeds even when nobody is listening.
func (r *Relay) Ingest(ctx context.Context, body []byte) (signal.Envelope, error) {
	env, err := signal.Decode(body, r.now())
	if err != nil {
		slog.WarnContext(ctx, "relay: rejected signal", "error", err)
		return signal.Envelope{}, err
	}
	slog.InfoContext(ctx, "relay: received signal", "type", env.Type, "fields", len(env.Data))

	delivered, err := r.broker.Publish(env.Broadcast(r.topic))
	if err != nil {
		return signal.Envelope{}, err
	}
	slog.DebugContext(ctx, "relay: broadcasted signal", "type", env.Type, "topic", r.topic, "delivered", delivered)
	return env, nil
}

// Now returns the relay clock.
func (r *Relay) Now() time.Time { return r.now() }

// Topic returns the broadcast topic name.
func (r *Relay) Topic() string { return r.topic }

// Broker returns the broker behind the relay.
func (r *Relay) Broker() *Broker { return r.broker }
