package notify

import (
	"context"

	"github.com/Matza-labs/atlas-sdk/pkg/logging"
	"github.com/Matza-labs/atlas-sdk/pkg/metrics"
	"github.com/Matza-labs/atlas-sdk/pkg/pubsub"
)

// Dispatcher publishes alerts on the topic of their delivery channel.
// Subscribers receive a copy of the event.
type Dispatcher struct {
	hub     *pubsub.Hub[*AlertEvent]
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewDispatcher creates a dispatcher over its own hub. logger and reg may be
// nil.
func NewDispatcher(logger logging.Logger, reg *metrics.Registry) *Dispatcher {
	return &Dispatcher{
		hub:     pubsub.New[*AlertEvent](pubsub.DefaultBuffer),
		logger:  logging.OrNop(logger).With(logging.Component("notify.dispatcher")),
		metrics: reg,
	}
}

// Subscribe returns a subscription to the alerts published for channel.
func (d *Dispatcher) Subscribe(ctx context.Context, channel Channel) (*pubsub.Subscription[*AlertEvent], error) {
	return d.hub.Subscribe(ctx, channel.Topic())
}

// Dispatch publishes ev on channel and marks it delivered when at least one
// subscriber accepted it.
func (d *Dispatcher) Dispatch(channel Channel, ev *AlertEvent) bool {
	d.metrics.RecordAlertFired(string(ev.Severity))
	n := d.hub.Publish(channel.Topic(), ev.Clone())
	ev.Delivered = n > 0
	d.metrics.RecordAlertDelivery(string(channel), ev.Delivered)

	fields := []logging.Field{
		logging.GraphName(ev.GraphName),
		logging.String("alert_id", ev.ID),
		logging.String("channel", string(channel)),
		logging.String("severity", string(ev.Severity)),
		logging.Count(n),
	}
	if ev.Delivered {
		d.logger.Info("alert dispatched", fields...)
	} else {
		d.logger.Warn("alert had no subscriber", fields...)
	}
	return ev.Delivered
}

// Close shuts the hub down and closes every subscription.
func (d *Dispatcher) Close() {
	d.hub.Shutdown()
}
