package downstream

import (
	"context"
	"sync"

	evbus "github.com/asaskevich/EventBus"

	"coap-adapter-go/internal/platform/errors"
	"coap-adapter-go/internal/platform/logging"
)

const defaultCreditWindow = 64

// BusSink publishes messages on an in-process event bus. A fixed pool of
// credits bounds how many publishes may be in flight at once; a Forward
// without credit blocks instead of dropping the message.
type BusSink struct {
	bus     evbus.Bus
	topic   string
	credits chan struct{}
	logger  *logging.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

// NewBusSink creates a sink publishing on topic with the given credit
// window. A window of zero or less falls back to the default.
func NewBusSink(topic string, creditWindow int, logger *logging.Logger) *BusSink {
	if creditWindow <= 0 {
		creditWindow = defaultCreditWindow
	}
	credits := make(chan struct{}, creditWindow)
	for i := 0; i < creditWindow; i++ {
		credits <- struct{}{}
	}
	return &BusSink{
		bus:     evbus.New(),
		topic:   topic,
		credits: credits,
		logger:  logger,
		closed:  make(chan struct{}),
	}
}

// Subscribe registers a consumer for forwarded messages. Handlers run on
// the publisher's goroutine, a slow handler therefore consumes a credit
// for its whole run.
func (s *BusSink) Subscribe(fn func(Message)) error {
	if err := s.bus.Subscribe(s.topic, fn); err != nil {
		return errors.Wrap(errors.KindPlatform, "downstream.subscribe", "subscribing consumer", err)
	}
	return nil
}

// Forward publishes msg once a credit is available. It blocks until then,
// or returns KindUnavailable when ctx expires or the sink is closed.
func (s *BusSink) Forward(ctx context.Context, msg Message) error {
	const op = "downstream.forward"

	select {
	case <-s.closed:
		return errors.New(errors.KindUnavailable, op, "sink is closed")
	default:
	}

	select {
	case <-s.credits:
	case <-ctx.Done():
		return unavailable(op, ctx.Err())
	case <-s.closed:
		return errors.New(errors.KindUnavailable, op, "sink is closed")
	}
	defer func() { s.credits <- struct{}{} }()

	s.bus.Publish(s.topic, msg)
	if s.logger != nil {
		s.logger.Debug("forwarded %s for %s/%s", msg.ID, msg.TenantID, msg.DeviceID)
	}
	return nil
}

// Close stops accepting new messages. In-flight publishes complete.
func (s *BusSink) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}
