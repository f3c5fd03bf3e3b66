// Package downstream carries verified telemetry into the messaging layer.
//
// Delivery is at-least-once: a message is either handed to the sink or the
// caller gets an error, nothing is silently dropped. Backpressure is
// credit-based, a sender blocks until a credit frees up or its deadline
// expires.
package downstream

import (
	"context"
	"time"

	"github.com/google/uuid"

	"coap-adapter-go/internal/domain/auth"
	"coap-adapter-go/internal/platform/errors"
)

// Message is one verified device upload on its way downstream.
type Message struct {
	ID          string
	TenantID    string
	DeviceID    string
	Via         string
	ContentType string
	Payload     []byte
	Received    time.Time
}

// NewMessage builds a downstream message for a resolved target.
func NewMessage(target auth.Target, contentType string, payload []byte) Message {
	return Message{
		ID:          uuid.NewString(),
		TenantID:    target.TenantID,
		DeviceID:    target.DeviceID,
		Via:         target.Via,
		ContentType: contentType,
		Payload:     payload,
		Received:    time.Now(),
	}
}

// Sink accepts verified messages for downstream delivery. Forward blocks
// while the sink is out of credit and returns KindUnavailable when the
// context expires first.
type Sink interface {
	Forward(ctx context.Context, msg Message) error
	Close() error
}

func unavailable(op string, cause error) error {
	return errors.Wrap(errors.KindUnavailable, op, "downstream did not accept the message", cause)
}
