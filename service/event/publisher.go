package event

import (
	"context"

	"github.com/viant/ossim/service/messaging"
)

// TryPublisher is implemented by queues that can reject instead of blocking.
type TryPublisher[T any] interface {
	TryPublish(t *T) error
}

// Publisher wraps a queue of events.
type Publisher struct {
	queue messaging.Queue[Event]
}

func NewPublisher(queue messaging.Queue[Event]) *Publisher {
	return &Publisher{queue: queue}
}

// Publish enqueues the event, blocking until there is room or ctx is done.
func (p *Publisher) Publish(ctx context.Context, event *Event) error {
	return p.queue.Publish(ctx, event)
}

// TryPublish enqueues the event without blocking when the queue supports it.
func (p *Publisher) TryPublish(ctx context.Context, event *Event) error {
	if q, ok := p.queue.(TryPublisher[Event]); ok {
		return q.TryPublish(event)
	}
	return p.queue.Publish(ctx, event)
}

// Consume returns the next event, acknowledging its message.
func (p *Publisher) Consume(ctx context.Context) (*Event, error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
