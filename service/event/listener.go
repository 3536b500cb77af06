package event

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Listener drains a publisher and hands every event to a handler.
type Listener struct {
	publisher *Publisher
	handler   func(*Event)
	logger    *slog.Logger
	cancel    context.CancelFunc
	done      chan struct{}
	once      sync.Once
}

func NewListener(publisher *Publisher, handler func(*Event), logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		publisher: publisher,
		handler:   handler,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Stop cancels consumption and waits for the listener goroutine to exit.
func (l *Listener) Stop() {
	l.once.Do(func() {
		if l.cancel == nil {
			close(l.done)
			return
		}
		l.cancel()
		<-l.done
	})
}

func (l *Listener) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	go func() {
		defer close(l.done)
		for {
			event, err := l.publisher.Consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return
				}
				l.logger.Warn("error consuming event", "error", err)
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}
