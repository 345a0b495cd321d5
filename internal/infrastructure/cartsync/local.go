package cartsync

import (
	"context"
	"sync"

	"github.com/asaskevich/EventBus"
)

const localTopic = "cart:updated"

// LocalBus delivers notifications in-process, synchronously on the
// publisher's goroutine.
type LocalBus struct {
	bus EventBus.Bus

	mu       sync.Mutex
	handlers []func(Notification)
}

func NewLocalBus() *LocalBus {
	return &LocalBus{bus: EventBus.New()}
}

func (b *LocalBus) Publish(_ context.Context, n Notification) error {
	b.bus.Publish(localTopic, n)
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context, handler Handler) error {
	fn := func(n Notification) {
		if ctx.Err() != nil {
			return
		}
		handler(ctx, n)
	}
	if err := b.bus.Subscribe(localTopic, fn); err != nil {
		return err
	}

	b.mu.Lock()
	b.handlers = append(b.handlers, fn)
	b.mu.Unlock()
	return nil
}

// Close unsubscribes every handler.
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, fn := range b.handlers {
		_ = b.bus.Unsubscribe(localTopic, fn)
	}
	b.handlers = nil
	return nil
}
