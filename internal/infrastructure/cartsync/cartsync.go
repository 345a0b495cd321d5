// Package cartsync carries "cart changed" notifications between cart
// sessions. Receivers reload the whole cart from the store; there is no
// field-level merge, so the last write to the store wins.
package cartsync

import (
	"context"
	"encoding/json"
	"time"
)

// Notification says that a shopper's cart state changed in the store.
type Notification struct {
	UserID string    `json:"user_id"`
	Origin string    `json:"origin"`
	Kind   string    `json:"kind"`
	At     time.Time `json:"at"`
}

type Handler func(ctx context.Context, n Notification)

// Publisher is what cart sessions need to announce changes.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

type Broadcaster interface {
	Publisher
	// Subscribe delivers every notification, including the caller's own;
	// filtering by origin is the receiver's job. Delivery stops when ctx is
	// cancelled or the broadcaster is closed.
	Subscribe(ctx context.Context, handler Handler) error
	Close() error
}

func encode(n Notification) ([]byte, error) {
	return json.Marshal(n)
}

func decode(data []byte) (Notification, error) {
	var n Notification
	err := json.Unmarshal(data, &n)
	return n, err
}
