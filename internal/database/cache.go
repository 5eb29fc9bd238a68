// Package database memoizes storage connections and the per-process model registry.
package database

import (
	"context"

	"eventbooking/internal/domain"
)

// DialFunc opens a connection. It should verify the connection before returning.
type DialFunc[T any] func(ctx context.Context) (T, error)

// Cache memoizes one connection per process. At most one dial is in flight at a time;
// a failed dial is not remembered, so the next Get dials again. Callers waiting on an
// in-flight dial give up when their own context is done.
type Cache[T any] struct {
	dial  DialFunc[T]
	close func(context.Context, T) error

	// sem holds a token while a Get or Close owns conn.
	sem  chan struct{}
	conn T
	ok   bool
}

// NewCache returns a Cache that dials with dial and releases with closeFn.
func NewCache[T any](dial DialFunc[T], closeFn func(context.Context, T) error) *Cache[T] {
	return &Cache[T]{dial: dial, close: closeFn, sem: make(chan struct{}, 1)}
}

func (c *Cache[T]) lock(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cache[T]) unlock() { <-c.sem }

// Get returns the cached connection, dialing on first use or after a failure.
// Dial errors, and giving up while another dial runs, are returned as *domain.ConnectionError.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if err := c.lock(ctx); err != nil {
		return zero, &domain.ConnectionError{Err: err}
	}
	defer c.unlock()

	if c.ok {
		return c.conn, nil
	}
	conn, err := c.dial(ctx)
	if err != nil {
		return zero, &domain.ConnectionError{Err: err}
	}
	c.conn, c.ok = conn, true
	return conn, nil
}

// Close releases the cached connection, if any. A later Get dials a fresh one.
func (c *Cache[T]) Close(ctx context.Context) error {
	if err := c.lock(ctx); err != nil {
		return err
	}
	defer c.unlock()

	if !c.ok {
		return nil
	}
	conn := c.conn
	var zero T
	c.conn, c.ok = zero, false
	if c.close == nil {
		return nil
	}
	return c.close(ctx, conn)
}
