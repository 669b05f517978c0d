package storage

import (
	"context"
	"fmt"
)

// Provider persists raw document bytes and hands back a locator. The locator
// is opaque to callers; only the provider that produced it can resolve it.
type Provider interface {
	Save(ctx context.Context, key string, data []byte) (locator string, err error)
	Read(ctx context.Context, locator string) ([]byte, error)
}

// Error marks a physical write or read failure so callers can distinguish it
// from metadata problems.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
