// Package errors collects failures from concurrent work.
package errors

import (
	"errors"
	"sync"
)

// Collection accumulates errors. It is safe for concurrent use; the zero
// value is empty and ready.
type Collection struct {
	mu     sync.Mutex
	errors []error
}

// Add appends err. Nil errors are ignored.
func (c *Collection) Add(err error) {
	if err == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.errors = append(c.errors, err)
}

func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.errors)
}

// GetError returns nil for an empty collection, the error itself when
// there is one, and errors.Join of all of them otherwise.
func (c *Collection) GetError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
