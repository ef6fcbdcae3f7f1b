package rules

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Well-known rule context keys
const (
	KeyMessage           = "MESSAGE_DATA"
	KeyMessageID         = "MESSAGE_ID"
	KeyObjectEvents      = "OBJECT_EVENTS"
	KeyAggregationEvents = "AGGREGATION_EVENTS"
	KeyTransactionEvents = "TRANSACTION_EVENTS"
	KeyQuantity          = "QUANTITY"
	KeyShipment          = "SHIPMENT"
	KeyNumbers           = "NUMBERS"
	KeyOutput            = "OUTPUT"
)

// Context carries values between the steps of one rule execution
type Context struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewContext creates an empty rule context
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

// Set stores a value under key
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get returns the value stored under key
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Delete removes key
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Keys returns the stored keys in sorted order
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the value stored under key as a T
func Value[T any](c *Context, key string) (T, error) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrMissingContextValue, key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("rule context value %s has type %T, want %T", key, v, zero)
	}
	return t, nil
}

// ValueOr returns the value stored under key, or the zero T when the key
// is absent or holds another type
func ValueOr[T any](c *Context, key string) T {
	t, _ := Value[T](c, key)
	return t
}

// Message returns the inbound message as a reader. The message may have
// been stored as bytes, a string or a reader.
func (c *Context) Message() (io.Reader, error) {
	v, ok := c.Get(KeyMessage)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingContextValue, KeyMessage)
	}
	switch m := v.(type) {
	case []byte:
		return bytes.NewReader(m), nil
	case string:
		return strings.NewReader(m), nil
	case io.Reader:
		return m, nil
	}
	return nil, fmt.Errorf("rule context message has unsupported type %T", v)
}
