package services

import (
	"context"
	"sync"
)

// recorder collects published event names.
type recorder struct {
	mu     sync.Mutex
	names  []string
	values []any
}

func (r *recorder) Publish(_ context.Context, name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	r.values = append(r.values, payload)
}

func (r *recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}
