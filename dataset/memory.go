package dataset

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryRegistry keeps datasets in process memory. Stored and returned datasets are
// deep copies, so callers may keep mutating their own handles.
type MemoryRegistry struct {
	mu    sync.RWMutex
	items map[string]*Dataset
}

var _ Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{items: make(map[string]*Dataset)}
}

func (r *MemoryRegistry) Put(ctx context.Context, ds *Dataset, replace bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := prepare(ds); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[ds.Name]; ok && !replace {
		return fmt.Errorf("%w: %s", ErrNameConflict, ds.Name)
	}
	r.items[ds.Name] = ds.Clone()
	return nil
}

func (r *MemoryRegistry) Get(ctx context.Context, name string) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds, ok := r.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return ds.Clone(), nil
}

func (r *MemoryRegistry) List(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Summary, 0, len(r.items))
	for _, ds := range r.items {
		out = append(out, ds.Summary())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRegistry) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.items, name)
	return nil
}

// Close is a no-op.
func (r *MemoryRegistry) Close() error { return nil }
