package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	backend "github.com/redis/go-redis/v9"
)

// Document implements ports.Document as a Redis hash.
//
// Values are cached locally; Flush writes the keys set since the last flush
// as JSON fields of the hash and publishes the changed key names on the
// document channel so other replicas can reload.
type Document struct {
	client *backend.Client
	key    string

	mu      sync.RWMutex
	values  map[string]any
	pending map[string]any
}

// OpenDocument loads the hash stored for name.
// A missing hash yields an empty document.
func OpenDocument(ctx context.Context, client *backend.Client, prefix, name string) (*Document, error) {
	d := &Document{
		client:  client,
		key:     prefix + "doc:" + name,
		values:  make(map[string]any),
		pending: make(map[string]any),
	}
	if err := d.Reload(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Channel is the pub/sub channel announcing flushes of this document.
func (d *Document) Channel() string {
	return d.key + ":changes"
}

// Reload replaces the local cache with the hash content.
func (d *Document) Reload(ctx context.Context) error {
	fields, err := d.client.HGetAll(ctx, d.key).Result()
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", d.key, err)
	}

	values := make(map[string]any, len(fields))
	for k, raw := range fields {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return fmt.Errorf("failed to decode field %s: %w", k, err)
		}
		values[k] = v
	}

	d.mu.Lock()
	d.values = values
	d.mu.Unlock()
	return nil
}

// Get returns the cached value for key.
func (d *Document) Get(key string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.values[key]
	return v, ok
}

// Set replaces the value for key locally.
func (d *Document) Set(key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[key] = value
	d.pending[key] = value
}

// Flush writes pending keys and announces them.
func (d *Document) Flush(ctx context.Context) error {
	d.mu.Lock()
	pending := d.pending
	d.pending = make(map[string]any)
	d.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	fields := make(map[string]any, len(pending))
	for k, v := range pending {
		raw, err := json.Marshal(v)
		if err != nil {
			d.restore(pending)
			return fmt.Errorf("failed to encode field %s: %w", k, err)
		}
		fields[k] = raw
	}

	changed := make([]string, 0, len(pending))
	for k := range pending {
		changed = append(changed, k)
	}
	note, _ := json.Marshal(changed)

	pipe := d.client.TxPipeline()
	pipe.HSet(ctx, d.key, fields)
	pipe.Publish(ctx, d.Channel(), note)
	if _, err := pipe.Exec(ctx); err != nil {
		d.restore(pending)
		return fmt.Errorf("failed to flush document %s: %w", d.key, err)
	}
	return nil
}

// restore puts keys back in the pending set after a failed flush,
// unless a newer Set superseded them.
func (d *Document) restore(pending map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range pending {
		if _, newer := d.pending[k]; !newer {
			d.pending[k] = v
		}
	}
}
