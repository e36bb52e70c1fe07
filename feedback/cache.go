// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"fmt"
	"sync"
)

// RecordCache is the ordered, growable local store of materialized records
// for one dataset handle.
//
// Insertion order equals remote fetch order for paged entries and append
// order for locally added entries; nothing here deduplicates or reorders.
// All accessors are pure: the cache itself never talks to the remote
// source. Population is driven by the dataset handle (EnsurePopulated),
// which flips the populated flag only after a complete fetch — a non-empty
// unpopulated cache means a streaming iteration was abandoned partway.
type RecordCache struct {
	mu        sync.RWMutex
	records   []*Record
	populated bool

	// localOnly is set when a record is appended before any full fetch
	// completed. Such records sit at the front of the cache but at the
	// end of the remote collection, so the cache is not a remote prefix
	// and must not seed paging offsets.
	localOnly bool
}

// NewRecordCache returns an empty, unpopulated cache.
func NewRecordCache() *RecordCache {
	return &RecordCache{}
}

// CachedLen returns the current local count without any side effects.
func (c *RecordCache) CachedLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Populated reports whether a full fetch has completed. An empty,
// unpopulated cache means "not yet fetched", not "remote is empty".
func (c *RecordCache) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}

// Get returns the record at index i from local data only.
//
// Fails with ErrIndexOutOfRange when i is beyond the cached length; it
// never triggers a fetch.
func (c *RecordCache) Get(i int) (*Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.records) {
		return nil, fmt.Errorf("%w: index %d, cached length %d", ErrIndexOutOfRange, i, len(c.records))
	}
	return c.records[i], nil
}

// Slice returns records[i:j] from local data only.
func (c *RecordCache) Slice(i, j int) ([]*Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || j < i || j > len(c.records) {
		return nil, fmt.Errorf("%w: slice [%d:%d], cached length %d", ErrIndexOutOfRange, i, j, len(c.records))
	}
	out := make([]*Record, j-i)
	copy(out, c.records[i:j])
	return out, nil
}

// All returns a copy of the full cached sequence.
func (c *RecordCache) All() []*Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Record, len(c.records))
	copy(out, c.records)
	return out
}

// Append adds one record to the end. Appending is independent of whether
// a full fetch has occurred.
func (c *RecordCache) Append(r *Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
	if !c.populated {
		c.localOnly = true
	}
}

// hasLocalOnly reports whether the cache holds records that never came
// from a remote fetch, making it unusable as a paging resume point.
func (c *RecordCache) hasLocalOnly() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.localOnly
}

// appendBatch adds records preserving their order.
func (c *RecordCache) appendBatch(records []*Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, records...)
}

// markPopulated flags the cache as fully fetched.
func (c *RecordCache) markPopulated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.populated = true
}

// Release drops all cached records and resets the populated flag.
// Safe to call multiple times.
func (c *RecordCache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
	c.populated = false
	c.localOnly = false
}
