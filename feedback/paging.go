// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"context"
	"fmt"

	"github.com/curiodata/curio-go/api"
)

// -----------------------------------------------------------------------------
// Full Fetch
// -----------------------------------------------------------------------------

// EnsurePopulated fetches every remaining remote record into the cache.
//
// Offsets advance monotonically from the current cached length, so a
// partially filled cache (an abandoned iteration, an earlier error)
// resumes where it stopped instead of refetching from zero. A cache
// holding records appended before any fetch is not a remote prefix and
// cannot seed offsets; it is dropped and refetched in full — the
// records already exist remotely, so nothing is lost. The first record
// observed binds the schema. No-op when the cache is already populated.
//
// When a RecordStore is configured, a snapshot whose total still matches
// the remote total replaces the fetch entirely; a stale snapshot is
// dropped. Snapshot persistence failures are logged, never fatal.
func (d *Dataset) EnsurePopulated(ctx context.Context) error {
	if d.cache.Populated() {
		return nil
	}

	if d.cache.hasLocalOnly() {
		d.logger.Debug("cache holds locally added records out of remote order, refetching from zero")
		d.cache.Release()
	}

	if d.store != nil && d.cache.CachedLen() == 0 {
		restored, err := d.restoreSnapshot(ctx)
		if err != nil {
			return err
		}
		if restored {
			return nil
		}
	}

	offset := d.cache.CachedLen()
	started := false
	for {
		page, err := d.source.GetRecords(ctx, d.id, offset, d.fetchPageSize)
		if err != nil {
			return err
		}
		if !started {
			d.reporter.Start(page.Total)
			if offset > 0 {
				// Count the cached prefix so a resumed fetch
				// reports total progress, not the remainder.
				d.reporter.Advance(offset)
			}
			started = true
		}
		if offset >= page.Total {
			break
		}
		if len(page.Items) == 0 {
			d.reporter.Finish()
			return fmt.Errorf("%w: empty page at offset %d, remote total %d", ErrShortPage, offset, page.Total)
		}

		batch, err := d.materializeItems(page.Items)
		if err != nil {
			d.reporter.Finish()
			return err
		}
		d.cache.appendBatch(batch)
		d.reporter.Advance(len(batch))
		offset += len(batch)

		if offset >= page.Total {
			break
		}
	}
	d.reporter.Finish()
	d.cache.markPopulated()
	d.saveSnapshot(ctx, offset)
	return nil
}

// materializeItems converts one page of wire items, binding the schema
// from the first item when none is bound yet.
func (d *Dataset) materializeItems(items []api.RecordItem) ([]*Record, error) {
	v, err := d.bindSchema(items[0].Fields)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(items))
	for _, item := range items {
		rec, err := materializeRecord(item, v)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Snapshots
// -----------------------------------------------------------------------------

// restoreSnapshot tries to warm-start the cache from the record store.
// It reports whether the cache was fully restored.
func (d *Dataset) restoreSnapshot(ctx context.Context) (bool, error) {
	snap, err := d.store.Load(ctx, d.id)
	if err != nil {
		d.logger.Warn("loading cache snapshot failed, falling back to a full fetch", "error", err)
		return false, nil
	}
	if snap == nil {
		return false, nil
	}

	// One probe fetch decides staleness: the snapshot is only usable
	// when the remote collection has not grown or shrunk since it was
	// written.
	probe, err := d.source.GetRecords(ctx, d.id, 0, 1)
	if err != nil {
		return false, err
	}
	if probe.Total != snap.Total || len(snap.Records) != snap.Total {
		d.logger.Info("cache snapshot is stale, dropping it",
			"snapshot_total", snap.Total, "remote_total", probe.Total)
		if err := d.store.Drop(ctx, d.id); err != nil {
			d.logger.Warn("dropping stale cache snapshot failed", "error", err)
		}
		return false, nil
	}

	// Stored field values went through a JSON round trip, so integers
	// come back as float64; re-converting through the stored schema
	// restores canonical types.
	v := d.bindValidator(NewValidator(snap.Schema))
	records := make([]*Record, 0, len(snap.Records))
	for _, r := range snap.Records {
		typed, err := v.Convert(r.Fields)
		if err != nil {
			d.logger.Warn("cache snapshot does not match its stored schema, dropping it", "error", err)
			if dropErr := d.store.Drop(ctx, d.id); dropErr != nil {
				d.logger.Warn("dropping corrupt cache snapshot failed", "error", dropErr)
			}
			return false, nil
		}
		r.Fields = typed
		records = append(records, r)
	}

	d.cache.appendBatch(records)
	d.cache.markPopulated()
	d.reporter.Start(len(records))
	d.reporter.Advance(len(records))
	d.reporter.Finish()
	d.logger.Debug("cache restored from snapshot", "records", len(records))
	return true, nil
}

// saveSnapshot persists the fully fetched cache. Best effort.
func (d *Dataset) saveSnapshot(ctx context.Context, total int) {
	if d.store == nil {
		return
	}
	v := d.Schema()
	if v == nil {
		// Empty dataset: nothing to restore later, skip the write.
		return
	}
	snap := CacheSnapshot{
		DatasetID: d.id,
		Total:     total,
		Schema:    v.Descriptor(),
		Records:   d.cache.All(),
	}
	if err := d.store.Save(ctx, snap); err != nil {
		d.logger.Warn("saving cache snapshot failed", "error", err)
	}
}

// -----------------------------------------------------------------------------
// Batch Iteration
// -----------------------------------------------------------------------------

// BatchIterator streams a dataset in fixed-size batches.
//
// Over an unpopulated cache it fetches pages at monotonically increasing
// offsets, caching records as it goes; completing the stream marks the
// cache populated, while abandoning it leaves a resumable partial cache.
// Over a populated cache it re-slices local data and performs no remote
// calls. The final batch may be shorter than the requested size.
//
// The usual loop:
//
//	it := ds.IterBatches(ctx, 32)
//	for it.Next() {
//	    handle(it.Batch())
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
type BatchIterator struct {
	ctx    context.Context
	ds     *Dataset
	size   int
	offset int
	batch  []*Record
	err    error
	done   bool
}

// IterBatches returns a batch iterator over the dataset. A non-positive
// size falls back to the default of 32. An unpopulated cache holding
// locally added records is dropped up front, same as in EnsurePopulated,
// so the stream follows remote order.
func (d *Dataset) IterBatches(ctx context.Context, size int) *BatchIterator {
	if size <= 0 {
		size = defaultBatchSize
	}
	if !d.cache.Populated() && d.cache.hasLocalOnly() {
		d.logger.Debug("cache holds locally added records out of remote order, refetching from zero")
		d.cache.Release()
	}
	return &BatchIterator{ctx: ctx, ds: d, size: size}
}

// Next advances to the next batch. It returns false when the stream is
// exhausted or an error occurred; check Err after the loop.
func (it *BatchIterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if err := it.ctx.Err(); err != nil {
		it.err = err
		return false
	}

	cached := it.ds.cache.CachedLen()

	// Serve the cached prefix first. This covers both the fully
	// populated case and resuming after an abandoned stream.
	if it.offset < cached {
		end := it.offset + it.size
		if end > cached {
			end = cached
		}
		batch, err := it.ds.cache.Slice(it.offset, end)
		if err != nil {
			it.err = err
			return false
		}
		it.batch = batch
		it.offset = end
		return true
	}

	if it.ds.cache.Populated() {
		it.done = true
		return false
	}

	page, err := it.ds.source.GetRecords(it.ctx, it.ds.id, it.offset, it.size)
	if err != nil {
		it.err = err
		return false
	}
	if it.offset >= page.Total {
		it.ds.cache.markPopulated()
		it.ds.saveSnapshot(it.ctx, it.offset)
		it.done = true
		return false
	}
	if len(page.Items) == 0 {
		it.err = fmt.Errorf("%w: empty page at offset %d, remote total %d", ErrShortPage, it.offset, page.Total)
		return false
	}

	batch, err := it.ds.materializeItems(page.Items)
	if err != nil {
		it.err = err
		return false
	}
	it.ds.cache.appendBatch(batch)
	it.batch = batch
	it.offset += len(batch)

	if it.offset >= page.Total {
		it.ds.cache.markPopulated()
		it.ds.saveSnapshot(it.ctx, it.offset)
		it.done = true
	}
	return true
}

// Batch returns the current batch. Valid until the next call to Next.
func (it *BatchIterator) Batch() []*Record {
	return it.batch
}

// Err returns the error that stopped the iteration, if any.
func (it *BatchIterator) Err() error {
	return it.err
}
