// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package badger persists dataset cache snapshots in an embedded BadgerDB.
//
// A snapshot is one JSON blob per dataset id. Reopening a dataset whose
// remote total hasn't changed then warm-starts from disk instead of paging
// through the whole collection again.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/curiodata/curio-go/feedback"
	"github.com/curiodata/curio-go/pkg/logging"
)

// keyPrefix namespaces snapshot keys inside the database.
const keyPrefix = "curio/snapshot/"

// Config holds configuration for the snapshot store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. When nil,
	// BadgerDB's logging is disabled.
	Logger *logging.Logger
}

// DefaultConfig returns the production configuration: persistent at the
// given path, synchronous writes.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryConfig returns a configuration for tests: no disk I/O, no sync.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Store is a feedback.RecordStore backed by BadgerDB.
// Safe for concurrent use; Close must be called when done.
type Store struct {
	db *badgerdb.DB
}

var _ feedback.RecordStore = (*Store)(nil)

// Open creates the database directory if needed and opens the store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent snapshot store")
	}

	var opts badgerdb.Options
	if cfg.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create snapshot directory %s: %w", cfg.Path, err)
		}
		opts = badgerdb.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes or replaces the snapshot for snap.DatasetID.
func (s *Store) Save(ctx context.Context, snap feedback.CacheSnapshot) error {
	if snap.DatasetID == "" {
		return errors.New("snapshot has no dataset id")
	}
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot for %s: %w", snap.DatasetID, err)
	}
	err = s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key(snap.DatasetID), blob)
	})
	if err != nil {
		return fmt.Errorf("save snapshot for %s: %w", snap.DatasetID, err)
	}
	return nil
}

// Load returns the stored snapshot, or (nil, nil) when none exists.
func (s *Store) Load(ctx context.Context, datasetID string) (*feedback.CacheSnapshot, error) {
	var blob []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key(datasetID))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot for %s: %w", datasetID, err)
	}

	var snap feedback.CacheSnapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot for %s: %w", datasetID, err)
	}
	return &snap, nil
}

// Drop deletes the snapshot for the dataset, if any.
func (s *Store) Drop(ctx context.Context, datasetID string) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key(datasetID))
	})
	if err != nil {
		return fmt.Errorf("drop snapshot for %s: %w", datasetID, err)
	}
	return nil
}

func key(datasetID string) []byte {
	return []byte(keyPrefix + datasetID)
}

// badgerLogger adapts our logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *logging.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
