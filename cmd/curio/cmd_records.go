// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curiodata/curio-go/config"
	"github.com/curiodata/curio-go/feedback"
	"github.com/curiodata/curio-go/pkg/logging"
	"github.com/curiodata/curio-go/pkg/progress"
	"github.com/curiodata/curio-go/storage/badger"
)

// openDataset resolves the --id/--name flags into an open handle.
func openDataset(ctx context.Context, logger *logging.Logger, store feedback.RecordStore, pageSize int) *feedback.Dataset {
	client := newAPIClient(logger)

	opts := feedback.OpenOptions{
		Logger:        logger,
		Store:         store,
		FetchPageSize: pageSize,
		Progress:      progress.NewWriter(os.Stderr, "Fetching records"),
	}
	switch {
	case datasetID != "":
		opts.ID = datasetID
	case datasetName != "":
		opts.Name = datasetName
		opts.Workspace = resolveWorkspace()
	default:
		log.Fatalf("Either --id or --name is required")
	}

	ds, err := feedback.Open(ctx, client, opts)
	if err != nil {
		log.Fatalf("Error opening dataset: %v", err)
	}
	return ds
}

// openSnapshotStore returns the configured snapshot store, or nil when
// caching is disabled.
func openSnapshotStore(logger *logging.Logger) *badger.Store {
	if noCache || !config.Global.Cache.Enabled || config.Global.Cache.Dir == "" {
		return nil
	}
	store, err := badger.Open(badger.DefaultConfig(config.Global.Cache.Dir))
	if err != nil {
		logger.Warn("snapshot cache unavailable, fetching without it", "error", err)
		return nil
	}
	return store
}

func runRecordsFetch(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Close()
	ctx := context.Background()

	pageSize := batchSize
	if pageSize <= 0 {
		pageSize = config.Global.Defaults.BatchSize
	}

	store := openSnapshotStore(logger)
	var recordStore feedback.RecordStore
	if store != nil {
		defer store.Close()
		recordStore = store
	}

	ds := openDataset(ctx, logger, recordStore, pageSize)
	defer ds.Close()

	printed := 0
	it := ds.IterBatches(ctx, pageSize)
	for it.Next() {
		for _, r := range it.Batch() {
			if limitRecords > 0 && printed >= limitRecords {
				return
			}
			printRecord(r)
			printed++
		}
	}
	if err := it.Err(); err != nil {
		log.Fatalf("Error fetching records: %v", err)
	}
	if printed == 0 {
		fmt.Fprintln(os.Stderr, "Dataset has no records.")
	}
}

func printRecord(r *feedback.Record) {
	if outputJSON {
		blob, err := json.Marshal(map[string]any{
			"id":          r.ID,
			"fields":      r.Fields,
			"external_id": r.ExternalID,
		})
		if err != nil {
			log.Fatalf("Error encoding record: %v", err)
		}
		fmt.Println(string(blob))
		return
	}

	parts := make([]string, 0, len(r.Fields))
	for _, name := range sortedFieldNames(r.Fields) {
		parts = append(parts, fmt.Sprintf("%s=%v", name, r.Fields[name]))
	}
	fmt.Println(strings.Join(parts, "  "))
}

func sortedFieldNames(fields feedback.TypedFields) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runRecordsAdd(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Close()
	ctx := context.Background()

	if len(recordFields) == 0 {
		log.Fatalf("At least one --set name=value is required")
	}
	fields := make(feedback.FieldMap, len(recordFields))
	for _, pair := range recordFields {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			log.Fatalf("Invalid --set %q, want name=value", pair)
		}
		fields[name] = parseFieldValue(value)
	}

	ds := openDataset(ctx, logger, nil, 0)
	defer ds.Close()

	err := ds.AddRecord(ctx, feedback.RecordSubmission{
		Fields:     fields,
		ExternalID: externalID,
	})
	if err != nil {
		log.Fatalf("Error adding record: %v", err)
	}
	fmt.Printf("Added 1 record to dataset %q\n", ds.Name())
}

// parseFieldValue keeps numeric-looking values numeric so schema
// inference sees the intended kinds.
func parseFieldValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
