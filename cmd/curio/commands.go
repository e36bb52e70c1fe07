// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/curiodata/curio-go/api"
	"github.com/curiodata/curio-go/config"
	"github.com/curiodata/curio-go/pkg/logging"
)

// --- Global Command Variables ---
var (
	workspaceName string
	datasetName   string
	datasetID     string
	batchSize     int
	noCache       bool
	guidelines    string
	fieldNames    []string
	questionSpecs []string
	recordFields  []string
	externalID    string
	limitRecords  int
	outputJSON    bool

	rootCmd = &cobra.Command{
		Use:   "curio",
		Short: "A cli for browsing and feeding Curio feedback datasets",
		Long: `Curio is a client for remote feedback datasets: collections of
				records with typed fields and annotator responses. The cli lists
				and creates datasets, streams their records, and appends new ones.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := config.Load(); err != nil {
				log.Fatalf("Error loading configuration: %v", err)
			}
		},
	}

	// --- Datasets ---
	datasetsCmd = &cobra.Command{
		Use:   "datasets",
		Short: "Inspect and create feedback datasets",
	}
	datasetsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List every dataset visible with the configured key",
		Run:   runDatasetsList, // Defined in cmd_datasets.go
	}
	datasetsCreateCmd = &cobra.Command{
		Use:   "create [name]",
		Short: "Create and publish a dataset with text fields and questions",
		Args:  cobra.ExactArgs(1),
		Run:   runDatasetsCreate, // Defined in cmd_datasets.go
	}

	// --- Records ---
	recordsCmd = &cobra.Command{
		Use:   "records",
		Short: "Stream or append dataset records",
	}
	recordsFetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a dataset's records and print them",
		Run:   runRecordsFetch, // Defined in cmd_records.go
	}
	recordsAddCmd = &cobra.Command{
		Use:   "add",
		Short: "Append one record (field=value pairs) to a dataset",
		Run:   runRecordsAdd, // Defined in cmd_records.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.AddCommand(datasetsCmd)
	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsCreateCmd)
	datasetsCreateCmd.Flags().StringVarP(&workspaceName, "workspace", "w", "",
		"Workspace for the new dataset (default: configured workspace)")
	datasetsCreateCmd.Flags().StringVar(&guidelines, "guidelines", "", "Annotation guidelines text")
	datasetsCreateCmd.Flags().StringSliceVar(&fieldNames, "field", nil,
		"Text field name; repeatable (e.g. --field prompt --field answer)")
	datasetsCreateCmd.Flags().StringSliceVar(&questionSpecs, "question", nil,
		"Question spec name[:rating]; repeatable (e.g. --question summary --question quality:rating)")

	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsFetchCmd)
	recordsFetchCmd.Flags().StringVarP(&datasetName, "name", "n", "", "Dataset name")
	recordsFetchCmd.Flags().StringVar(&datasetID, "id", "", "Dataset id (overrides --name)")
	recordsFetchCmd.Flags().StringVarP(&workspaceName, "workspace", "w", "",
		"Workspace holding the dataset (default: configured workspace)")
	recordsFetchCmd.Flags().IntVar(&batchSize, "batch-size", 0,
		"Records per fetched page (default: configured batch size)")
	recordsFetchCmd.Flags().IntVar(&limitRecords, "limit", 0, "Stop after this many records (0 = all)")
	recordsFetchCmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the local snapshot cache")
	recordsFetchCmd.Flags().BoolVar(&outputJSON, "json", false, "Print records as JSON lines")

	recordsCmd.AddCommand(recordsAddCmd)
	recordsAddCmd.Flags().StringVarP(&datasetName, "name", "n", "", "Dataset name")
	recordsAddCmd.Flags().StringVar(&datasetID, "id", "", "Dataset id (overrides --name)")
	recordsAddCmd.Flags().StringVarP(&workspaceName, "workspace", "w", "",
		"Workspace holding the dataset (default: configured workspace)")
	recordsAddCmd.Flags().StringSliceVarP(&recordFields, "set", "s", nil,
		"Field value as name=value; repeatable (e.g. -s text=hello -s rating=5)")
	recordsAddCmd.Flags().StringVar(&externalID, "external-id", "", "Correlation id for the record")
}

// newAPIClient builds a client from the loaded configuration.
func newAPIClient(logger *logging.Logger) *api.Client {
	client, err := api.NewClient(api.Config{
		BaseURL: config.Global.Server.Endpoint,
		APIKey:  config.Global.Server.APIKey,
		Timeout: 60 * time.Second,
		Logger:  logger.Slog(),
	})
	if err != nil {
		log.Fatalf("Error creating API client: %v", err)
	}
	return client
}

// newLogger builds the cli logger from the configured level.
func newLogger() *logging.Logger {
	return logging.New(logging.Config{
		Level:   logging.ParseLevel(config.Global.Logging.Level),
		LogDir:  config.Global.Logging.Dir,
		Service: "curio",
	})
}

// resolveWorkspace applies the configured default workspace.
func resolveWorkspace() string {
	if workspaceName != "" {
		return workspaceName
	}
	return config.Global.Defaults.Workspace
}
