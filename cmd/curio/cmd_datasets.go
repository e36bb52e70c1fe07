// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/curiodata/curio-go/feedback"
)

func runDatasetsList(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Close()
	client := newAPIClient(logger)
	ctx := context.Background()

	workspaces, err := client.ListWorkspaces(ctx)
	if err != nil {
		log.Fatalf("Error listing workspaces: %v", err)
	}
	wsNames := make(map[string]string, len(workspaces))
	for _, ws := range workspaces {
		wsNames[ws.ID] = ws.Name
	}

	datasets, err := client.ListDatasets(ctx)
	if err != nil {
		log.Fatalf("Error listing datasets: %v", err)
	}
	if len(datasets) == 0 {
		fmt.Println("No datasets found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tWORKSPACE\tID")
	for _, ds := range datasets {
		name := wsNames[ds.WorkspaceID]
		if name == "" {
			name = ds.WorkspaceID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", ds.Name, name, ds.ID)
	}
	_ = w.Flush()
}

func runDatasetsCreate(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Close()
	client := newAPIClient(logger)
	ctx := context.Background()

	req := feedback.CreateRequest{
		Name:       args[0],
		Workspace:  resolveWorkspace(),
		Guidelines: guidelines,
	}
	for _, name := range fieldNames {
		req.Fields = append(req.Fields, feedback.TextField(name))
	}
	for _, spec := range questionSpecs {
		q, err := parseQuestionSpec(spec)
		if err != nil {
			log.Fatalf("Error in --question %q: %v", spec, err)
		}
		req.Questions = append(req.Questions, q)
	}

	ds, err := feedback.Create(ctx, client, req, feedback.OpenOptions{Logger: logger})
	if err != nil {
		log.Fatalf("Error creating dataset: %v", err)
	}
	fmt.Printf("Created dataset %q (id %s) in workspace %q\n", ds.Name(), ds.ID(), req.Workspace)
}

// parseQuestionSpec turns "name" into a text question and "name:rating"
// into a 1-5 rating question.
func parseQuestionSpec(spec string) (feedback.QuestionSchema, error) {
	name, kind, found := strings.Cut(spec, ":")
	if name == "" {
		return feedback.QuestionSchema{}, fmt.Errorf("question name is empty")
	}
	if !found || kind == "text" {
		return feedback.TextQuestion(name), nil
	}
	if kind == "rating" {
		return feedback.RatingQuestion(name, []int{1, 2, 3, 4, 5}), nil
	}
	return feedback.QuestionSchema{}, fmt.Errorf("unknown question kind %q (want text or rating)", kind)
}
