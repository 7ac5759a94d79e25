// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/pulseboard/internal/engine"
	"github.com/tomtom215/pulseboard/internal/ingest"
	"github.com/tomtom215/pulseboard/internal/records"
	"github.com/tomtom215/pulseboard/internal/registry"
)

const defaultMaxRecords = 1000

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kpicalc",
		Short:        "Validate and evaluate Pulseboard dashboard definitions",
		SilenceUsage: true,
	}
	root.AddCommand(newValidateCmd(), newComputeCmd(), newSampleCmd(), newDefaultsCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [definitions]",
		Short: "Check a definitions file and report every problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadFile(args[0])
			if err != nil {
				var ce *registry.ConfigError
				if errors.As(err, &ce) {
					for _, p := range ce.Problems {
						fmt.Fprintln(cmd.ErrOrStderr(), p.String())
					}
				}
				return err
			}
			kpis, charts, filters := reg.Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d KPIs, %d charts, %d filters\n", args[0], kpis, charts, filters)
			return nil
		},
	}
}

func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the built-in definitions as a starting point for a definitions file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(registry.DefaultDocument())
			return err
		},
	}
}

type computeOptions struct {
	definitions string
	selection   string
	maxRecords  int
	sheet       string
	pretty      bool
}

func newComputeCmd() *cobra.Command {
	var opts computeOptions
	cmd := &cobra.Command{
		Use:   "compute [data-file]",
		Short: "Evaluate every KPI and chart over a JSON, CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.definitions, "definitions", "d", "", "Definitions file (default: built-in definitions)")
	cmd.Flags().StringVarP(&opts.selection, "selection", "s", "", `Filter selection as JSON, e.g. {"region":{"values":["North"]}}`)
	cmd.Flags().IntVar(&opts.maxRecords, "max-records", defaultMaxRecords, "Keep only the most recent N records")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "XLSX worksheet (default: first sheet)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func runCompute(w io.Writer, path string, opts computeOptions) error {
	if opts.maxRecords <= 0 {
		return fmt.Errorf("max-records must be positive, got %d", opts.maxRecords)
	}

	reg := registry.Default()
	if opts.definitions != "" {
		var err error
		if reg, err = registry.LoadFile(opts.definitions); err != nil {
			return err
		}
	}

	var sel engine.Selection
	if opts.selection != "" {
		if err := json.Unmarshal([]byte(opts.selection), &sel); err != nil {
			return fmt.Errorf("invalid selection: %w", err)
		}
	}

	format, err := ingest.FormatFromName(filepath.Base(path))
	if err != nil {
		return err
	}
	f, err := os.Open(path) //nolint:gosec // path is a command-line argument
	if err != nil {
		return err
	}
	defer f.Close()

	batch, err := ingest.Decode(format, f, ingest.Options{Sheet: opts.sheet})
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	store := records.NewStore(opts.maxRecords)
	store.Replace(batch.Records)

	res := engine.Evaluate(store.Snapshot(), reg, sel)
	return writeJSON(w, struct {
		Report ingest.Report `json:"report"`
		Result engine.Result `json:"result"`
	}{batch.Report, res}, opts.pretty)
}

func newSampleCmd() *cobra.Command {
	var (
		n      int
		seed   uint64
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print generated sales records as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n <= 0 {
				return fmt.Errorf("records must be positive, got %d", n)
			}
			return writeJSON(cmd.OutOrStdout(), ingest.SampleRecords(n, seed), pretty)
		},
	}
	cmd.Flags().IntVarP(&n, "records", "n", 100, "Number of records")
	cmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "Random seed")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
