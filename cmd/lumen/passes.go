package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"lumen/internal/pass"
	"lumen/internal/pipeline"
)

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "Show the resolved pass schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		opts, err := pipelineOptions(cmd, cfg)
		if err != nil {
			return err
		}
		p, err := pipeline.New(opts)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "text":
			printSchedule(cmd.OutOrStdout(), p)
			return nil
		case "json":
			return printScheduleJSON(cmd.OutOrStdout(), p)
		}
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	},
}

func init() {
	passesCmd.Flags().String("format", "text", "output format (text|json)")
	passesCmd.Flags().StringSlice("passes", nil, "passes to schedule, overriding [pipeline].passes")
	passesCmd.Flags().Bool("refresh-stale", false, "rerun stale passes at the end")
}

func names(ids []pass.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func printSchedule(w io.Writer, p *pipeline.Pipeline) {
	plan := p.Plan()
	fmt.Fprintf(w, "order:    %s\n", strings.Join(names(plan.Order), " -> "))
	for i, batch := range plan.Batches {
		fmt.Fprintf(w, "batch %d:  %s\n", i+1, strings.Join(names(batch), ", "))
	}
	if len(plan.External) > 0 {
		fmt.Fprintf(w, "external: %s\n", strings.Join(names(plan.External), ", "))
	}
	fmt.Fprintln(w, "steps:")
	for i, s := range p.Steps() {
		kind := "whole"
		if s.IsMini() {
			kind = "mini"
		}
		fmt.Fprintf(w, "  %2d. %-5s %s\n", i+1, kind, s)
	}
}

type scheduleJSON struct {
	Order    []string   `json:"order"`
	Batches  [][]string `json:"batches"`
	External []string   `json:"external,omitempty"`
	Steps    []stepJSON `json:"steps"`
}

type stepJSON struct {
	Name   string   `json:"name"`
	Passes []string `json:"passes"`
	Mini   bool     `json:"mini"`
	Rerun  bool     `json:"rerun,omitempty"`
}

func printScheduleJSON(w io.Writer, p *pipeline.Pipeline) error {
	plan := p.Plan()
	out := scheduleJSON{Order: names(plan.Order), External: names(plan.External)}
	for _, b := range plan.Batches {
		out.Batches = append(out.Batches, names(b))
	}
	for _, s := range p.Steps() {
		out.Steps = append(out.Steps, stepJSON{Name: s.Name(), Passes: names(s.Passes), Mini: s.IsMini(), Rerun: s.Rerun})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
