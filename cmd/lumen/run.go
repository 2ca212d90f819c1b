package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lumen/internal/config"
	"lumen/internal/diag"
	"lumen/internal/diagfmt"
	"lumen/internal/dump"
	"lumen/internal/ir"
	"lumen/internal/irfile"
	"lumen/internal/passes"
	"lumen/internal/pipeline"
)

// errFailed is returned after failures were already printed.
var errFailed = errors.New("compilation failed")

func errorsReported(err error) bool { return errors.Is(err, errFailed) }

var runCmd = &cobra.Command{
	Use:   "run [flags] <tree.lir>...",
	Short: "Run the configured passes over tree files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExecution,
}

func init() {
	runCmd.Flags().String("out", "", "directory for rewritten trees (<unit>.out.lir)")
	runCmd.Flags().String("format", "text", "diagnostic output format (text|json)")
	runCmd.Flags().Int("jobs", 0, "max parallel units (0 = GOMAXPROCS)")
	runCmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
	runCmd.Flags().StringSlice("passes", nil, "passes to run, overriding [pipeline].passes")
	runCmd.Flags().Bool("refresh-stale", false, "rerun stale passes at the end")
	runCmd.Flags().Bool("check-invariants", false, "validate the final trees")
	runCmd.Flags().String("dump-dir", "", "write per-step tree dumps under this directory")
	runCmd.Flags().String("dump-format", "", "dump format (text|msgpack)")
	runCmd.Flags().Bool("strict", false, "reject tree files with unknown metadata")
}

func runExecution(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cmd, cfg)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}
	uiValue, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	strict, _ := cmd.Flags().GetBool("strict")
	outDir, _ := cmd.Flags().GetString("out")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")

	inputs, err := readInputs(args, strict)
	if err != nil {
		return err
	}

	p, err := pipeline.New(opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var results []pipeline.Result
	if shouldUseTUI(mode) && format == "text" {
		names := make([]string, len(inputs))
		for i, in := range inputs {
			names[i] = in.Unit.Name
		}
		results, err = runWithUI(ctx, "lumen run", names, p, inputs)
	} else {
		results, err = p.RunAll(ctx, inputs)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := writeJSON(out, results); err != nil {
			return err
		}
	} else {
		writeText(out, cmd.ErrOrStderr(), results, quiet)
	}

	if outDir != "" {
		for _, r := range results {
			if r.Err != nil || r.Root == nil {
				continue
			}
			path := filepath.Join(outDir, r.Unit.Name+".out.lir")
			if err := irfile.WriteFile(path, r.Unit, r.Root); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
	}

	if timings {
		fmt.Fprint(cmd.ErrOrStderr(), pipeline.Timing(results).Summary())
	}
	if pipeline.Failed(results) {
		return errFailed
	}
	return nil
}

// pipelineOptions merges the configuration with command-line overrides.
func pipelineOptions(cmd *cobra.Command, cfg *config.Config) (pipeline.Options, error) {
	flags := cmd.Flags()
	ids, err := cfg.PassIDs()
	if err != nil {
		return pipeline.Options{}, err
	}
	if flags.Changed("passes") {
		names, _ := flags.GetStringSlice("passes")
		if ids, err = config.ParsePasses(names); err != nil {
			return pipeline.Options{}, err
		}
	}
	opts := pipeline.Options{
		Passes:          ids,
		RefreshStale:    cfg.Pipeline.RefreshStale,
		MaxDiagnostics:  cfg.Pipeline.MaxDiagnostics,
		Jobs:            cfg.Pipeline.Jobs,
		CheckInvariants: cfg.Pipeline.CheckInvariants,
	}
	if flags.Changed("refresh-stale") {
		opts.RefreshStale, _ = flags.GetBool("refresh-stale")
	}
	if flags.Changed("check-invariants") {
		opts.CheckInvariants, _ = flags.GetBool("check-invariants")
	}
	if flags.Changed("jobs") {
		opts.Jobs, _ = flags.GetInt("jobs")
	}
	if root := cmd.Root().PersistentFlags(); root.Changed("max-diagnostics") {
		opts.MaxDiagnostics, _ = root.GetInt("max-diagnostics")
	}

	dumpDir, dumpFormat := cfg.Dump.Dir, cfg.Dump.Format
	if flags.Changed("dump-dir") {
		dumpDir, _ = flags.GetString("dump-dir")
	}
	if flags.Changed("dump-format") {
		dumpFormat, _ = flags.GetString("dump-format")
	}
	if dumpDir != "" {
		opts.Dumper = dump.Filter(dump.Dir{
			Root:   dumpDir,
			Format: dumpFormat,
			Opts:   ir.PrintOptions{Locations: true, IDs: true, Metadata: true, Diagnostics: true},
		}, cfg.Dump.Passes)
	}
	return opts, nil
}

func readInputs(paths []string, strict bool) ([]pipeline.Input, error) {
	codec := irfile.Codec{Facts: passes.FactTypes(), Strict: strict}
	inputs := make([]pipeline.Input, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		u, root, err := codec.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if u.Name == "" {
			u.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if err := checkUnitName(u.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[u.Name]; dup {
			return nil, fmt.Errorf("%s and %s both contain unit %q", prev, path, u.Name)
		}
		seen[u.Name] = path
		inputs = append(inputs, pipeline.Input{Unit: u, Root: root})
	}
	return inputs, nil
}

// checkUnitName rejects names that cannot be used as a plain file name
// under --out.
func checkUnitName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("unit name %q is not a plain file name", name)
	}
	return nil
}

// writeJSON prints one JSON object per line: diagnostics, then unit errors.
func writeJSON(w io.Writer, results []pipeline.Result) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := diagfmt.JSON(w, r.Unit.Name, r.Diagnostics, diagfmt.JSONOpts{Lines: true}); err != nil {
			return err
		}
		if r.Err != nil {
			if err := enc.Encode(jsonFailure{Unit: r.Unit.Name, Error: r.Err.Error()}); err != nil {
				return err
			}
		}
	}
	return nil
}

type jsonFailure struct {
	Unit  string `json:"unit"`
	Error string `json:"error"`
}

func writeText(out, errOut io.Writer, results []pipeline.Result, quiet bool) {
	warnings, failures := 0, 0
	opts := diagfmt.TextOpts{Color: !color.NoColor}
	for _, r := range results {
		for _, d := range r.Diagnostics.Items() {
			if d.Severity == diag.SevWarning {
				warnings++
			}
		}
		_ = diagfmt.Text(out, r.Unit.Name, r.Diagnostics, opts)
		if r.Err != nil {
			failures++
			fmt.Fprintf(errOut, "%s %v\n", color.RedString("internal error:"), r.Err)
		}
	}
	if quiet {
		return
	}
	summary := fmt.Sprintf("%d unit(s), %d warning(s), %d failure(s)", len(results), warnings, failures)
	switch {
	case failures > 0:
		summary = color.RedString(summary)
	case warnings > 0:
		summary = color.YellowString(summary)
	default:
		summary = color.GreenString(summary)
	}
	fmt.Fprintln(errOut, summary)
}
