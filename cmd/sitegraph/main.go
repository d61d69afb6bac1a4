package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/joshharrison/sitegraph/internal/config"
	"github.com/joshharrison/sitegraph/internal/cost"
	"github.com/joshharrison/sitegraph/internal/graph"
	"github.com/joshharrison/sitegraph/internal/intake"
	"github.com/joshharrison/sitegraph/internal/log"
	"github.com/joshharrison/sitegraph/internal/planner"
	"github.com/joshharrison/sitegraph/internal/reporter"
	"github.com/joshharrison/sitegraph/internal/ui"
)

var (
	flagConfig    string
	flagRegions   string
	flagLogLevel  string
	flagLogFormat string
	flagCategory  []string
	flagNoColor   bool
	flagFile      string
	flagRegion    string
	flagJSON      bool
	flagOutput    string
	flagParallel  int
	flagFormat    string
	flagByTask    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.BoldRed("error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sitegraph",
		Short: "Schedule construction workflows and estimate their cost",
		Long: `Sitegraph reads a project's tasks and dependencies, computes the earliest
timeline and critical path, reports inspection gates and work that can run
in parallel, and rolls up regionally adjusted costs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagNoColor {
				ui.SetEnabled(false)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.PrintLogo(cmd.ErrOrStderr())
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default "+config.DefaultPath+" if present)")
	pf.StringVar(&flagRegions, "regions", "", "Region catalog YAML (overrides regions_file)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")
	pf.StringSliceVar(&flagCategory, "category", nil, "Only schedule tasks in these categories")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.SetGlobalNormalizationFunc(normalizeFlag)

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(criticalCmd())
	rootCmd.AddCommand(gatesCmd())
	rootCmd.AddCommand(costCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(regionsCmd())

	return rootCmd
}

// normalizeFlag accepts snake_case spellings and a few aliases.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	switch name {
	case "input":
		name = "file"
	case "region-id":
		name = "region"
	case "regions-file":
		name = "regions"
	}
	return pflag.NormalizedName(name)
}

// addInputFlags registers the flags shared by every command that reads a
// project.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagFile, "file", "f", "-", "Project JSON file (- for stdin)")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
}

func addPlanFlags(cmd *cobra.Command) {
	addInputFlags(cmd)
	cmd.Flags().StringVar(&flagRegion, "region", "", "Pricing region (default: input regionId, then config default_region)")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "Workers for the layered forward pass (overrides parallel_workers)")
}

// env is the per-invocation runtime assembled from config and flags.
type env struct {
	cfg     config.Config
	logger  *slog.Logger
	catalog *cost.Catalog
}

func setup(cmd *cobra.Command) (*env, error) {
	flags := cmd.Flags()

	path := flagConfig
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, config.ErrNotFound) || flags.Changed("config") {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = flagLogFormat
	}
	if flags.Changed("regions") {
		cfg.RegionsFile = flagRegions
	}
	if flags.Changed("parallel") {
		cfg.ParallelWorkers = flagParallel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	format, _ := log.ParseFormat(cfg.Log.Format)
	logger, err := log.New(log.Config{Level: cfg.Log.Level, Format: format, Output: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("load regions: %w", err)
	}
	logger.Debug("configured", "config", path, "regions", len(catalog.Regions()), "workers", cfg.ParallelWorkers)

	return &env{cfg: cfg, logger: logger, catalog: catalog}, nil
}

// loadGraph decodes the input document and builds the validated graph,
// applying the --category filter. stdin is read when --file is "-".
func loadGraph(e *env, stdin io.Reader) (*graph.WorkflowGraph, *intake.Request, error) {
	var (
		req *intake.Request
		err error
	)
	if flagFile == "-" {
		req, err = intake.Decode(stdin)
	} else {
		req, err = intake.DecodeFile(flagFile)
	}
	if err != nil {
		return nil, nil, err
	}

	g, err := graph.Build(req.Tasks)
	if err != nil {
		return nil, nil, fmt.Errorf("build task graph: %w", err)
	}

	if len(flagCategory) > 0 {
		g, err = applyCategoryFilter(g, flagCategory)
		if err != nil {
			return nil, nil, fmt.Errorf("apply filter: %w", err)
		}
	}

	e.logger.Debug("graph loaded", "tasks", g.TaskCount(), "roots", len(g.Roots), "leaves", len(g.Leaves))
	return g, req, nil
}

func applyCategoryFilter(g *graph.WorkflowGraph, names []string) (*graph.WorkflowGraph, error) {
	keep := make(map[graph.Category]bool, len(names))
	for _, n := range names {
		c := graph.Category(strings.TrimSpace(n))
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q", n)
		}
		keep[c] = true
	}
	return g.Filter(func(t *graph.Task) bool { return keep[t.Category] })
}

// regionFor picks the pricing region: --region, then the input's regionId,
// then the configured default.
func regionFor(e *env, req *intake.Request) string {
	switch {
	case flagRegion != "":
		return flagRegion
	case req.RegionID != "":
		return req.RegionID
	default:
		e.logger.Info("no region given, using default", "region", e.cfg.DefaultRegion)
		return e.cfg.DefaultRegion
	}
}

// buildPlan is shared logic for every command that needs a schedule.
func buildPlan(cmd *cobra.Command) (*planner.Plan, *graph.WorkflowGraph, error) {
	e, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	g, req, err := loadGraph(e, cmd.InOrStdin())
	if err != nil {
		return nil, nil, err
	}

	plan, err := planner.Generate(cmd.Context(), g, planner.PlanConfig{
		Catalog:           e.catalog,
		RegionID:          regionFor(e, req),
		ParallelThreshold: e.cfg.ParallelThreshold,
		ParallelWorkers:   e.cfg.ParallelWorkers,
		Logger:            e.logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("generate plan: %w", err)
	}
	return plan, g, nil
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Compute the full schedule, gates, parallel work and costs",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, g, err := buildPlan(cmd)
			if err != nil {
				return err
			}
			rpt := reporter.New(plan, g)

			if flagOutput != "" {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				if err := os.WriteFile(flagOutput, data, 0644); err != nil {
					return fmt.Errorf("write plan: %w", err)
				}
			}
			if flagJSON {
				return outputJSON(cmd.OutOrStdout(), plan)
			}
			rpt.PrintPlan(cmd.OutOrStdout())
			return nil
		},
	}

	addPlanFlags(cmd)
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Also save the plan JSON to this file")

	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a project's task graph without scheduling it",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			g, _, err := loadGraph(e, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(cmd.OutOrStdout(), map[string]any{
					"valid":       true,
					"tasks":       g.TaskCount(),
					"checkpoints": g.Checkpoints(),
					"roots":       g.Roots,
					"leaves":      g.Leaves,
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %d tasks, %d checkpoints\n", ui.BoldGreen("✓ valid:"), g.TaskCount(), len(g.Checkpoints()))
			fmt.Fprintf(w, "  %s %s\n", ui.Dim("starts:"), strings.Join(g.Roots, ", "))
			fmt.Fprintf(w, "  %s %s\n", ui.Dim("ends:  "), strings.Join(g.Leaves, ", "))
			return nil
		},
	}

	addInputFlags(cmd)
	return cmd
}

func criticalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "critical",
		Short: "Print the critical path",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, g, err := buildPlan(cmd)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(cmd.OutOrStdout(), map[string]any{
					"criticalPath":      plan.CriticalPath,
					"totalDurationDays": plan.TotalDurationDays,
				})
			}
			reporter.New(plan, g).PrintCritical(cmd.OutOrStdout())
			return nil
		},
	}

	addPlanFlags(cmd)
	return cmd
}

func gatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gates",
		Short: "Report inspection checkpoints and the work they gate",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, g, err := buildPlan(cmd)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(cmd.OutOrStdout(), plan.Checkpoints)
			}
			reporter.New(plan, g).PrintGates(cmd.OutOrStdout())
			return nil
		},
	}

	addPlanFlags(cmd)
	return cmd
}

func costCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Roll up regionally adjusted costs",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, g, err := buildPlan(cmd)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(cmd.OutOrStdout(), map[string]any{
					"regionId": plan.RegionID,
					"costs":    plan.Costs,
				})
			}
			rpt := reporter.New(plan, g)
			if flagByTask {
				rpt.PrintCostDetail(cmd.OutOrStdout())
			} else {
				rpt.PrintCostSummary(cmd.OutOrStdout())
			}
			return nil
		},
	}

	addPlanFlags(cmd)
	cmd.Flags().BoolVar(&flagByTask, "by-task", false, "One row per task instead of per category")
	return cmd
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Print the schedule as an ASCII timeline or Graphviz DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch flagFormat {
			case "ascii", "dot":
			default:
				return fmt.Errorf("unsupported format %q (use ascii or dot)", flagFormat)
			}

			plan, g, err := buildPlan(cmd)
			if err != nil {
				return err
			}
			rpt := reporter.New(plan, g)
			if flagFormat == "dot" {
				rpt.PrintDOT(cmd.OutOrStdout())
				return nil
			}
			rpt.PrintGantt(cmd.OutOrStdout())
			return nil
		},
	}

	addPlanFlags(cmd)
	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")
	return cmd
}

func regionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List pricing regions in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			regions := e.catalog.Regions()
			if flagJSON {
				return outputJSON(cmd.OutOrStdout(), regions)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tLABOR\tMATERIALS\tPERMITS")
			fmt.Fprintln(w, "--\t----\t-----\t---------\t-------")
			for _, r := range regions {
				name := r.Name
				if name == "" {
					name = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\n", r.ID, name, r.LaborMultiplier, r.MaterialMultiplier, r.PermitMultiplier)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	return cmd
}

// --- Output helpers ---

func outputJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
