package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/joshharrison/sitegraph/internal/cost"
	"github.com/joshharrison/sitegraph/internal/graph"
	"github.com/joshharrison/sitegraph/internal/planner"
	"github.com/joshharrison/sitegraph/internal/ui"
)

const maxNameWidth = 40

// Reporter renders a plan for the terminal and for export.
type Reporter struct {
	Plan  *planner.Plan
	Graph *graph.WorkflowGraph
}

// New creates a new Reporter.
func New(plan *planner.Plan, g *graph.WorkflowGraph) *Reporter {
	return &Reporter{Plan: plan, Graph: g}
}

// JSON returns the plan's output document.
func (r *Reporter) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Plan, "", "  ")
}

// PrintPlan writes the full schedule report: header, start waves, gates,
// parallel groups and the cost summary.
func (r *Reporter) PrintPlan(w io.Writer) {
	p := r.Plan

	fmt.Fprintf(w, "🏗  %s\n", ui.BoldCyan("Sitegraph Schedule"))
	fmt.Fprintln(w, ui.Cyan("══════════════════════"))
	fmt.Fprintf(w, "Plan:      %s\n", ui.Dim(p.ID))
	fmt.Fprintf(w, "Region:    %s\n", ui.Bold(p.RegionID))
	fmt.Fprintf(w, "Tasks:     %s (%d checkpoints)\n", ui.Bold(len(p.Tasks)), len(p.Checkpoints))
	fmt.Fprintf(w, "Duration:  %s\n", ui.Bold(days(p.TotalDurationDays)))
	r.printCriticalLine(w)
	fmt.Fprintln(w)

	for _, wave := range p.Waves {
		fmt.Fprintf(w, "🌊 %s %d (%d tasks)\n", ui.BoldWhite("Day"), wave.StartDay, len(wave.TaskIDs))
		for _, id := range wave.TaskIDs {
			if t, ok := p.Task(id); ok {
				printTaskLine(w, t)
			}
		}
		fmt.Fprintln(w)
	}

	if len(p.Checkpoints) > 0 {
		r.PrintGates(w)
		fmt.Fprintln(w)
	}
	if len(p.ParallelGroups) > 0 {
		r.PrintParallel(w)
		fmt.Fprintln(w)
	}
	r.PrintCostSummary(w)
}

func (r *Reporter) printCriticalLine(w io.Writer) {
	if len(r.Plan.CriticalPath) == 0 {
		fmt.Fprintf(w, "⚡ Critical path: %s\n", ui.Dim("none"))
		return
	}
	fmt.Fprintf(w, "⚡ Critical path: %s (%d tasks, %s)\n",
		ui.BoldYellow(strings.Join(r.Plan.CriticalPath, " → ")),
		len(r.Plan.CriticalPath), days(r.Plan.TotalDurationDays))
}

func printTaskLine(w io.Writer, t planner.PlannedTask) {
	window := fmt.Sprintf("[day %d-%d]", t.EarliestStart, t.EarliestFinish)
	if t.DurationDays == 0 {
		window = fmt.Sprintf("[milestone day %d]", t.EarliestStart)
	}
	slack := ""
	if !t.IsCritical {
		slack = ui.Dim(fmt.Sprintf(" slack %d", t.Slack))
	}
	fmt.Fprintf(w, "  %s%s %s %s  %s %s%s\n",
		ui.CriticalMark(t.IsCritical),
		ui.GateMark(t.IsCheckpoint),
		ui.CategoryIcon(t.Category),
		ui.TaskID(t.ID),
		truncate(t.Name, maxNameWidth),
		ui.Dim(window),
		slack)
}

// PrintCritical writes the critical path with each task's window.
func (r *Reporter) PrintCritical(w io.Writer) {
	fmt.Fprintf(w, "⚡ %s\n", ui.BoldCyan("Critical Path"))
	fmt.Fprintln(w, ui.Cyan("═════════════"))
	if len(r.Plan.CriticalPath) == 0 {
		fmt.Fprintln(w, ui.Dim("  no tasks"))
		return
	}
	for i, id := range r.Plan.CriticalPath {
		t, ok := r.Plan.Task(id)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %2d. %s  %s %s\n", i+1, ui.TaskID(id), truncate(t.Name, maxNameWidth),
			ui.Dim(fmt.Sprintf("[day %d-%d]", t.EarliestStart, t.EarliestFinish)))
	}
	fmt.Fprintf(w, "Total: %s\n", ui.Bold(days(r.Plan.TotalDurationDays)))
}

// PrintGates writes the checkpoint report.
func (r *Reporter) PrintGates(w io.Writer) {
	fmt.Fprintf(w, "⛔ %s\n", ui.BoldCyan("Inspection Gates"))
	fmt.Fprintln(w, ui.Cyan("════════════════"))
	if len(r.Plan.Checkpoints) == 0 {
		fmt.Fprintln(w, ui.Dim("  no checkpoints"))
		return
	}
	for _, cp := range r.Plan.Checkpoints {
		fmt.Fprintf(w, "  %s %s  %s %s\n",
			ui.CriticalMark(cp.IsCritical),
			ui.TaskID(cp.ID),
			truncate(cp.Name, maxNameWidth),
			ui.Dim(fmt.Sprintf("[day %d-%d]", cp.EarliestStart, cp.EarliestFinish)))
		fmt.Fprintf(w, "      %s %s\n", ui.Dim("waits on:"), list(cp.Prerequisites))
		if len(cp.OpenTrades) > 0 {
			fmt.Fprintf(w, "      %s %s\n", ui.Dim("trades:  "), strings.Join(cp.OpenTrades, ", "))
		}
		fmt.Fprintf(w, "      %s %s\n", ui.Dim("blocks:  "), list(cp.GatedTasks))
	}
}

// PrintParallel writes the parallel groups.
func (r *Reporter) PrintParallel(w io.Writer) {
	fmt.Fprintf(w, "🔀 %s\n", ui.BoldCyan("Parallel Work"))
	fmt.Fprintln(w, ui.Cyan("═════════════"))
	for _, grp := range r.Plan.ParallelGroups {
		span := fmt.Sprintf("day %d", grp.OverlapStartDay)
		if grp.OverlapEndDay != grp.OverlapStartDay {
			span = fmt.Sprintf("days %d-%d", grp.OverlapStartDay, grp.OverlapEndDay)
		}
		fmt.Fprintf(w, "  %s  %s\n", ui.Dim(pad(span, 12)), strings.Join(grp.TaskIDs, ", "))
	}
}

// PrintCostSummary writes totals by category and overall.
func (r *Reporter) PrintCostSummary(w io.Writer) {
	fmt.Fprintf(w, "💰 %s %s\n", ui.BoldCyan("Cost Estimate"), ui.Dim("("+r.Plan.RegionID+")"))
	fmt.Fprintln(w, ui.Cyan("═════════════"))

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CATEGORY\tLABOR\tMATERIALS\tEQUIPMENT\tPERMITS\tTOTAL\t")
	for _, c := range graph.Categories {
		e, ok := r.Plan.Costs.ByCategory[string(c)]
		if !ok {
			continue
		}
		costRow(tw, string(c), e)
	}
	costRow(tw, "total", r.Plan.Costs.Total)
	tw.Flush()
}

// PrintCostDetail writes one row per task followed by the total.
func (r *Reporter) PrintCostDetail(w io.Writer) {
	fmt.Fprintf(w, "💰 %s %s\n", ui.BoldCyan("Cost Estimate"), ui.Dim("("+r.Plan.RegionID+")"))
	fmt.Fprintln(w, ui.Cyan("═════════════"))

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TASK\tLABOR\tMATERIALS\tEQUIPMENT\tPERMITS\tTOTAL\t")
	for _, t := range r.Plan.Tasks {
		costRow(tw, t.ID, r.Plan.Costs.PerTask[t.ID])
	}
	costRow(tw, "total", r.Plan.Costs.Total)
	tw.Flush()
}

func costRow(w io.Writer, label string, e cost.Estimate) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n", label,
		ui.Money(e.Labor), ui.Money(e.Materials), ui.Money(e.Equipment), ui.Money(e.Permits), ui.Money(e.Total))
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func list(ids []string) string {
	if len(ids) == 0 {
		return ui.Dim("-")
	}
	return strings.Join(ids, ", ")
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// pad right-pads s to n runes so it can be colored after alignment.
func pad(s string, n int) string {
	if l := len([]rune(s)); l < n {
		return s + strings.Repeat(" ", n-l)
	}
	return s
}
