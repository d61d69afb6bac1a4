package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/joshharrison/sitegraph/internal/ui"
)

// ganttWidth is the widest bar drawn; longer schedules are scaled down so
// one column covers several days.
const ganttWidth = 80

// PrintGantt writes an ASCII timeline with one bar per task.
func (r *Reporter) PrintGantt(w io.Writer) {
	p := r.Plan
	fmt.Fprintf(w, "📅 %s\n", ui.BoldCyan("Timeline"))
	fmt.Fprintln(w, ui.Cyan("════════"))
	if len(p.Tasks) == 0 {
		fmt.Fprintln(w, ui.Dim("  no tasks"))
		return
	}

	scale := 1
	if p.TotalDurationDays > ganttWidth {
		scale = (p.TotalDurationDays + ganttWidth - 1) / ganttWidth
	}
	cols := (p.TotalDurationDays + scale - 1) / scale
	if cols == 0 {
		cols = 1
	}

	idWidth := 0
	for _, t := range p.Tasks {
		if n := len([]rune(t.ID)); n > idWidth {
			idWidth = n
		}
	}

	axis := fmt.Sprintf("day 1%s%d", strings.Repeat(" ", max(cols-5-len(fmt.Sprint(p.TotalDurationDays)), 1)), p.TotalDurationDays)
	fmt.Fprintf(w, "    %s  %s\n", strings.Repeat(" ", idWidth), ui.Dim(axis))
	if scale > 1 {
		fmt.Fprintf(w, "    %s  %s\n", strings.Repeat(" ", idWidth), ui.Dim(fmt.Sprintf("(1 column = %d days)", scale)))
	}

	for _, t := range p.Tasks {
		bar := []rune(strings.Repeat("·", cols))
		if t.DurationDays == 0 {
			col := min((t.EarliestStart-1)/scale, cols-1)
			bar[col] = '◆'
		} else {
			for d := t.EarliestStart; d <= t.EarliestFinish; d++ {
				bar[(d-1)/scale] = '█'
			}
		}

		styled := ui.Trade(t.Category, string(bar))
		if t.IsCritical {
			styled = ui.BoldYellow(string(bar))
		}
		fmt.Fprintf(w, "  %s%s %s  %s\n",
			ui.CriticalMark(t.IsCritical), ui.GateMark(t.IsCheckpoint), ui.TaskID(pad(t.ID, idWidth)), styled)
	}
}

// PrintDOT writes the dependency graph in Graphviz DOT format. Critical
// tasks and the critical path's edges are drawn in red, checkpoints as
// octagons.
func (r *Reporter) PrintDOT(w io.Writer) {
	fmt.Fprintln(w, "digraph sitegraph {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	critical := make(map[string]bool)
	for _, t := range r.Plan.Tasks {
		critical[t.ID] = t.IsCritical
	}
	onPath := make(map[[2]string]bool)
	for i := 1; i < len(r.Plan.CriticalPath); i++ {
		onPath[[2]string{r.Plan.CriticalPath[i-1], r.Plan.CriticalPath[i]}] = true
	}

	ids := r.Graph.IDs()
	for _, id := range ids {
		task := r.Graph.Tasks[id]
		label := id
		if task.Name != "" {
			label = fmt.Sprintf("%s\\n%s", id, dotEscape(task.Name))
		}
		attrs := fmt.Sprintf(`label="%s"`, label)
		if pt, ok := r.Plan.Task(id); ok {
			attrs += fmt.Sprintf(`, tooltip="day %d-%d"`, pt.EarliestStart, pt.EarliestFinish)
		}
		if task.IsCheckpoint {
			attrs += ", shape=octagon"
		}
		if critical[id] {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(w, "  %q [%s];\n", id, attrs)
	}

	fmt.Fprintln(w)

	for _, from := range ids {
		for _, to := range r.Graph.Adj[from] {
			style := ""
			if onPath[[2]string{from, to}] {
				style = ` [color=red, penwidth=2]`
			}
			fmt.Fprintf(w, "  %q -> %q%s;\n", from, to, style)
		}
	}

	fmt.Fprintln(w, "}")
}

func dotEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
