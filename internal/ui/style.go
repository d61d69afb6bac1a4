package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// SetEnabled forces colors on or off, overriding terminal detection.
func SetEnabled(on bool) {
	color.NoColor = !on
}

// PrintLogo renders the sitegraph banner.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	beams := color.New(color.FgYellow)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "      /\\")
	frame.Fprintln(w, "     /  \\      ")
	beams.Fprintln(w, "    /____\\   |==|==|==|")
	beams.Fprintln(w, "    |    |   |  |  |  |")
	brand.Fprintln(w, "    S I T E G R A P H")
	tag.Fprintln(w, "    Construction workflow scheduling")
	fmt.Fprintln(w)
}

// tradeColors is a palette of distinct colors for telling trades apart.
var tradeColors = []func(a ...interface{}) string{
	Magenta,
	Cyan,
	Yellow,
	Green,
	color.New(color.FgHiBlue).SprintFunc(),
	color.New(color.FgHiRed).SprintFunc(),
}

// tradeColorIndex hashes a category name to a palette index.
func tradeColorIndex(category string) int {
	var h uint32
	for _, c := range category {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(tradeColors)))
}

// Trade returns s colored by category, so every task of one trade shares
// a color.
func Trade(category, s string) string {
	return tradeColors[tradeColorIndex(category)](s)
}

// TaskID returns a bold task id.
func TaskID(id string) string {
	return BoldMagenta(id)
}

// CriticalMark returns the marker for critical tasks, or padding.
func CriticalMark(critical bool) string {
	if critical {
		return BoldYellow("⚡")
	}
	return " "
}

// GateMark returns the marker for checkpoint tasks, or padding.
func GateMark(checkpoint bool) string {
	if checkpoint {
		return BoldRed("⛔")
	}
	return " "
}

// CategoryIcon returns a short icon for a task category.
func CategoryIcon(category string) string {
	switch category {
	case "demolition":
		return "🔨"
	case "site_prep":
		return "🚧"
	case "framing":
		return "🪵"
	case "electrical":
		return "🔌"
	case "plumbing":
		return "🚰"
	case "hvac":
		return "🌬"
	case "inspection":
		return "🔍"
	case "painting":
		return "🎨"
	case "cleanup":
		return "🧹"
	default:
		return "•"
	}
}

// Money formats an amount rounded to cents.
func Money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
