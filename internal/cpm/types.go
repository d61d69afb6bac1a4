package cpm

// Result is the timeline of one graph. Nothing in it points back into the
// graph, so a Result can be kept after the graph is discarded.
type Result struct {
	Tasks         map[string]*TaskSchedule
	TopoOrder     []string
	TotalDuration int      // last working day; 0 for an empty graph
	CriticalPath  []string // chronological
	Waves         []Wave
}

// TaskSchedule is one task's position on the timeline. Days are 1-indexed
// from project start and inclusive; a zero-duration task has EF == ES-1.
type TaskSchedule struct {
	TaskID string

	ES int
	EF int
	LS int
	LF int

	Slack      int  // LS - ES
	IsCritical bool // Slack == 0
	Wave       int  // index into Result.Waves
}

// Window returns the inclusive day range the task occupies. ok is false for
// zero-duration tasks, which occupy no day.
func (ts *TaskSchedule) Window() (start, end int, ok bool) {
	return ts.ES, ts.EF, ts.EF >= ts.ES
}

// Wave is the set of tasks starting on one day.
type Wave struct {
	Index      int
	StartDay   int
	TaskIDs    []string // critical tasks first, then by id
	IsCritical bool     // at least one member is critical
}
