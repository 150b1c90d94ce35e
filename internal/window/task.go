package window

import "fmt"

// State is the lifecycle state of a DownloadTask.
type State int

// Task states. Transitions only move forward, except Downloading may fall
// back to Pending when the whole window is re-driven by a retry.
const (
	Pending State = iota
	Downloading
	Renamed
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Downloading:
		return "downloading"
	case Renamed:
		return "renamed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Task tracks the export of one window.
type Task struct {
	Window         Month
	TargetFilename string
	State          State
	Attempts       int
}

// NewTask creates a pending task for w.
func NewTask(w Month) *Task {
	return &Task{
		Window:         w,
		TargetFilename: w.Filename(),
		State:          Pending,
	}
}

// Transition moves the task to next, rejecting moves that would undo a
// finished task.
func (t *Task) Transition(next State) error {
	if !t.canTransition(next) {
		return fmt.Errorf("task %s: invalid transition %s -> %s", t.TargetFilename, t.State, next)
	}
	t.State = next
	return nil
}

func (t *Task) canTransition(next State) bool {
	switch t.State {
	case Pending:
		return next == Downloading || next == Failed
	case Downloading:
		return next == Pending || next == Renamed || next == Failed
	default:
		return false
	}
}

// Done reports whether the task reached a terminal state.
func (t *Task) Done() bool {
	return t.State == Renamed || t.State == Failed
}
