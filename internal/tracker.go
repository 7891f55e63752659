package internal

// Tracker holds the watcher currently collecting dependencies.
// There is only one active target at a time; nested evaluations push the
// previous occupant and restore it when they are done.
type Tracker struct {
	target *Watcher

	// previous occupants of the target slot, innermost last
	stack []*Watcher
}

func NewTracker() *Tracker {
	return &Tracker{
		stack: make([]*Watcher, 0, 8),
	}
}

// Target returns the watcher collecting dependencies, or nil if reads are not tracked.
func (t *Tracker) Target() *Watcher {
	return t.target
}

// Push makes w the active target. Pushing nil disables tracking until the matching Pop.
func (t *Tracker) Push(w *Watcher) {
	t.stack = append(t.stack, t.target)
	t.target = w
}

// Pop restores the target that was active before the last Push.
func (t *Tracker) Pop() {
	n := len(t.stack)
	if n == 0 {
		t.target = nil
		return
	}

	t.target = t.stack[n-1]
	t.stack[n-1] = nil
	t.stack = t.stack[:n-1]
}

// Depth returns how many targets are currently stacked.
func (t *Tracker) Depth() int {
	return len(t.stack)
}

func (t *Tracker) RunUntracked(fn func()) {
	t.Push(nil)
	defer t.Pop()

	fn()
}
