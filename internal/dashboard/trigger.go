package dashboard

import "sync"

// TriggerState is the lifecycle of a one-shot trigger.
type TriggerState int

const (
	// Pending triggers have not been armed yet.
	Pending TriggerState = iota
	// Armed triggers fire on the next observation.
	Armed
	// Fired triggers never fire again.
	Fired
)

func (s TriggerState) String() string {
	switch s {
	case Armed:
		return "armed"
	case Fired:
		return "fired"
	default:
		return "pending"
	}
}

// Trigger fires at most once. An observation made while pending is
// remembered, so arming an already visible target fires immediately.
type Trigger struct {
	mu    sync.Mutex
	state TriggerState
	seen  bool
}

// Arm makes the trigger live. It reports whether arming fired it.
func (t *Trigger) Arm() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Pending {
		return false
	}
	if t.seen {
		t.state = Fired
		return true
	}
	t.state = Armed
	return false
}

// Observe records that the target came into view. It reports whether this
// observation fired the trigger.
func (t *Trigger) Observe() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case Armed:
		t.state = Fired
		return true
	case Pending:
		t.seen = true
	}
	return false
}

// State returns the current state.
func (t *Trigger) State() TriggerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
