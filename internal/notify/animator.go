package notify

import "time"

// Transition describes a toast entrance or exit.
type Transition struct {
	Name        string        `json:"name"`
	Duration    time.Duration `json:"duration"`
	FromY       float64       `json:"from_y"`
	ToY         float64       `json:"to_y"`
	FromOpacity float64       `json:"from_opacity"`
	ToOpacity   float64       `json:"to_opacity"`
}

var (
	// EnterTransition slides a toast up into view.
	EnterTransition = Transition{Name: "enter", Duration: 300 * time.Millisecond, FromY: 50, ToY: 0, FromOpacity: 0, ToOpacity: 1}
	// ExitTransition fades a toast out downwards.
	ExitTransition = Transition{Name: "exit", Duration: 300 * time.Millisecond, FromY: 0, ToY: 20, FromOpacity: 1, ToOpacity: 0}
)

// Animator plays a transition and calls done once it has finished.
type Animator interface {
	Animate(t Transition, done func())
}

// TimerAnimator completes transitions after their duration elapses.
type TimerAnimator struct {
	AfterFunc func(time.Duration, func())
}

// Animate implements Animator.
func (a TimerAnimator) Animate(t Transition, done func()) {
	if done == nil {
		return
	}
	if a.AfterFunc != nil {
		a.AfterFunc(t.Duration, done)
		return
	}
	time.AfterFunc(t.Duration, done)
}
