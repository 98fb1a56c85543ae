package dashboard

import (
	"math"
	"time"
)

// Easing maps linear progress in [0,1] onto eased progress.
type Easing func(t float64) float64

// ExpoOut decelerates sharply towards the end.
func ExpoOut(t float64) float64 {
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return 0
	}
	return 1 - math.Pow(2, -10*t)
}

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// Animator tweens a value and reports every intermediate step to onUpdate.
// The final call always carries exactly `to`, and Tween returns after it.
type Animator interface {
	Tween(from, to float64, duration time.Duration, ease Easing, onUpdate func(v float64))
}

// FrameAnimator samples a tween at a fixed frame rate.
type FrameAnimator struct {
	FPS int
}

// Tween implements Animator.
func (a FrameAnimator) Tween(from, to float64, duration time.Duration, ease Easing, onUpdate func(v float64)) {
	if onUpdate == nil {
		return
	}
	if ease == nil {
		ease = Linear
	}
	fps := a.FPS
	if fps <= 0 {
		fps = 30
	}
	frames := int(math.Ceil(duration.Seconds() * float64(fps)))
	if frames < 1 {
		onUpdate(to)
		return
	}
	for i := 1; i < frames; i++ {
		progress := ease(float64(i) / float64(frames))
		onUpdate(from + (to-from)*progress)
	}
	onUpdate(to)
}

// tween plays the tween on a, or jumps straight to the end value when no
// animator is configured.
func tween(a Animator, from, to float64, duration time.Duration, ease Easing, onUpdate func(v float64)) {
	if a == nil {
		onUpdate(to)
		return
	}
	a.Tween(from, to, duration, ease, onUpdate)
}
