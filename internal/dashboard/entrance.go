package dashboard

import (
	"fmt"
	"time"
)

// Step is one tween of the entrance timeline. Offset shifts its start
// relative to the end of the previous step; Stagger spaces out the Count
// elements it animates.
type Step struct {
	Selector string
	Duration time.Duration
	Offset   time.Duration
	Stagger  time.Duration
	Count    int
	Ease     string
}

// Cue is the resolved schedule of one animated element.
type Cue struct {
	Selector string
	Index    int
	Delay    time.Duration
	Duration time.Duration
	Ease     string
}

// Style renders the cue as inline CSS animation timing.
func (c Cue) Style() string {
	return fmt.Sprintf("animation-delay:%.2fs;animation-duration:%.2fs", c.Delay.Seconds(), c.Duration.Seconds())
}

// Timeline sequences steps one after another.
type Timeline struct {
	Steps []Step
}

// EntranceTimeline is the hero entrance played on page load.
var EntranceTimeline = Timeline{Steps: []Step{
	{Selector: "hero-title", Duration: 1200 * time.Millisecond, Ease: "expo.out"},
	{Selector: "hero-subtitle", Duration: time.Second, Offset: -800 * time.Millisecond, Ease: "power3.out"},
	{Selector: "kpi-card", Duration: time.Second, Offset: -600 * time.Millisecond, Stagger: 200 * time.Millisecond, Count: len(kpiSlots), Ease: "expo.out"},
}}

// Resolve computes the start of every element. Starts never go below zero.
func (t Timeline) Resolve() []Cue {
	var (
		cues []Cue
		end  time.Duration
	)
	for _, step := range t.Steps {
		start := end + step.Offset
		if start < 0 {
			start = 0
		}
		count := step.Count
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			delay := start + time.Duration(i)*step.Stagger
			cues = append(cues, Cue{Selector: step.Selector, Index: i, Delay: delay, Duration: step.Duration, Ease: step.Ease})
			if finish := delay + step.Duration; finish > end {
				end = finish
			}
		}
	}
	return cues
}

// Total is the time until the last element settles.
func (t Timeline) Total() time.Duration {
	var total time.Duration
	for _, c := range t.Resolve() {
		if finish := c.Delay + c.Duration; finish > total {
			total = finish
		}
	}
	return total
}
