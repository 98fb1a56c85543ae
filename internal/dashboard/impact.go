package dashboard

import (
	"html/template"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// ImpactDuration is how long a business impact figure takes to count up.
const ImpactDuration = 3500 * time.Millisecond

var (
	leadingInt  = regexp.MustCompile(`^(\d+)`)
	smallSuffix = regexp.MustCompile(`(<small>.*</small>)$`)
)

// ImpactSource is the literal markup of one business impact figure.
type ImpactSource struct {
	ID    string
	Label string
	HTML  string
}

// DefaultImpactStats are the figures shown in the business impact section.
var DefaultImpactStats = []ImpactSource{
	{ID: "impact-hours", Label: "Administrative hours saved per month", HTML: "120<small>hrs</small>"},
	{ID: "impact-detection", Label: "Faster identification of at-risk students", HTML: "85<small>%</small>"},
	{ID: "impact-reports", Label: "Reports generated automatically", HTML: "40<small>+</small>"},
	{ID: "impact-access", Label: "Dashboard availability", HTML: "Always on"},
}

// ImpactStat is a parsed figure: a leading integer and an optional decorative
// suffix.
type ImpactStat struct {
	Target int
	Suffix string
}

// ParseImpactStat extracts the leading integer and trailing <small> suffix
// from text. It reports false when text has no leading integer.
func ParseImpactStat(text string) (ImpactStat, bool) {
	m := leadingInt.FindStringSubmatch(text)
	if m == nil {
		return ImpactStat{}, false
	}
	target, err := strconv.Atoi(m[1])
	if err != nil {
		return ImpactStat{}, false
	}
	stat := ImpactStat{Target: target}
	if s := smallSuffix.FindStringSubmatch(text); s != nil {
		stat.Suffix = s[1]
	}
	return stat, true
}

// Impact is one business impact figure on the page.
type Impact struct {
	Source ImpactSource

	stat    ImpactStat
	trigger Trigger

	mu      sync.RWMutex
	display string
	frames  []string
}

// ImpactView is a snapshot of an impact figure for rendering.
type ImpactView struct {
	ID      string          `json:"id"`
	Label   string          `json:"label"`
	Display template.HTML   `json:"display"`
	Frames  []template.HTML `json:"frames,omitempty"`
	State   string          `json:"state"`
}

func newImpacts(sources []ImpactSource) []*Impact {
	impacts := make([]*Impact, 0, len(sources))
	for _, src := range sources {
		impacts = append(impacts, &Impact{Source: src, display: src.HTML})
	}
	return impacts
}

// reset parses the literal markup and zeroes the display. Figures without a
// leading integer keep their markup and never count.
func (i *Impact) reset() bool {
	stat, ok := ParseImpactStat(i.Source.HTML)
	if !ok {
		return false
	}
	i.mu.Lock()
	i.stat = stat
	i.display = "0" + stat.Suffix
	i.mu.Unlock()
	return true
}

func (i *Impact) play(a Animator) {
	i.mu.RLock()
	stat := i.stat
	i.mu.RUnlock()

	frames := make([]string, 0, 112)
	tween(a, 0, float64(stat.Target), ImpactDuration, ExpoOut, func(v float64) {
		frames = append(frames, strconv.Itoa(int(v))+stat.Suffix)
	})
	if len(frames) == 0 {
		frames = append(frames, strconv.Itoa(stat.Target)+stat.Suffix)
	}
	i.mu.Lock()
	i.frames = frames
	i.display = frames[len(frames)-1]
	i.mu.Unlock()
}

// Display returns the current markup of the figure.
func (i *Impact) Display() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.display
}

// View snapshots the figure. The markup is the page's own literal text.
func (i *Impact) View() ImpactView {
	i.mu.RLock()
	defer i.mu.RUnlock()
	frames := make([]template.HTML, 0, len(i.frames))
	for _, f := range i.frames {
		frames = append(frames, template.HTML(f))
	}
	return ImpactView{
		ID:      i.Source.ID,
		Label:   i.Source.Label,
		Display: template.HTML(i.display),
		Frames:  frames,
		State:   i.trigger.State().String(),
	}
}
