// Package notify shows transient success and error messages on a page.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a toast.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultTTL is how long a toast stays on screen.
const DefaultTTL = 3500 * time.Millisecond

// Icon returns the icon class rendered next to the message.
func (k Kind) Icon() string {
	if k == KindError {
		return "icon-alert"
	}
	return "icon-check"
}

// Phase tracks where a toast is in its on-screen lifecycle.
type Phase string

const (
	PhaseEntering Phase = "entering"
	PhaseVisible  Phase = "visible"
	PhaseLeaving  Phase = "leaving"
)

// Toast is one transient message.
type Toast struct {
	ID         string      `json:"id"`
	Kind       Kind        `json:"kind"`
	Message    string      `json:"message"`
	Icon       string      `json:"icon"`
	Phase      Phase       `json:"phase"`
	Transition *Transition `json:"transition,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// Notifier surfaces a message to the user. It has no error path.
type Notifier interface {
	Notify(ctx context.Context, message string, kind Kind)
}

// Container stores the toasts of one display surface.
type Container interface {
	Append(ctx context.Context, toast Toast) error
	Update(ctx context.Context, toast Toast) error
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]Toast, error)
}

type containerKey struct{}

// ContextWithContainer attaches the container notifications should land in.
func ContextWithContainer(ctx context.Context, c Container) context.Context {
	return context.WithValue(ctx, containerKey{}, c)
}

// ContainerFromContext returns the attached container, or nil.
func ContainerFromContext(ctx context.Context) Container {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(containerKey{}).(Container)
	return c
}

// Center appends toasts to the container found in the context and removes
// them after the TTL. Without a container Notify does nothing.
type Center struct {
	ttl       time.Duration
	animator  Animator
	logger    *slog.Logger
	now       func() time.Time
	afterFunc func(time.Duration, func())
}

// Option customises a Center.
type Option func(*Center)

// WithAnimator enables entrance and exit transitions.
func WithAnimator(a Animator) Option {
	return func(c *Center) { c.animator = a }
}

// WithLogger sets the logger used for container failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Center) { c.logger = l }
}

// WithClock overrides time sources, for tests.
func WithClock(now func() time.Time, afterFunc func(time.Duration, func())) Option {
	return func(c *Center) {
		if now != nil {
			c.now = now
		}
		if afterFunc != nil {
			c.afterFunc = afterFunc
		}
	}
}

// NewCenter constructs a Center. A non-positive ttl falls back to DefaultTTL.
func NewCenter(ttl time.Duration, opts ...Option) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Center{
		ttl:    ttl,
		logger: slog.Default(),
		now:    time.Now,
		afterFunc: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify implements Notifier.
func (c *Center) Notify(ctx context.Context, message string, kind Kind) {
	container := ContainerFromContext(ctx)
	if c == nil || container == nil {
		return
	}
	if kind != KindError {
		kind = KindSuccess
	}
	// Removal outlives the request that raised the toast.
	ctx = context.WithoutCancel(ctx)

	now := c.now()
	toast := Toast{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		Icon:      kind.Icon(),
		Phase:     PhaseVisible,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	if c.animator == nil {
		if !c.store(ctx, container.Append, toast) {
			return
		}
		c.afterFunc(c.ttl, func() { c.remove(ctx, container, toast.ID) })
		return
	}

	toast.Phase = PhaseEntering
	toast.Transition = &EnterTransition
	if !c.store(ctx, container.Append, toast) {
		return
	}
	c.animator.Animate(EnterTransition, func() {
		visible := toast
		visible.Phase = PhaseVisible
		visible.Transition = nil
		c.store(ctx, container.Update, visible)
	})
	c.afterFunc(c.ttl, func() {
		leaving := toast
		leaving.Phase = PhaseLeaving
		leaving.Transition = &ExitTransition
		c.store(ctx, container.Update, leaving)
		c.animator.Animate(ExitTransition, func() { c.remove(ctx, container, toast.ID) })
	})
}

func (c *Center) store(ctx context.Context, fn func(context.Context, Toast) error, toast Toast) bool {
	if err := fn(ctx, toast); err != nil {
		c.logger.Warn("store toast", slog.String("toast_id", toast.ID), slog.Any("error", err))
		return false
	}
	return true
}

func (c *Center) remove(ctx context.Context, container Container, id string) {
	if err := container.Remove(ctx, id); err != nil {
		c.logger.Warn("remove toast", slog.String("toast_id", id), slog.Any("error", err))
	}
}
