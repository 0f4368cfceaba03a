// SPDX-License-Identifier: EPL-2.0

package automation

// Adjustment describes how a parameter moves to a new value: the ramp, the
// delay before it begins and how long it lasts, both in seconds.
// Treat it as a value; Resolve never aliases the caller's curve.
type Adjustment struct {
	Ramp     Ramp
	Delay    float64
	Duration float64
}

// End is Delay+Duration.
func (a Adjustment) End() float64 { return a.Delay + a.Duration }

// Option overrides part of a default Adjustment.
type Option func(*Adjustment)

func WithRamp(r Ramp) Option {
	return func(a *Adjustment) { a.Ramp = r }
}

func WithShape(s Shape) Option {
	return func(a *Adjustment) { a.Ramp = ShapeRamp(s) }
}

func WithCurve(values ...float64) Option {
	return func(a *Adjustment) { a.Ramp = Curve(values...) }
}

func WithDelay(seconds float64) Option {
	return func(a *Adjustment) { a.Delay = seconds }
}

func WithDuration(seconds float64) Option {
	return func(a *Adjustment) { a.Duration = seconds }
}

// WithAdjustment replaces the default wholesale.
func WithAdjustment(adj Adjustment) Option {
	return func(a *Adjustment) { *a = adj }
}

// Resolve applies opts over defaults. Negative times clamp to zero.
func Resolve(defaults Adjustment, opts ...Option) Adjustment {
	adj := defaults
	for _, opt := range opts {
		if opt != nil {
			opt(&adj)
		}
	}
	adj.Ramp = adj.Ramp.clone()
	adj.Delay = max(adj.Delay, 0)
	adj.Duration = max(adj.Duration, 0)
	return adj
}
