// SPDX-License-Identifier: EPL-2.0

package automation

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/backend"
)

// Epsilon is the distance under which two parameter values are equal, and
// under which a value counts as zero for exponential ramps.
const Epsilon = 1e-4

// Clock is the audio clock automation is scheduled against.
type Clock interface {
	CurrentTime() float64
}

// Warning identifies a degraded scheduling path.
type Warning int

const (
	WarnNone Warning = iota
	// WarnUnknownRamp: the shape was not recognised and the target was set
	// at the start time with no ramp.
	WarnUnknownRamp
	// WarnExponentialSubstituted: an exponential ramp touched zero and ran
	// as a natural ramp instead.
	WarnExponentialSubstituted
)

func (w Warning) String() string {
	switch w {
	case WarnNone:
		return "none"
	case WarnUnknownRamp:
		return "unknown ramp"
	case WarnExponentialSubstituted:
		return "exponential substituted by natural"
	default:
		return fmt.Sprintf("Warning(%d)", int(w))
	}
}

// Outcome reports how a Schedule call was carried out.
type Outcome struct {
	Warning Warning
	// Start and End bound the scheduled movement on the audio clock.
	Start float64
	End   float64
}

// Degraded reports whether a warning was raised.
func (o Outcome) Degraded() bool { return o.Warning != WarnNone }

// Schedule moves param towards target following adj.
//
// When the parameter already sits within Epsilon of target, and
// skipImmediate is false, pending automation is cancelled and the value
// converges linearly over the delay. Otherwise the timeline is held at
// now+delay, pinned to the current value and the ramp is applied from
// there. An automation still running at now is cut at now+delay, where the
// value steps back to what it was at now.
func Schedule(clock Clock, param backend.Param, target float64, adj Adjustment, skipImmediate bool) (Outcome, error) {
	if param == nil {
		return Outcome{}, ErrNilParam
	}
	if err := adj.Ramp.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "automation.Schedule",
			"error":    err.Error(),
		}).Error("Invalid ramp")
		return Outcome{}, err
	}

	now := clock.CurrentTime()
	delay, duration := max(adj.Delay, 0), max(adj.Duration, 0)
	current := param.Value()
	start := now + delay

	if !skipImmediate && math.Abs(target-current) < Epsilon {
		logrus.WithFields(logrus.Fields{
			"function": "automation.Schedule",
			"current":  current,
			"target":   target,
			"delay":    delay,
		}).Debug("Value already at target, converging")

		param.CancelScheduledValues(now)
		param.SetValueAtTime(current, now)
		param.LinearRampToValueAtTime(target, start)
		return Outcome{Start: now, End: start}, nil
	}

	param.CancelAndHoldAtTime(start)
	param.SetValueAtTime(current, start)
	out := Outcome{Start: start, End: start + duration}

	logrus.WithFields(logrus.Fields{
		"function": "automation.Schedule",
		"ramp":     adj.Ramp.String(),
		"current":  current,
		"target":   target,
		"start":    start,
		"duration": duration,
	}).Debug("Scheduling ramp")

	if adj.Ramp.IsCurve() {
		scheduleCurve(param, adj.Ramp.Curve, current, target, start, duration)
		return out, nil
	}

	switch adj.Ramp.Shape {
	case Linear:
		param.LinearRampToValueAtTime(target, start+duration)
	case Exponential:
		if math.Abs(current) < Epsilon || math.Abs(target) < Epsilon {
			logrus.WithFields(logrus.Fields{
				"function": "automation.Schedule",
				"current":  current,
				"target":   target,
			}).Debug("Exponential ramp touches zero, using natural")
			out.Warning = WarnExponentialSubstituted
			scheduleNatural(param, current, target, start, duration)
			break
		}
		param.ExponentialRampToValueAtTime(target, start+duration)
	case Natural:
		scheduleNatural(param, current, target, start, duration)
	case EqualPower:
		scheduleCurve(param, EqualPowerCurve(CurvePoints(duration)), current, target, start, duration)
	case EqualPowerIn:
		scheduleCurve(param, EqualPowerInCurve(CurvePoints(duration)), current, target, start, duration)
	default:
		logrus.WithFields(logrus.Fields{
			"function": "automation.Schedule",
			"ramp":     adj.Ramp.String(),
			"target":   target,
		}).Warn("Unknown ramp shape, setting target without ramp")
		param.SetValueAtTime(target, start)
		out.Warning = WarnUnknownRamp
		out.End = start
	}
	return out, nil
}

// scheduleNatural approaches target with time constant duration/4, holds
// at three time constants and finishes linearly on the exact target.
func scheduleNatural(param backend.Param, current, target, start, duration float64) {
	if duration <= 0 {
		param.SetValueAtTime(target, start)
		return
	}
	tau := duration / 4
	settle := start + 3*tau

	param.SetTargetAtTime(target, start, tau)
	param.CancelAndHoldAtTime(settle)
	param.SetValueAtTime(NaturalSettled(current, target), settle)
	param.LinearRampToValueAtTime(target, start+duration)
}

// scheduleCurve maps progress values onto [current, target].
func scheduleCurve(param backend.Param, progress []float64, current, target, start, duration float64) {
	diff := target - current
	if duration <= 0 {
		param.SetValueAtTime(current+diff*progress[len(progress)-1], start)
		return
	}
	if len(progress) == 1 {
		progress = []float64{progress[0], progress[0]}
	}
	values := make([]float32, len(progress))
	for i, x := range progress {
		values[i] = float32(current + diff*x)
	}
	param.SetValueCurveAtTime(values, start, duration)
}
