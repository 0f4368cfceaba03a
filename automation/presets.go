// SPDX-License-Identifier: EPL-2.0

package automation

import (
	"fmt"
	"strings"
)

// SwapPair holds the adjustments applied to the outgoing and incoming
// source of a swap.
type SwapPair struct {
	Old Adjustment
	New Adjustment
}

// End is when the later of the two adjustments finishes, relative to the
// start of the swap.
func (p SwapPair) End() float64 {
	return max(p.Old.End(), p.New.End())
}

// Validate checks the ramps of both adjustments.
func (p SwapPair) Validate() error {
	if err := p.Old.Ramp.Validate(); err != nil {
		return fmt.Errorf("fade out: %w", err)
	}
	if err := p.New.Ramp.Validate(); err != nil {
		return fmt.Errorf("fade in: %w", err)
	}
	return nil
}

// Scaled multiplies every delay and duration by the same factor so the
// pair ends at total seconds. Non-positive totals and empty pairs are
// returned unchanged.
func (p SwapPair) Scaled(total float64) SwapPair {
	end := p.End()
	if total <= 0 || end <= 0 {
		return p
	}
	f := total / end
	scale := func(a Adjustment) Adjustment {
		a.Ramp = a.Ramp.clone()
		a.Delay *= f
		a.Duration *= f
		return a
	}
	return SwapPair{Old: scale(p.Old), New: scale(p.New)}
}

// SwapPreset names a tuned SwapPair.
type SwapPreset int

const (
	SwapDefault SwapPreset = iota
	SwapInOut
	SwapOutIn
	SwapCross
	SwapCut
)

var swapPresetNames = map[SwapPreset]string{
	SwapDefault: "trackSwapDefault",
	SwapInOut:   "trackSwapInOut",
	SwapOutIn:   "trackSwapOutIn",
	SwapCross:   "trackSwapCross",
	SwapCut:     "trackSwapCut",
}

func (p SwapPreset) String() string {
	if name, ok := swapPresetNames[p]; ok {
		return name
	}
	return fmt.Sprintf("SwapPreset(%d)", int(p))
}

// ParseSwapPreset accepts full preset names ("trackSwapCross") and short
// ones ("cross", "in_out").
func ParseSwapPreset(name string) (SwapPreset, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "")
	key = strings.TrimPrefix(key, "trackswap")
	for p, n := range swapPresetNames {
		if strings.ToLower(strings.TrimPrefix(n, "trackSwap")) == key {
			return p, true
		}
	}
	return SwapDefault, false
}

// Presets are the named defaults used by automation callers and swaps.
type Presets struct {
	AutomationImmediate   Adjustment
	AutomationLinear      Adjustment
	AutomationExponential Adjustment
	AutomationNatural     Adjustment
	StartImmediate        Adjustment
	StopImmediate         Adjustment

	TrackSwapInOut   SwapPair
	TrackSwapOutIn   SwapPair
	TrackSwapCross   SwapPair
	TrackSwapCut     SwapPair
	TrackSwapDefault SwapPair
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() Presets {
	adj := func(s Shape, delay, duration float64) Adjustment {
		return Adjustment{Ramp: ShapeRamp(s), Delay: delay, Duration: duration}
	}
	cross := SwapPair{Old: adj(EqualPower, 0, 1), New: adj(EqualPowerIn, 0, 1)}

	return Presets{
		AutomationImmediate:   adj(Linear, 0, 0.002),
		AutomationLinear:      adj(Linear, 0, 0.5),
		AutomationExponential: adj(Exponential, 0, 0.5),
		AutomationNatural:     adj(Natural, 0, 0.5),
		StartImmediate:        adj(Linear, 0, 0.002),
		StopImmediate:         adj(Linear, 0, 0.002),

		TrackSwapInOut:   SwapPair{Old: adj(Natural, 0.5, 0.5), New: adj(Natural, 0, 0.5)},
		TrackSwapOutIn:   SwapPair{Old: adj(Natural, 0, 0.5), New: adj(Natural, 0.5, 0.5)},
		TrackSwapCross:   cross,
		TrackSwapCut:     SwapPair{Old: adj(Linear, 0, 0.002), New: adj(Linear, 0, 0.002)},
		TrackSwapDefault: cross,
	}
}

// Swap returns the pair for a preset; unknown presets use the default.
func (p *Presets) Swap(preset SwapPreset) SwapPair {
	if pair := p.swapField(preset); pair != nil {
		return *pair
	}
	return p.TrackSwapDefault
}

// SetSwap overrides a swap preset.
func (p *Presets) SetSwap(preset SwapPreset, pair SwapPair) bool {
	field := p.swapField(preset)
	if field == nil {
		return false
	}
	*field = pair
	return true
}

func (p *Presets) swapField(preset SwapPreset) *SwapPair {
	switch preset {
	case SwapDefault:
		return &p.TrackSwapDefault
	case SwapInOut:
		return &p.TrackSwapInOut
	case SwapOutIn:
		return &p.TrackSwapOutIn
	case SwapCross:
		return &p.TrackSwapCross
	case SwapCut:
		return &p.TrackSwapCut
	}
	return nil
}

// Adjustment looks up a parameter preset by name, e.g.
// "automationNatural". Matching ignores case.
func (p *Presets) Adjustment(name string) (Adjustment, bool) {
	if field := p.adjustmentField(name); field != nil {
		return *field, true
	}
	return Adjustment{}, false
}

// SetAdjustment overrides a parameter preset by name.
func (p *Presets) SetAdjustment(name string, adj Adjustment) bool {
	field := p.adjustmentField(name)
	if field == nil {
		return false
	}
	*field = adj
	return true
}

func (p *Presets) adjustmentField(name string) *Adjustment {
	switch strings.ToLower(name) {
	case "automationimmediate":
		return &p.AutomationImmediate
	case "automationlinear":
		return &p.AutomationLinear
	case "automationexponential":
		return &p.AutomationExponential
	case "automationnatural":
		return &p.AutomationNatural
	case "startimmediate":
		return &p.StartImmediate
	case "stopimmediate":
		return &p.StopImmediate
	}
	return nil
}
