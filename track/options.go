// SPDX-License-Identifier: EPL-2.0

package track

import (
	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/backend"
)

// Source is what a Track plays. tracking.Source satisfies it.
type Source interface {
	Start(when, offset, duration float64) error
	Stop(when float64) error
	// Gain is the source's own gain parameter, automated during swaps.
	Gain() backend.Param
	Connect(dst backend.Destination) error
	Disconnect() error
}

// SwapOptions selects the transition of a swap. Pair, when set, replaces
// the preset. A positive Duration rescales the pair so the whole swap
// lasts that long.
type SwapOptions struct {
	Preset   automation.SwapPreset
	Pair     *automation.SwapPair
	Duration float64
	// Offset is where, in seconds, the new source starts playing from.
	Offset float64
}

type options struct {
	presets automation.Presets
	volume  float64
}

// Option configures a Track or Group.
type Option func(*options)

// WithPresets replaces the default automation presets.
func WithPresets(p automation.Presets) Option {
	return func(o *options) { o.presets = p }
}

// WithVolume sets the initial gain.
func WithVolume(v float64) Option {
	return func(o *options) { o.volume = v }
}
