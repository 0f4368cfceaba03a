// SPDX-License-Identifier: EPL-2.0

package tracking

import (
	"context"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/automation"
)

// AssetCache resolves decoded buffers by path.
type AssetCache interface {
	// GetAudio returns the cached buffer, or nil when absent or loading.
	GetAudio(path string) *audio.Buffer
	// Fetch returns the buffer, loading it if needed.
	Fetch(ctx context.Context, path string) (*audio.Buffer, error)
}

type options struct {
	cache   AssetCache
	volume  float64
	presets automation.Presets
}

// Option configures a Source.
type Option func(*options)

// WithCache enables LoadPath.
func WithCache(c AssetCache) Option {
	return func(o *options) { o.cache = c }
}

// WithVolume sets the initial gain.
func WithVolume(v float64) Option {
	return func(o *options) { o.volume = v }
}

// WithPresets replaces the default automation presets.
func WithPresets(p automation.Presets) Option {
	return func(o *options) { o.presets = p }
}
