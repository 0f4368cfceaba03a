// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"github.com/ik5/audmix/automation"
	"github.com/ik5/audmix/cache"
	"github.com/ik5/audmix/config"
)

type options struct {
	cfg     config.Config
	cache   *cache.Cache
	presets *automation.Presets
}

// Option configures a Mixer.
type Option func(*options)

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithCache shares an asset cache instead of creating one on the
// configured assets directory.
func WithCache(c *cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithPresets replaces the presets derived from the configuration.
func WithPresets(p automation.Presets) Option {
	return func(o *options) { o.presets = &p }
}

type memberOptions struct {
	group  string
	volume float64
}

// MemberOption configures AddTrack and AddGroup.
type MemberOption func(*memberOptions)

// InGroup nests the new member in an existing group.
func InGroup(name string) MemberOption {
	return func(o *memberOptions) { o.group = name }
}

// WithVolume sets the initial gain of the new member.
func WithVolume(v float64) MemberOption {
	return func(o *memberOptions) { o.volume = v }
}
