// SPDX-License-Identifier: EPL-2.0

package cache

import "github.com/ik5/audmix/audio"

// Option configures a Cache.
type Option func(*Cache)

// WithRegistry replaces the bundled decoders.
func WithRegistry(r *audio.Registry) Option {
	return func(c *Cache) { c.registry = r }
}

// WithSampleRate resamples every loaded buffer to rate. Zero keeps the
// file rate.
func WithSampleRate(rate int) Option {
	return func(c *Cache) { c.sampleRate = rate }
}

type loadOptions struct {
	invalidate bool
	mono       bool
}

// LoadOption configures a single LoadAudio call.
type LoadOption func(*loadOptions)

// Invalidate reloads the path even when it is cached or loading.
func Invalidate() LoadOption {
	return func(o *loadOptions) { o.invalidate = true }
}

// Mono down-mixes the decoded audio to one channel.
func Mono() LoadOption {
	return func(o *loadOptions) { o.mono = true }
}
