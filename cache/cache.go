// SPDX-License-Identifier: EPL-2.0

package cache

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats"
)

// Cache decodes audio files from a file system once and keeps the buffers
// until they are unloaded.
type Cache struct {
	fsys       fs.FS
	registry   *audio.Registry
	sampleRate int

	mu      sync.RWMutex
	entries map[string]*Pending
}

// New creates a Cache reading from fsys.
func New(fsys fs.FS, opts ...Option) *Cache {
	c := &Cache{
		fsys:    fsys,
		entries: make(map[string]*Pending),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = formats.NewRegistry()
	}
	return c
}

// SampleRate is the rate loaded buffers are converted to, 0 for none.
func (c *Cache) SampleRate() int { return c.sampleRate }

// GetAudio returns the buffer for path, or nil when it is absent, still
// loading or failed to load.
func (c *Cache) GetAudio(path string) *audio.Buffer {
	c.mu.RLock()
	p, ok := c.entries[path]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	select {
	case <-p.done:
		return p.buf
	default:
		return nil
	}
}

// Loaded lists the paths with a decoded buffer.
func (c *Cache) Loaded() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []string
	for path, p := range c.entries {
		select {
		case <-p.done:
			if p.err == nil {
				out = append(out, path)
			}
		default:
		}
	}
	slices.Sort(out)
	return out
}

// LoadAudio starts decoding path in the background. A cached or loading
// path returns the existing Pending unless Invalidate is given.
func (c *Cache) LoadAudio(ctx context.Context, path string, opts ...LoadOption) *Pending {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := ctx.Err(); err != nil {
		return failed(path, err)
	}

	c.mu.Lock()
	if p, ok := c.entries[path]; ok && !o.invalidate {
		c.mu.Unlock()
		return p
	}
	p := newPending(path)
	c.entries[path] = p
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":   "Cache.LoadAudio",
		"path":       path,
		"mono":       o.mono,
		"invalidate": o.invalidate,
	}).Debug("Loading audio")

	go c.load(p, o)
	return p
}

// Fetch returns the buffer for path, loading it and waiting when needed.
func (c *Cache) Fetch(ctx context.Context, path string) (*audio.Buffer, error) {
	if buf := c.GetAudio(path); buf != nil {
		return buf, nil
	}
	return c.LoadAudio(ctx, path).Wait(ctx)
}

// UnloadAudio drops the given paths, or everything when none are given.
// Loads in flight for those paths complete with ErrUnloaded.
func (c *Cache) UnloadAudio(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(paths) == 0 {
		clear(c.entries)
		return
	}
	for _, path := range paths {
		delete(c.entries, path)
	}
}

func (c *Cache) load(p *Pending, o loadOptions) {
	buf, err := c.decode(p.path, o.mono)

	c.mu.Lock()
	current := c.entries[p.path] == p
	switch {
	case !current:
		buf, err = nil, fmt.Errorf("%q: %w", p.path, ErrUnloaded)
	case err != nil:
		delete(c.entries, p.path)
	}
	c.mu.Unlock()

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Cache.load",
			"path":     p.path,
			"error":    err.Error(),
		}).Error("Failed to load audio")
	}
	p.complete(buf, err)
}

func (c *Cache) decode(path string, mono bool) (*audio.Buffer, error) {
	dec, ok := c.registry.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("%q: %w", path, ErrUnsupportedFormat)
	}

	f, err := c.fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	if mono && src.Channels() > 1 {
		src = audio.NewMonoMixer(src)
	}
	if c.sampleRate > 0 && src.SampleRate() != c.sampleRate {
		src = audio.NewResampler(src, c.sampleRate)
	}

	buf, err := audio.ReadBuffer(src)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return buf, nil
}
