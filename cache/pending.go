// SPDX-License-Identifier: EPL-2.0

package cache

import (
	"context"

	"github.com/ik5/audmix/audio"
)

// Pending is an asynchronous load. Every caller asking for the same path
// while it runs shares it.
type Pending struct {
	path string
	done chan struct{}
	buf  *audio.Buffer
	err  error
}

func newPending(path string) *Pending {
	return &Pending{path: path, done: make(chan struct{})}
}

func failed(path string, err error) *Pending {
	p := newPending(path)
	p.complete(nil, err)
	return p
}

func (p *Pending) complete(buf *audio.Buffer, err error) {
	p.buf, p.err = buf, err
	close(p.done)
}

// Path is the asset being loaded.
func (p *Pending) Path() string { return p.path }

// Done is closed once the load finished, successfully or not.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the load finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) (*audio.Buffer, error) {
	select {
	case <-p.done:
		return p.buf, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
