// SPDX-License-Identifier: EPL-2.0

package tracking

import (
	"errors"
	"fmt"

	"github.com/ik5/audmix/errs"
)

var (
	// ErrDestroyed is returned by every operation on a destroyed Source.
	ErrDestroyed = fmt.Errorf("tracking source destroyed: %w", errs.ErrInvalidState)

	// ErrNoBuffer is returned when starting a Source with nothing loaded.
	ErrNoBuffer = errors.New("no buffer loaded")

	// ErrNoCache is returned by LoadPath on a Source built without a cache.
	ErrNoCache = errors.New("no asset cache configured")

	// ErrNotFound is returned by LoadPath when the cache yields no buffer.
	ErrNotFound = errors.New("audio asset not found")
)
