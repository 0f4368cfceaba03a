// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"errors"
	"fmt"

	"github.com/ik5/audmix/errs"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = fmt.Errorf("mixer closed: %w", errs.ErrInvalidState)

	// ErrNotFound is returned for unknown track or group names.
	ErrNotFound = errors.New("no such track or group")
)
