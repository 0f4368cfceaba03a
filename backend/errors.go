// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"errors"
	"fmt"

	"github.com/ik5/audmix/errs"
)

var (
	// ErrNoDestination is returned when connecting to a zero Destination.
	ErrNoDestination = errors.New("destination has neither node nor param")

	// ErrSourceStarted is returned by a buffer source started twice.
	ErrSourceStarted = fmt.Errorf("buffer source already started: %w", errs.ErrInvalidState)

	// ErrSourceNotStarted is returned when stopping a source never started.
	ErrSourceNotStarted = fmt.Errorf("buffer source not started: %w", errs.ErrInvalidState)
)
