// SPDX-License-Identifier: EPL-2.0

// Package errs holds the error categories shared by every audmix package.
//
// Packages return their own sentinel errors wrapping one of these categories,
// so callers can match either the precise failure or its category:
//
//	if errors.Is(err, errs.ErrInvalidState) {
//	    // any use-after-destroy, whichever package raised it
//	}
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is raised at construction or call time for invalid
	// settings (distances, malformed ramp curves, config files).
	ErrConfiguration = errors.New("configuration error")

	// ErrDuplicateName is raised when a track or group name is already taken.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrInvalidState is raised for operations on destroyed objects or
	// sequences finished twice.
	ErrInvalidState = errors.New("invalid state")

	// ErrBackendUnavailable is raised once, at top-level construction, when
	// no signal-processing backend is usable.
	ErrBackendUnavailable = errors.New("signal-processing backend unavailable")
)

// DuplicateNameError reports the name that collided.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateName, e.Name)
}

// Is makes errors.Is(err, ErrDuplicateName) hold.
func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}
