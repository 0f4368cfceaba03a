// SPDX-License-Identifier: EPL-2.0

package track

import (
	"errors"
	"fmt"

	"github.com/ik5/audmix/errs"
)

var (
	// ErrDestroyed is returned by operations on a destroyed Track or Group.
	ErrDestroyed = fmt.Errorf("track destroyed: %w", errs.ErrInvalidState)

	// ErrSameSource is returned when swapping a source for itself.
	ErrSameSource = errors.New("source is already current")

	// ErrHasParent is returned when adding a member that belongs to a group.
	ErrHasParent = errors.New("member already belongs to a group")
)
