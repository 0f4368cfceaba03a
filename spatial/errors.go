// SPDX-License-Identifier: EPL-2.0

package spatial

import (
	"fmt"

	"github.com/ik5/audmix/errs"
)

// ErrDestroyed is returned by every operation on a destroyed Spatializer.
var ErrDestroyed = fmt.Errorf("spatializer destroyed: %w", errs.ErrInvalidState)
