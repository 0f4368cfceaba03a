// SPDX-License-Identifier: EPL-2.0

package audmix

import "errors"

// ErrNoTimeline is returned when a backend does not expose the automation
// timeline of its parameters.
var ErrNoTimeline = errors.New("parameter timeline not readable")
