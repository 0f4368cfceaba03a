// SPDX-License-Identifier: EPL-2.0

package cache

import "errors"

var (
	// ErrUnsupportedFormat is returned when no decoder handles the extension.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrUnloaded is returned by loads superseded by UnloadAudio or by an
	// invalidating load of the same path.
	ErrUnloaded = errors.New("audio unloaded while loading")
)
