// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported. Input that is not an
// io.ReadSeeker is buffered in memory first, because go-audio seeks while
// reading chunk headers.
package aiff
