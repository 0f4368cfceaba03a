// SPDX-License-Identifier: EPL-2.0

package track

// State is the swap state of a Track.
type State int

const (
	Idle State = iota
	SwapInProgress
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SwapInProgress:
		return "swap in progress"
	default:
		return "unknown"
	}
}
