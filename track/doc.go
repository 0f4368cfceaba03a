// SPDX-License-Identifier: EPL-2.0

// Package track implements named mixer channels and their source-swap
// state machine.
//
// A Track is Idle or SwapInProgress. Swap starts the incoming source at
// now+New.Delay with its gain automated from 0 to 1, automates the
// outgoing gain to 0, stops the outgoing source at Old.Delay+Old.Duration
// and detaches it then. The track returns to Idle once both windows have
// elapsed. Swaps requested meanwhile are queued and run first in, first
// out; Stop and Destroy discard the queue.
//
// A Group is a Track that also mixes child tracks and groups into its gain
// stage, so its volume multiplies with theirs.
package track
