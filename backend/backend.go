// SPDX-License-Identifier: EPL-2.0

package backend

import "github.com/ik5/audmix/audio"

// Context is a session of the signal-processing backend. Every method is
// called from the single audio timeline; implementations need not be safe
// for concurrent use.
type Context interface {
	// CurrentTime is the audio clock in seconds.
	CurrentTime() float64
	SampleRate() float64
	Destination() Node

	NewGain() GainNode
	NewBufferSource() BufferSourceNode
	NewStereoPanner() StereoPannerNode
	NewPanner() PannerNode
	NewBiquadFilter() BiquadFilterNode
	NewChannelSplitter(outputs int) Node
	NewChannelMerger(inputs int) Node
	NewAnalyser() AnalyserNode

	// AfterFunc runs f on the audio timeline once delay seconds of audio
	// clock have elapsed.
	AfterFunc(delay float64, f func()) Timer
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop cancels the callback, reporting whether it was still pending.
	Stop() bool
}

// Param is an automatable scalar.
type Param interface {
	// Value is the parameter value at the current audio time.
	Value() float64
	SetValueAtTime(value, t float64)
	LinearRampToValueAtTime(value, t float64)
	ExponentialRampToValueAtTime(value, t float64)
	SetTargetAtTime(target, t, timeConstant float64)
	SetValueCurveAtTime(curve []float32, t, duration float64)
	CancelScheduledValues(t float64)
	CancelAndHoldAtTime(t float64)
}

// Node is a vertex of the processing graph.
type Node interface {
	ConnectToNode(dst Node, output, input int)
	ConnectToParam(dst Param, output int)
	// Disconnect removes every outgoing connection.
	Disconnect()
	// DisconnectNode removes the outgoing connections to dst only.
	DisconnectNode(dst Node)
	NumberOfInputs() int
	NumberOfOutputs() int
}

type GainNode interface {
	Node
	Gain() Param
}

// BufferSourceNode plays an audio.Buffer. Like its Web Audio counterpart it
// is single use: it may be started at most once.
type BufferSourceNode interface {
	Node
	SetBuffer(b *audio.Buffer)
	Buffer() *audio.Buffer
	// Start schedules playback at when, from offset seconds into the
	// buffer, for duration seconds (0 plays to the end).
	Start(when, offset, duration float64) error
	Stop(when float64) error
	SetLoop(loop bool, start, end float64)
	PlaybackRate() Param
	// SetOnEnded registers the callback fired once playback ends or stops.
	SetOnEnded(f func())
}

type StereoPannerNode interface {
	Node
	Pan() Param
}

// Cone describes the directional response of a PannerNode.
type Cone struct {
	InnerAngle float64
	OuterAngle float64
	OuterGain  float64
}

// PannerNode positions a signal in 3D space. The engine performs its own
// distance attenuation, so the backend distance model is expected to be a
// pass-through.
type PannerNode interface {
	Node
	PositionX() Param
	PositionY() Param
	PositionZ() Param
	OrientationX() Param
	OrientationY() Param
	OrientationZ() Param
	SetCone(c Cone)
	Cone() Cone
}

// FilterType names a biquad response.
type FilterType string

const (
	LowPass  FilterType = "lowpass"
	HighPass FilterType = "highpass"
	LowShelf FilterType = "lowshelf"
)

type BiquadFilterNode interface {
	Node
	SetType(t FilterType)
	Type() FilterType
	Frequency() Param
	Q() Param
}

type AnalyserNode interface {
	Node
	SetWindowSize(n int)
	WindowSize() int
	// FloatTimeDomainData fills dst with the most recent len(dst) samples
	// of the down-mixed input, oldest first.
	FloatTimeDomainData(dst []float32)
}
