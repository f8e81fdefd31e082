package control

// Channel addresses one analog reading. The order follows the panel wiring.
type Channel int

const (
	MasterKnob Channel = iota
	ShapeKnob
	DetuneKnob
	FilterSwitchChannel
	CutoffKnob
	ResonanceKnob
	LFOSwitchChannel
	LFORateKnob
	LFODepthKnob
	AttackKnob
	DecayReleaseKnob
	ReverbKnob
	ChorusRateKnob
	ChorusDepthKnob
	NumChannels
)

var channelNames = [NumChannels]string{
	MasterKnob:          "master",
	ShapeKnob:           "shape",
	DetuneKnob:          "detune",
	FilterSwitchChannel: "filter-switch",
	CutoffKnob:          "cutoff",
	ResonanceKnob:       "resonance",
	LFOSwitchChannel:    "lfo-switch",
	LFORateKnob:         "lfo-rate",
	LFODepthKnob:        "lfo-depth",
	AttackKnob:          "attack",
	DecayReleaseKnob:    "decay-release",
	ReverbKnob:          "reverb",
	ChorusRateKnob:      "chorus-rate",
	ChorusDepthKnob:     "chorus-depth",
}

func (c Channel) String() string {
	if c < 0 || c >= NumChannels {
		return "unknown"
	}
	return channelNames[c]
}

// IsKnob reports whether the channel carries a potentiometer. The two switch
// placeholders do not.
func (c Channel) IsKnob() bool {
	return c >= 0 && c < NumChannels && c != FilterSwitchChannel && c != LFOSwitchChannel
}

// ChannelByName looks a channel up by its String name.
func ChannelByName(name string) (Channel, bool) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return 0, false
}

// Switch addresses one digital input.
type Switch int

const (
	FilterSwitch Switch = iota
	LFOSwitch
	NumSwitches
)

func (s Switch) String() string {
	switch s {
	case FilterSwitch:
		return "filter"
	case LFOSwitch:
		return "lfo"
	default:
		return "unknown"
	}
}

// Inputs is the panel as the control loop sees it.
//
// Analog returns the raw reading of a channel in [0,1]. The hardware reads
// inverted: a knob turned fully up reads 0.
//
// Level returns the raw level of a pulled-up switch: true while open, false
// while pressed or closed.
type Inputs interface {
	Analog(ch Channel) float64
	Level(sw Switch) bool
}
