// Package midi feeds note and controller messages from a MIDI input port into
// the control loop.
package midi

import (
	"fmt"
	"io"
	"log"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/icco/hathor/internal/control"
)

// ControllerAllNotesOff is the channel-mode message that silences every voice.
const ControllerAllNotesOff = 123

// Message is one decoded input message.
type Message struct {
	Channel uint8
	Event   control.Event

	// Set for control changes other than all-notes-off.
	IsController bool
	Controller   uint8
	Value        uint8
}

func (m Message) String() string {
	if m.IsController {
		return fmt.Sprintf("Ch%d cc %d val %d", m.Channel+1, m.Controller, m.Value)
	}
	return fmt.Sprintf("Ch%d %s", m.Channel+1, m.Event)
}

// Decode interprets raw MIDI bytes. Only note on, note off and control change
// are recognised.
func Decode(data []byte) (Message, bool) {
	if len(data) < 3 {
		return Message{}, false
	}

	status := data[0]
	msg := Message{Channel: status & 0x0F}
	switch status & 0xF0 {
	case 0x90: // Note On
		msg.Event = control.Event{Kind: control.NoteOn, Note: data[1], Velocity: data[2]}
	case 0x80: // Note Off
		msg.Event = control.Event{Kind: control.NoteOff, Note: data[1]}
	case 0xB0: // Control Change
		if data[1] == ControllerAllNotesOff {
			msg.Event = control.Event{Kind: control.AllNotesOff}
			break
		}
		msg.IsController = true
		msg.Controller = data[1]
		msg.Value = data[2]
	default:
		return Message{}, false
	}
	return msg, true
}

// Pusher accepts note events without blocking.
type Pusher interface {
	Push(ev control.Event) bool
}

// Knobs receives mapped controller values.
type Knobs interface {
	SetFromController(ch control.Channel, value uint8)
}

// Input listens on one MIDI port. Note events go to the queue, mapped
// controllers move panel knobs.
type Input struct {
	queue       Pusher
	knobs       Knobs
	controllers map[uint8]control.Channel
	logger      *log.Logger
	observe     func(Message)

	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
}

// Option configures an Input.
type Option func(*Input)

// WithLogger sets the logger used for dropped events and port status.
func WithLogger(l *log.Logger) Option {
	return func(i *Input) { i.logger = l }
}

// WithObserver registers fn to see every decoded message. It runs on the
// driver's callback goroutine.
func WithObserver(fn func(Message)) Option {
	return func(i *Input) { i.observe = fn }
}

// NewInput returns an unopened input.
func NewInput(queue Pusher, knobs Knobs, controllers map[uint8]control.Channel, opts ...Option) *Input {
	i := &Input{
		queue:       queue,
		knobs:       knobs,
		controllers: controllers,
		logger:      log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// OpenVirtual creates a virtual input port named name and starts listening.
func (i *Input) OpenVirtual(name string) error {
	driver, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}

	in, err := driver.OpenVirtualIn(name)
	if err != nil {
		driver.Close()
		return fmt.Errorf("failed to create virtual MIDI port: %w", err)
	}
	return i.listen(driver, in)
}

// Open listens on the first input port whose name starts with prefix.
func (i *Input) Open(prefix string) error {
	driver, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}

	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return fmt.Errorf("failed to list MIDI inputs: %w", err)
	}

	var in drivers.In
	for _, candidate := range ins {
		if strings.HasPrefix(candidate.String(), prefix) {
			in = candidate
			break
		}
	}
	if in == nil {
		driver.Close()
		return fmt.Errorf("no MIDI input matching %q", prefix)
	}
	if err := in.Open(); err != nil {
		driver.Close()
		return fmt.Errorf("failed to open MIDI input %s: %w", in.String(), err)
	}
	return i.listen(driver, in)
}

func (i *Input) listen(driver *rtmididrv.Driver, in drivers.In) error {
	stop, err := in.Listen(func(data []byte, timestamp int32) {
		i.Handle(data)
	}, drivers.ListenConfig{})
	if err != nil {
		in.Close()
		driver.Close()
		return fmt.Errorf("failed to listen to MIDI port: %w", err)
	}

	i.driver = driver
	i.in = in
	i.stop = stop
	i.logger.Printf("listening on %s", in.String())
	return nil
}

// Port returns the name of the open port, or "" when closed.
func (i *Input) Port() string {
	if i.in == nil {
		return ""
	}
	return i.in.String()
}

// Handle decodes data and routes it. Unrecognised messages are ignored.
func (i *Input) Handle(data []byte) {
	msg, ok := Decode(data)
	if !ok {
		return
	}

	if msg.IsController {
		if ch, mapped := i.controllers[msg.Controller]; mapped && i.knobs != nil {
			i.knobs.SetFromController(ch, msg.Value)
		}
	} else if !i.queue.Push(msg.Event) {
		i.logger.Printf("event queue full, dropped %s", msg.Event)
	}

	if i.observe != nil {
		i.observe(msg)
	}
}

// Close stops listening and releases the port.
func (i *Input) Close() error {
	if i.stop != nil {
		i.stop()
		i.stop = nil
	}
	if i.in != nil {
		i.in.Close()
		i.in = nil
	}
	if i.driver != nil {
		err := i.driver.Close()
		i.driver = nil
		return err
	}
	return nil
}

// Ports lists the names of the available input ports.
func Ports() []string {
	ins := gomidi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}
