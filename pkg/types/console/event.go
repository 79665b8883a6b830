// Package console defines the transcript events produced by an agent
// session and the sinks that consume them.
package console

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which channel an event was observed on
type Kind string

const (
	// KindStdout is output read from the process standard output
	KindStdout Kind = "stdout"
	// KindStderr is output read from the process standard error
	KindStderr Kind = "stderr"
	// KindInputEcho is text the user forwarded to the process standard input
	KindInputEcho Kind = "input-echo"
	// KindSystem is a notice generated by the controller, e.g. the exit status
	KindSystem Kind = "system"
)

// Event is one unit of output or input in a session transcript
type Event struct {
	ID   string    `json:"id"`
	Kind Kind      `json:"kind"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// NewEvent creates an event with a fresh ID
func NewEvent(kind Kind, text string) Event {
	return Event{
		ID:   uuid.New().String(),
		Kind: kind,
		Text: text,
		Time: time.Now(),
	}
}

// IsError reports whether the event came from standard error
func (e Event) IsError() bool {
	return e.Kind == KindStderr
}

func (e Event) String() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Text)
}

// Sink receives transcript events in the order a session produced them
type Sink interface {
	HandleEvent(event Event)
}

// SinkFunc adapts a plain function to a Sink
type SinkFunc func(event Event)

// HandleEvent calls f(event)
func (f SinkFunc) HandleEvent(event Event) {
	f(event)
}

// ChannelSink forwards events through a channel (for the TUI)
type ChannelSink struct {
	EventCh chan Event
}

// HandleEvent sends the event on the channel
func (s *ChannelSink) HandleEvent(event Event) {
	s.EventCh <- event
}

// DiscardSink drops every event
type DiscardSink struct{}

// HandleEvent does nothing
func (DiscardSink) HandleEvent(Event) {}
