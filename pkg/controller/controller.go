// Package controller turns "run an instruction" and "send a follow-up" into
// agent subprocess sessions and keeps the resulting transcript.
package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/session"
	"github.com/jingkaihe/skillhub/pkg/types/console"
	skilltypes "github.com/jingkaihe/skillhub/pkg/types/skills"
	"github.com/pkg/errors"
)

var (
	// ErrNoActiveSession is returned when Run is called while another run
	// is still in flight
	ErrNoActiveSession = errors.New("a session is already running")
	// ErrNotRunning is returned when follow-up text has no session to go to
	ErrNotRunning = errors.New("no session is running")
	// ErrEmptyInstruction is returned for blank instructions or follow-ups
	ErrEmptyInstruction = errors.New("instruction is empty")
	// ErrNotInstallable is returned for skills without a GitHub URL
	ErrNotInstallable = errors.New("skill has no GitHub URL")
)

// ExitError reports that the agent finished with a non-zero status
type ExitError struct {
	Status session.ExitStatus
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("agent finished with %s", e.Status)
}

// Controller owns at most one running session and its transcript
type Controller struct {
	launcher    Launcher
	sessionOpts []session.Option

	mu         sync.Mutex
	running    bool
	active     *session.Session
	sink       console.Sink
	transcript []console.Event
}

// Option is a function that configures a Controller
type Option func(*Controller)

// WithSessionOptions passes options through to every session started
func WithSessionOptions(opts ...session.Option) Option {
	return func(c *Controller) {
		c.sessionOpts = append(c.sessionOpts, opts...)
	}
}

// New creates a controller launching agents as described by launcher
func New(launcher Launcher, opts ...Option) *Controller {
	c := &Controller{launcher: launcher.withDefaults()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Launcher returns the resolved launch configuration
func (c *Controller) Launcher() Launcher {
	return c.launcher
}

// Run clears the transcript, starts the agent with instruction and forwards
// every event to sink until the process exits. A second Run while one is in
// flight fails with ErrNoActiveSession. A non-zero exit is returned as
// *ExitError once the transcript is complete.
func (c *Controller) Run(ctx context.Context, instruction string, sink console.Sink) error {
	if strings.TrimSpace(instruction) == "" {
		return ErrEmptyInstruction
	}
	if sink == nil {
		sink = console.DiscardSink{}
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	c.running = true
	c.sink = sink
	c.transcript = nil
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.active = nil
		c.sink = nil
		c.mu.Unlock()
	}()

	log := logger.G(ctx).WithField("workspace", c.launcher.Workspace)
	log.WithField("instruction", instruction).Info("starting agent session")

	sess, err := session.Start(ctx, c.launcher.Spec(instruction), c.sessionOpts...)
	if err != nil {
		c.record(sink, console.NewEvent(console.KindSystem, err.Error()))
		return err
	}

	c.mu.Lock()
	c.active = sess
	c.mu.Unlock()

	for ev := range sess.Events() {
		c.record(sink, ev)
	}

	status, err := sess.Wait(ctx)
	if err != nil {
		closeErr := sess.Close()
		c.record(sink, console.NewEvent(console.KindSystem, fmt.Sprintf("session failed: %v", err)))
		if closeErr != nil {
			log.WithError(closeErr).Warn("failed to tear down session")
		}
		return errors.Wrap(err, "agent session failed")
	}

	c.record(sink, console.NewEvent(console.KindSystem, fmt.Sprintf("process finished with %s", status)))
	log.WithField("status", status.String()).Info("agent session finished")

	if !status.Success() {
		return &ExitError{Status: status}
	}
	return nil
}

// record appends to the transcript, then forwards to sink
func (c *Controller) record(sink console.Sink, ev console.Event) {
	c.mu.Lock()
	c.transcript = append(c.transcript, ev)
	c.mu.Unlock()
	sink.HandleEvent(ev)
}

// SendFollowUp forwards text to the running agent's input and echoes it
// into the transcript. Input is one-shot per session; rejected input is
// not echoed.
func (c *Controller) SendFollowUp(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInstruction
	}

	c.mu.Lock()
	sess, sink := c.active, c.sink
	c.mu.Unlock()
	if sess == nil {
		return ErrNotRunning
	}

	echoed := false
	err := sess.SendInputWith(text, func() {
		echoed = true
		c.record(sink, console.NewEvent(console.KindInputEcho, text))
	})
	if err != nil && echoed {
		c.record(sink, console.NewEvent(console.KindSystem, fmt.Sprintf("input was not delivered: %v", err)))
	}
	return err
}

// Transcript returns a copy of the events of the current or last run
func (c *Controller) Transcript() []console.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]console.Event, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Running reports whether a run is in flight
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Close tears down the active session, if any
func (c *Controller) Close() error {
	c.mu.Lock()
	sess := c.active
	c.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Close()
}

// InstallInstruction composes the instruction that asks the agent to
// download skill into the workspace skills directory.
func (c *Controller) InstallInstruction(skill skilltypes.SkillRecord) (string, error) {
	if !skill.Installable() {
		return "", errors.Wrapf(ErrNotInstallable, "skill %q", skill.Name)
	}
	return fmt.Sprintf("Download skill %s into %s", skill.GitHubURL, c.launcher.SkillsDir), nil
}
