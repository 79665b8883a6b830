// Package session runs one external process and turns its output pipes into
// an ordered feed of console events.
package session

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/osutil"
	"github.com/jingkaihe/skillhub/pkg/types/console"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// eventBuffer is the capacity of the events channel
const eventBuffer = 64

// State is the lifecycle state of a session
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateExited  State = "exited"
)

// Spec describes the process to launch
type Spec struct {
	Command string
	Args    []string
	Dir     string
	Env     map[string]string
}

// Session owns one OS process and its pipes
type Session struct {
	spec   Spec
	handle ProcessHandle
	events chan console.Event

	readers errgroup.Group
	closing chan struct{}
	done    chan struct{}

	mu        sync.Mutex
	state     State
	inputUsed bool
	status    ExitStatus
	waitErr   error

	closeOnce sync.Once
	closeErr  error
}

type options struct {
	factory HandleFactory
}

// Option is a function that configures how a session is started
type Option func(*options)

// WithHandleFactory replaces the os/exec process implementation
func WithHandleFactory(f HandleFactory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// Start spawns the process described by spec and begins draining its
// output. It does not block on the process. Cancelling ctx tears the
// session down as Close does.
func Start(ctx context.Context, spec Spec, opts ...Option) (*Session, error) {
	o := options{factory: NewExecHandle}
	for _, opt := range opts {
		opt(&o)
	}

	resolved, err := resolve(spec)
	if err != nil {
		return nil, err
	}

	handle, err := o.factory(resolved)
	if err != nil {
		return nil, &SpawnError{Command: spec.Command, Err: err}
	}
	if err := handle.Spawn(); err != nil {
		return nil, &SpawnError{Command: spec.Command, Err: err}
	}

	s := &Session{
		spec:    resolved,
		handle:  handle,
		events:  make(chan console.Event, eventBuffer),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
		state:   StateRunning,
	}

	log := logger.G(ctx).WithField("pid", handle.Pid()).WithField("command", resolved.Command)
	log.Debug("session started")

	s.readers.Go(func() error { return s.drain(ctx, Stdout) })
	s.readers.Go(func() error { return s.drain(ctx, Stderr) })
	go s.supervise(ctx)
	go s.watchContext(ctx)

	return s, nil
}

// resolve checks the working directory and locates the executable
func resolve(spec Spec) (Spec, error) {
	if spec.Command == "" {
		return spec, &SpawnError{Command: spec.Command, Err: errors.New("empty command")}
	}
	if spec.Dir != "" {
		abs, err := filepath.Abs(spec.Dir)
		if err != nil {
			return spec, &SpawnError{Command: spec.Command, Err: err}
		}
		spec.Dir = abs
		info, err := os.Stat(spec.Dir)
		if err != nil {
			return spec, &SpawnError{Command: spec.Command, Err: errors.Wrap(err, "invalid working directory")}
		}
		if !info.IsDir() {
			return spec, &SpawnError{Command: spec.Command, Err: errors.Errorf("working directory %s is not a directory", spec.Dir)}
		}
	}
	command := spec.Command
	if spec.Dir != "" && !filepath.IsAbs(command) && strings.ContainsRune(command, filepath.Separator) {
		command = filepath.Join(spec.Dir, command)
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return spec, &SpawnError{Command: spec.Command, Err: err}
	}
	spec.Command = path
	return spec, nil
}

// drain reads one stream until EOF, emitting an event per non-empty chunk.
// A multi-byte character cut by the read boundary is carried into the next
// chunk; whatever is still incomplete at EOF is decoded lossily.
func (s *Session) drain(ctx context.Context, stream Stream) error {
	log := logger.G(ctx).WithField("stream", stream.String())
	var pending []byte
	for {
		chunk, err := s.handle.ReadChunk(stream)
		data := chunk
		if len(pending) > 0 {
			data = append(pending, chunk...)
			pending = nil
		}
		if err == nil {
			data, pending = splitIncompleteRune(data)
		}
		if text := decodeChunk(data); text != "" {
			select {
			case s.events <- console.NewEvent(stream.Kind(), text):
			case <-s.closing:
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.WithError(err).Debug("stream reader retired on error")
			return &IOError{Op: "read " + stream.String(), Err: err}
		}
	}
}

// splitIncompleteRune holds back a trailing UTF-8 sequence that is valid so
// far but truncated
func splitIncompleteRune(b []byte) ([]byte, []byte) {
	for i := len(b) - 1; i >= 0 && i > len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return b, nil
		}
		return b[:i], append([]byte(nil), b[i:]...)
	}
	return b, nil
}

// decodeChunk drops invalid UTF-8 and trims surrounding whitespace
func decodeChunk(chunk []byte) string {
	if len(chunk) == 0 {
		return ""
	}
	return strings.TrimSpace(strings.ToValidUTF8(string(chunk), ""))
}

// supervise waits for both readers, then reaps the process
func (s *Session) supervise(ctx context.Context) {
	readErr := s.readers.Wait()
	close(s.events)

	status, err := s.handle.Wait()
	if err == nil {
		err = readErr
	}

	s.mu.Lock()
	s.state = StateExited
	s.status = status
	s.waitErr = err
	s.mu.Unlock()

	logger.G(ctx).WithField("pid", s.handle.Pid()).WithField("status", status.String()).Debug("session exited")
	close(s.done)
}

func (s *Session) watchContext(ctx context.Context) {
	select {
	case <-ctx.Done():
		_ = s.Close()
	case <-s.done:
	}
}

// Events returns the event feed. It is closed once both output streams
// have been drained. Within a stream events keep byte order; there is no
// ordering between stdout and stderr.
func (s *Session) Events() <-chan console.Event {
	return s.events
}

// SendInput writes text to the process and closes its input. Only the
// first call can write; later calls fail with an IOError.
func (s *Session) SendInput(text string) error {
	return s.SendInputWith(text, nil)
}

// SendInputWith is SendInput with a hook called once the input has been
// accepted, right before it is written. Rejected input never reaches it.
func (s *Session) SendInputWith(text string, accepted func()) error {
	s.mu.Lock()
	if s.inputUsed {
		s.mu.Unlock()
		return &IOError{Op: "write", Err: ErrInputClosed}
	}
	s.inputUsed = true
	state := s.state
	s.mu.Unlock()

	if state != StateRunning || !osutil.IsProcessAlive(s.handle.Pid()) {
		return &IOError{Op: "write", Err: ErrNoProcess}
	}
	if accepted != nil {
		accepted()
	}

	var result error
	if err := s.handle.WriteInput([]byte(text)); err != nil {
		result = &IOError{Op: "write", Err: err}
	}
	if err := s.handle.CloseInput(); err != nil && result == nil {
		result = &IOError{Op: "close", Err: err}
	}
	return result
}

// Wait blocks until the process exited and both streams were drained.
// Every caller observes the same status.
func (s *Session) Wait(ctx context.Context) (ExitStatus, error) {
	select {
	case <-s.done:
	case <-ctx.Done():
		return ExitStatus{}, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.waitErr
}

// Done is closed when the session has exited
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pid returns the process id
func (s *Session) Pid() int {
	return s.handle.Pid()
}

// Spec returns the resolved launch description
func (s *Session) Spec() Spec {
	return s.spec
}

// Close kills the process group if it is still running, closes the input
// and waits for the readers to retire. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closing)

		var result error
		if s.State() == StateRunning {
			if err := s.handle.Kill(); err != nil {
				result = multierror.Append(result, err)
			}
		}
		if err := s.handle.CloseInput(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "failed to close input"))
		}
		<-s.done
		s.closeErr = result
	})
	return s.closeErr
}
