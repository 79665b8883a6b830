package session

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/jingkaihe/skillhub/pkg/osutil"
	"github.com/jingkaihe/skillhub/pkg/types/console"
	"github.com/pkg/errors"
)

// chunkSize bounds a single read from an output pipe
const chunkSize = 4096

// Stream identifies one of the process output pipes
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Kind is the console event kind emitted for chunks of this stream
func (s Stream) Kind() console.Kind {
	if s == Stderr {
		return console.KindStderr
	}
	return console.KindStdout
}

// ExitStatus is the exit code of a finished process. A negative code means
// the process was terminated by a signal.
type ExitStatus struct {
	Code int `json:"code"`
}

// Success reports whether the process exited with code 0
func (s ExitStatus) Success() bool {
	return s.Code == 0
}

func (s ExitStatus) String() string {
	if s.Code < 0 {
		return "killed"
	}
	return fmt.Sprintf("exit status %d", s.Code)
}

// ProcessHandle is the platform process capability the session drives.
// ReadChunk returns io.EOF once a stream is drained and closed.
type ProcessHandle interface {
	Spawn() error
	ReadChunk(stream Stream) ([]byte, error)
	WriteInput(p []byte) error
	CloseInput() error
	Wait() (ExitStatus, error)
	Kill() error
	Pid() int
}

// HandleFactory builds a handle for a resolved spec
type HandleFactory func(spec Spec) (ProcessHandle, error)

// execHandle is the os/exec backed ProcessHandle
type execHandle struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	mu          sync.Mutex
	inputClosed bool
	exited      bool
}

// NewExecHandle returns a ProcessHandle that runs spec with os/exec in its
// own process group.
func NewExecHandle(spec Spec) (ProcessHandle, error) {
	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	env := spec.Env
	if spec.Dir != "" {
		if _, ok := env["PWD"]; !ok {
			env = make(map[string]string, len(spec.Env)+1)
			for k, v := range spec.Env {
				env[k] = v
			}
			env["PWD"] = spec.Dir
		}
	}
	cmd.Env = MergeEnv(os.Environ(), env)
	osutil.SetProcessGroup(cmd)
	return &execHandle{cmd: cmd}, nil
}

func (h *execHandle) Spawn() error {
	var err error
	if h.stdin, err = h.cmd.StdinPipe(); err != nil {
		return errors.Wrap(err, "failed to create stdin pipe")
	}
	if h.stdout, err = h.cmd.StdoutPipe(); err != nil {
		return errors.Wrap(err, "failed to create stdout pipe")
	}
	if h.stderr, err = h.cmd.StderrPipe(); err != nil {
		return errors.Wrap(err, "failed to create stderr pipe")
	}
	return h.cmd.Start()
}

func (h *execHandle) ReadChunk(stream Stream) ([]byte, error) {
	r := h.stdout
	if stream == Stderr {
		r = h.stderr
	}
	buf := make([]byte, chunkSize)
	n, err := r.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		return nil, nil
	}
	if errors.Is(err, os.ErrClosed) {
		return nil, io.EOF
	}
	return nil, err
}

func (h *execHandle) WriteInput(p []byte) error {
	h.mu.Lock()
	closed := h.inputClosed
	h.mu.Unlock()
	if closed {
		return ErrInputClosed
	}
	_, err := h.stdin.Write(p)
	return err
}

func (h *execHandle) CloseInput() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inputClosed || h.stdin == nil {
		return nil
	}
	h.inputClosed = true
	if err := h.stdin.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

// Wait must only be called once both output streams returned io.EOF,
// since exec closes the read ends when it reaps the process.
func (h *execHandle) Wait() (ExitStatus, error) {
	err := h.cmd.Wait()

	h.mu.Lock()
	h.exited = true
	h.inputClosed = true
	h.mu.Unlock()

	if err == nil {
		return ExitStatus{Code: 0}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExitStatus{Code: exitErr.ExitCode()}, nil
	}
	return ExitStatus{Code: -1}, err
}

func (h *execHandle) Kill() error {
	h.mu.Lock()
	exited := h.exited
	h.mu.Unlock()
	if exited || h.cmd.Process == nil {
		return nil
	}
	return osutil.KillProcessGroup(h.cmd.Process.Pid)
}

func (h *execHandle) Pid() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}
