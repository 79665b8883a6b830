//go:build windows

package osutil

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

// SetProcessGroup starts the command in a new process group
func SetProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= syscall.CREATE_NEW_PROCESS_GROUP
}

// KillProcessGroup terminates the process with the given pid. Windows has
// no Unix-style process groups, so children may outlive it.
func KillProcessGroup(pid int) error {
	if pid <= 0 {
		return nil
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.Wrapf(err, "failed to kill process %d", pid)
	}
	return nil
}

// SetProcessGroupKill makes context cancellation of cmd terminate it
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return KillProcessGroup(cmd.Process.Pid)
	}
}
