//go:build unix

package osutil

import (
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

// SetProcessGroup configures the command to run in its own process group
// so that the whole tree can be signalled at once.
func SetProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup sends SIGKILL to the process group led by pid.
// A group that has already gone away is not an error.
func KillProcessGroup(pid int) error {
	if pid <= 0 {
		return nil
	}
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return errors.Wrapf(err, "failed to kill process group %d", pid)
}

// SetProcessGroupKill makes context cancellation of cmd kill its whole
// process group. Must be called before cmd.Start().
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return KillProcessGroup(cmd.Process.Pid)
	}
}
