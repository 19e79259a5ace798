//go:build !windows

package actions

import (
	"os/exec"
	"syscall"
)

// shellSysProcAttr puts the shell in its own process group so a timeout
// kill reaches the whole pipeline, not just the shell itself.
func shellSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killShellProcess kills the shell's process group
func killShellProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
