//go:build windows

package actions

import (
	"os/exec"
	"syscall"
)

// shellSysProcAttr returns default attributes; process groups are not
// available on Windows.
func shellSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}

// killShellProcess kills the shell process directly
func killShellProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
