// SPDX-License-Identifier: MIT

//go:build !windows

package gitx

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup starts git in its own process group so cancellation
// also reaches helpers it spawns (ssh, credential helpers, hooks).
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
