//go:build !unix

package ai

import osexec "os/exec"

func setProcessGroup(cmd *osexec.Cmd) {}
