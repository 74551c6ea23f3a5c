//go:build !linux && !darwin

package flamegraph

import (
	"os/exec"
	"time"
)

func setProcessGroup(cmd *exec.Cmd) {
	cmd.WaitDelay = time.Second
}
