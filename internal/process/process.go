// Package process terminates the headless browser a rasterizer launched,
// together with the renderer and GPU helpers it forked.
package process

import (
	"errors"
	"fmt"
)

// ErrInvalidPID is returned for PIDs that do not name a child process.
var ErrInvalidPID = errors.New("invalid pid")

// KillProcessGroup kills pid and every process in its group.
// PIDs below 1 are rejected: 0 and negative values would address the
// caller's own process group.
func KillProcessGroup(pid int) error {
	if pid < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return killGroup(pid)
}
