//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// killGroup force-kills pid and its child tree with taskkill.
func killGroup(pid int) error {
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
