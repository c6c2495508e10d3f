package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Notification is one upcoming-task alert.
type Notification struct {
	TaskID string
	Title  string
	Body   string
	At     time.Time
}

type Desktop interface {
	Send(Notification) error
}

type NoopDesktop struct{}

func (NoopDesktop) Send(Notification) error { return nil }

// ExecDesktop shells out to notify-send on Linux and osascript on macOS.
type ExecDesktop struct{}

func (ExecDesktop) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return fmt.Errorf("notify: desktop notifications unsupported on %s", runtime.GOOS)
	}
}

// DesktopAvailable reports whether the platform notifier binary is on PATH.
func DesktopAvailable() bool {
	var bin string
	switch runtime.GOOS {
	case "linux":
		bin = "notify-send"
	case "darwin":
		bin = "osascript"
	default:
		return false
	}
	_, err := exec.LookPath(bin)
	return err == nil
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

type Permission int

const (
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "default"
	}
}

const (
	ModeAuto = "auto"
	ModeOn   = "on"
	ModeOff  = "off"
)

// ResolvePermission decides whether notifications may be shown. "off" denies,
// "on" grants, and "auto" asks probe once; an unknown mode stays undecided.
func ResolvePermission(mode string, probe func() bool) Permission {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeOff:
		return PermissionDenied
	case ModeOn:
		return PermissionGranted
	case ModeAuto, "":
		if probe != nil && probe() {
			return PermissionGranted
		}
		return PermissionDenied
	default:
		return PermissionDefault
	}
}
