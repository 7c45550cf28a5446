package ui

import (
	"fmt"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
)

// ANSI256 color codes.
const (
	colorAccent  = 74  // blue
	colorMuted   = 245 // medium gray
	colorOK      = 114 // green
	colorWarn    = 214 // orange
	colorDanger  = 203 // red
	colorPending = 250 // light gray
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	return render(colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	return render(colorMuted, s)
}

// RenderStatus returns the status name colored by severity: synced green,
// retrying orange, failed and dead red, pending gray.
func RenderStatus(status model.SyncStatus) string {
	return RenderStatusLabel(status, status.String())
}

// RenderStatusLabel colors an arbitrary label by the status's severity.
// Callers that need column alignment must pad the label before coloring;
// the ANSI escapes are invisible to the terminal but not to fmt's width
// verbs.
func RenderStatusLabel(status model.SyncStatus, label string) string {
	switch status {
	case model.StatusSynced:
		return render(colorOK, label)
	case model.StatusRetrying:
		return render(colorWarn, label)
	case model.StatusFailed, model.StatusDead:
		return render(colorDanger, label)
	default:
		return render(colorPending, label)
	}
}

func render(color int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
