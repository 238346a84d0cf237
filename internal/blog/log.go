// Package blog is the small ambient logging wrapper shared by spvstore and
// checkpoints: structured events go through slog, while the handful of
// human-salient console lines (migration start, clear) get a
// color highlight, mirroring the mixed log.Printf/slog.Info/color.* style
// used throughout the teacher's manager/meta package.
package blog

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
)

// Info logs a structured informational event.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn highlights a console line in yellow in addition to the structured
// log record, for events an operator should notice but that aren't errors
// (a migration running, a store being cleared).
func Warn(format string, a ...any) {
	color.Yellow(format, a...)
	slog.Warn(fmt.Sprintf(format, a...))
}

// Error highlights a console line in red in addition to the structured log
// record, for conditions that abort the current operation.
func Error(format string, a ...any) {
	color.Red(format, a...)
	slog.Error(fmt.Sprintf(format, a...))
}
