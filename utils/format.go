package utils

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// MessageType selects the colour a CLI message is printed with.
type MessageType int

// The message types used across the CLI.
const (
	DefaultMessage MessageType = iota
	SuccessMessage
	ErrorMessage
	StatusMessage
)

// ANSI colours used across the CLI.
const (
	DefaultColor = "\x1b[0m"
	StatusColor  = "\x1b[36m"
	SuccessColor = "\x1b[32m"
	ErrorColor   = "\x1b[31m"
)

var messageColors = map[MessageType]string{
	DefaultMessage: DefaultColor,
	SuccessMessage: SuccessColor,
	ErrorMessage:   ErrorColor,
	StatusMessage:  StatusColor,
}

// DecorateText wraps s in the colour of msgType and resets the terminal colour
// afterwards. Unknown message types are returned unchanged.
func DecorateText(s string, msgType MessageType) string {
	color, ok := messageColors[msgType]
	if !ok {
		return s
	}
	return color + s + DefaultColor
}

// FormatTime renders a duration as seconds, minutes or hours, whichever is
// the largest unit reached.
func FormatTime(d time.Duration) string {
	d = d.Round(10 * time.Millisecond)
	secs := (d % time.Minute).Seconds()
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %.2fs", int(d/time.Minute), secs)
	default:
		return fmt.Sprintf("%dh %dm %.2fs", int(d/time.Hour), int(d%time.Hour/time.Minute), secs)
	}
}

// FormatBytes renders a byte count the way file managers do (e.g. "42 kB").
func FormatBytes(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
