package gocalc

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// paint wraps s in the given ANSI color when enabled.
func paint(s, color string, enabled bool) string {
	if !enabled {
		return s
	}
	return color + s + ansiReset
}
