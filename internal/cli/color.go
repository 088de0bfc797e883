package cli

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// useColor decides whether reports written to f are styled. mode is one of
// auto, always or never; auto respects NO_COLOR, CLICOLOR_FORCE and TTY
// detection.
func useColor(mode string, f *os.File) bool {
	switch mode {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
