package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// autoSwitch is the value of a tri-state flag such as --ui or --color. Auto
// turns the feature on only when the stream it targets is a terminal.
type autoSwitch uint8

const (
	switchAuto autoSwitch = iota
	switchOn
	switchOff
)

func (s autoSwitch) String() string {
	switch s {
	case switchOn:
		return "on"
	case switchOff:
		return "off"
	default:
		return "auto"
	}
}

func parseAutoSwitch(flag, value string) (autoSwitch, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return switchAuto, nil
	case "on", "always":
		return switchOn, nil
	case "off", "never":
		return switchOff, nil
	}
	return switchAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// enabled settles the switch against f.
func (s autoSwitch) enabled(f *os.File) bool {
	switch s {
	case switchOn:
		return true
	case switchOff:
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// useColor reads --color for output written to f. A bad value was already
// rejected by setupRun, so it falls back to plain output here.
func useColor(cmd *cobra.Command, f *os.File) bool {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	mode, err := parseAutoSwitch("color", value)
	if err != nil {
		return false
	}
	return mode.enabled(f)
}
