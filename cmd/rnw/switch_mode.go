package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// switchMode is the value of a tri-state flag such as --ui or --color.
type switchMode string

const (
	switchAuto switchMode = "auto"
	switchOn   switchMode = "on"
	switchOff  switchMode = "off"
)

func parseSwitch(flag, value string) (switchMode, error) {
	mode := switchMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return switchAuto, nil
	case switchAuto, switchOn, switchOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// switchFlag reads a tri-state flag; persistent flags are looked up too.
func switchFlag(cmd *cobra.Command, flag string) (switchMode, error) {
	value, err := cmd.Flags().GetString(flag)
	if err != nil {
		return "", err
	}
	return parseSwitch(flag, value)
}

// enabledFor resolves auto against f: on only when f is a terminal.
func (m switchMode) enabledFor(f *os.File) bool {
	switch m {
	case switchOn:
		return true
	case switchOff:
		return false
	default:
		return isTerminal(f)
	}
}
