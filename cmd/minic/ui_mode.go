package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// setupColor applies --color to fatih/color, which the error renderer and
// the version banner use.
func setupColor(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	mode, err := readColorMode(value)
	if err != nil {
		return err
	}
	switch mode {
	case uiModeOn:
		color.NoColor = false
	case uiModeOff:
		color.NoColor = true
	}
	return nil
}

func readColorMode(value string) (uiMode, error) {
	mode, err := readUIMode(value)
	if err != nil {
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
	return mode, nil
}
