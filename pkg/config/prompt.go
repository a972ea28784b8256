package config

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/pi/pkg/logging"
)

// Prompter collects exactly one line of text from the user for a
// configuration key that has no value from any file source
type Prompter interface {
	Ask(key string) (string, error)
}

// TerminalPrompter reads answers interactively from the terminal
type TerminalPrompter struct{}

// Ask implements Prompter
func (TerminalPrompter) Ask(key string) (string, error) {
	return pterm.DefaultInteractiveTextInput.Show(fmt.Sprintf("Enter a value for %q", key))
}

// NoInputPrompter answers every prompt with the empty string. Used
// with --no-input so unattended runs never block on stdin.
type NoInputPrompter struct{}

// Ask implements Prompter
func (NoInputPrompter) Ask(key string) (string, error) {
	logger := logging.GetLogger("config")
	logger.Warn().Str("key", key).Msg("Prompting disabled, using empty value")
	return "", nil
}

// StaticPrompter answers prompts from a fixed map. Keys with no entry
// answer with the empty string.
type StaticPrompter map[string]string

// Ask implements Prompter
func (p StaticPrompter) Ask(key string) (string, error) {
	return p[key], nil
}
