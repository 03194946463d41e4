package ui

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// AskConfirm asks a yes/no question. Answering no is not an error.
func AskConfirm(label string, defaultYes bool) (bool, error) {
	def := "n"
	if defaultYes {
		def = "y"
	}
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Default:   def,
	}
	answer, err := p.Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return false, ErrCancelled
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case err != nil:
		return false, err
	}
	if answer == "" {
		return defaultYes, nil
	}
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes"), nil
}

// AskText prompts for a value, offering def and checking it with validate.
func AskText(label, def string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Validate:  validate,
	}
	value, err := p.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}
