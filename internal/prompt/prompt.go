// Package prompt collects interactive input for the CLI.
package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"devenv-keeper/internal/models"

	"github.com/charmbracelet/huh"
)

type Option struct {
	Label string
	Value string
}

// Prompter asks the user for missing values
type Prompter interface {
	Select(title string, options []Option) (string, error)
	Confirm(title string) (bool, error)
	Number(title string, def, min, max int) (int, error)
}

// Terminal Prompter rendering huh forms
type Terminal struct{}

func NewTerminal() *Terminal {
	return &Terminal{}
}

func run(field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return models.ErrConfirmationDeclined
	}
	return err
}

func (t *Terminal) Select(title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("nothing to choose from: %w", models.ErrNotFound)
	}
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.Label, o.Value)
	}
	value := options[0].Value
	sel := huh.NewSelect[string]().Title(title).Options(opts...).Value(&value)
	if err := run(sel); err != nil {
		return "", err
	}
	return value, nil
}

// Confirm defaults to no, an aborted prompt counts as no
func (t *Terminal) Confirm(title string) (bool, error) {
	ok := false
	c := huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ok)
	if err := run(c); err != nil {
		if errors.Is(err, models.ErrConfirmationDeclined) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func (t *Terminal) Number(title string, def, min, max int) (int, error) {
	raw := strconv.Itoa(def)
	in := huh.NewInput().Title(title).Value(&raw).Validate(func(s string) error {
		_, err := ParseNumber(s, min, max)
		return err
	})
	if err := run(in); err != nil {
		return 0, err
	}
	return ParseNumber(raw, min, max)
}

// ParseNumber parses an integer within [min,max]
func ParseNumber(s string, min, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a number: %w", s, models.ErrInvalidInput)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("enter a value between %d and %d: %w", min, max, models.ErrInvalidInput)
	}
	return n, nil
}

// Scripted Prompter answering from fixed queues, for non-interactive use
type Scripted struct {
	Selections []string
	Confirms   []bool
	Numbers    []int
	Asked      []string
}

func (s *Scripted) Select(title string, options []Option) (string, error) {
	s.Asked = append(s.Asked, title)
	if len(s.Selections) == 0 {
		return "", fmt.Errorf("no scripted selection for %q: %w", title, models.ErrInvalidInput)
	}
	v := s.Selections[0]
	s.Selections = s.Selections[1:]
	return v, nil
}

func (s *Scripted) Confirm(title string) (bool, error) {
	s.Asked = append(s.Asked, title)
	if len(s.Confirms) == 0 {
		return false, nil
	}
	v := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return v, nil
}

func (s *Scripted) Number(title string, def, min, max int) (int, error) {
	s.Asked = append(s.Asked, title)
	if len(s.Numbers) == 0 {
		return def, nil
	}
	v := s.Numbers[0]
	s.Numbers = s.Numbers[1:]
	if v < min || v > max {
		return 0, fmt.Errorf("enter a value between %d and %d: %w", min, max, models.ErrInvalidInput)
	}
	return v, nil
}
