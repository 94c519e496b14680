// Package cli holds the interactive pieces of the command line tool.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrEmptyInput  = errors.New("you must enter something")
	ErrInvalidRate = fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
)

// Prompter asks questions on a terminal. The zero value uses stdin and
// stdout.
type Prompter struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

func (p Prompter) streams() (io.ReadCloser, io.WriteCloser) {
	in, out := p.Stdin, p.Stdout
	if in == nil {
		in = os.Stdin
	}

	if out == nil {
		out = os.Stdout
	}

	return in, out
}

// Confirm asks a yes/no question. Answering no is not an error.
func (p Prompter) Confirm(label string) (bool, error) {
	in, out := p.streams()

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     in,
		Stdout:    out,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// String asks for a non-empty line.
func (p Prompter) String(label string) (string, error) {
	in, out := p.streams()

	prompt := promptui.Prompt{
		Label:    label,
		Validate: notEmpty,
		Stdin:    in,
		Stdout:   out,
	}

	txt, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(txt), nil
}

// Rating asks for a bike rating from 1 to 5.
func (p Prompter) Rating(label string) (int, error) {
	in, out := p.streams()

	items := make([]string, 0, MaxRating)
	for r := MaxRating; r >= MinRating; r-- {
		items = append(items, Stars(r))
	}

	sel := promptui.Select{
		Label:  label,
		Items:  items,
		Stdin:  in,
		Stdout: out,
	}

	idx, _, err := sel.Run()
	if err != nil {
		return 0, err
	}

	return MaxRating - idx, nil
}

// Stars renders a rating, e.g. "★★★☆☆".
func Stars(rating int) string {
	rating = min(max(rating, 0), MaxRating)

	return strings.Repeat("★", rating) + strings.Repeat("☆", MaxRating-rating)
}

// ParseRating validates a rating given on the command line.
func ParseRating(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRate, err)
	}

	if n < MinRating || n > MaxRating {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidRate, n)
	}

	return n, nil
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyInput
	}

	return nil
}
