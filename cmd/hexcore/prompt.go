package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

var errNoTerminal = errors.New("password required: use -p or run in a terminal")

// terminal returns stdin when it is an interactive terminal.
func (a *app) terminal() (*os.File, bool) {
	f, ok := a.stdin.(*os.File)
	if !ok {
		return nil, false
	}
	fd := f.Fd()
	return f, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptPassword reads a password without echo.
func (a *app) promptPassword(prompt string) (string, error) {
	f, ok := a.terminal()
	if !ok {
		return "", errNoTerminal
	}
	fmt.Fprint(a.stderr, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// confirm asks a yes/no question. Without a terminal the answer is yes.
func (a *app) confirm(question string) (bool, error) {
	if _, ok := a.terminal(); !ok {
		return true, nil
	}
	fmt.Fprintf(a.stderr, "%s [y/N]: ", question)
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
