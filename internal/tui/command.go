package tui

import (
	"errors"
	"fmt"
	"strings"
)

// Action is what a command line asks the browser to do.
type Action int

const (
	ActionNavigate Action = iota
	ActionSet
	ActionSubmit
	ActionDelete
	ActionDismiss
	ActionHelp
	ActionQuit
)

// Command is a parsed command line.
type Command struct {
	Action Action
	Path   string // ActionNavigate
	Field  string // ActionSet
	Value  string // ActionSet
	ID     string // ActionDelete
}

// ErrUnknownCommand is returned for lines that are not a path or a known
// command word.
var ErrUnknownCommand = errors.New("unknown command")

const helpText = "commands: /path  set <field>=<value>  submit  delete <id>  dismiss  help  quit"

// Parse turns a command line into a Command. A line starting with "/" is a
// location.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "/") {
		return Command{Action: ActionNavigate, Path: line}, nil
	}

	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(word) {
	case "q", "quit", "exit":
		return Command{Action: ActionQuit}, nil
	case "?", "help":
		return Command{Action: ActionHelp}, nil
	case "submit", "save":
		return Command{Action: ActionSubmit}, nil
	case "dismiss":
		return Command{Action: ActionDismiss}, nil
	case "delete", "rm":
		if rest == "" {
			return Command{}, fmt.Errorf("delete needs an activity id")
		}
		return Command{Action: ActionDelete, ID: rest}, nil
	case "set":
		field, value, ok := strings.Cut(rest, "=")
		if !ok {
			field, value, ok = strings.Cut(rest, " ")
		}
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return Command{}, fmt.Errorf("usage: set <field>=<value>")
		}
		return Command{Action: ActionSet, Field: field, Value: strings.TrimSpace(value)}, nil
	case "":
		return Command{}, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	default:
		return Command{}, fmt.Errorf("%w: %q (%s)", ErrUnknownCommand, word, helpText)
	}
}
