package action

import (
	"fmt"
	"strings"
)

// Record is one structured action as it appears in standardized trajectory
// documents: a kind plus a free-form argument mapping.
type Record struct {
	ActionType string         `json:"action_type"`
	Args       map[string]any `json:"args"`
}

// Renderable is any action that can be rendered to one executable-looking
// command line.
type Renderable interface {
	Command() (string, error)
}

// UnsupportedError reports an action kind that belongs to neither
// recognized vocabulary.
type UnsupportedError struct {
	Kind string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported action type: %s", e.Kind)
}

// New resolves an action kind against the GUI vocabulary first, then the
// computer vocabulary, and constructs the matching renderable. The two sets
// are disjoint by contract; the ordering only fixes behavior if that
// contract is ever violated upstream.
func New(kind string, args map[string]any) (Renderable, error) {
	if args == nil {
		args = map[string]any{}
	}
	if _, ok := guiActionTypes[GUIActionType(kind)]; ok {
		return &GUIAction{Type: GUIActionType(kind), Args: args}, nil
	}
	if _, ok := computerActionTypes[ComputerActionType(kind)]; ok {
		return &ComputerAction{Type: ComputerActionType(kind), Args: args}, nil
	}
	return nil, &UnsupportedError{Kind: kind}
}

// Translate renders an ordered batch of records into a newline-joined
// command sequence. The first unresolvable kind fails the whole batch; no
// partial output is returned. An empty batch yields an empty string.
func Translate(records []Record) (string, error) {
	commands := make([]string, 0, len(records))
	for i := range records {
		r, err := New(records[i].ActionType, records[i].Args)
		if err != nil {
			return "", err
		}
		cmd, err := r.Command()
		if err != nil {
			return "", fmt.Errorf("action[%d] %s: %w", i, records[i].ActionType, err)
		}
		commands = append(commands, cmd)
	}
	return strings.Join(commands, "\n"), nil
}
