package action

// ComputerActionType enumerates the environment-level vocabulary used by
// recordings for actions no GUI toolkit call can express.
type ComputerActionType string

const (
	ComputerWait         ComputerActionType = "wait"
	ComputerTerminate    ComputerActionType = "terminate"
	ComputerCallUser     ComputerActionType = "call_user"
	ComputerScreenshot   ComputerActionType = "screenshot"
	ComputerSetClipboard ComputerActionType = "set_clipboard"
)

var computerActionTypes = map[ComputerActionType]struct{}{
	ComputerWait:         {},
	ComputerTerminate:    {},
	ComputerCallUser:     {},
	ComputerScreenshot:   {},
	ComputerSetClipboard: {},
}

// ComputerAction renders one computer.* call.
type ComputerAction struct {
	Type ComputerActionType
	Args map[string]any
}

func (a *ComputerAction) Command() (string, error) {
	fn := "computer." + string(a.Type)
	switch a.Type {
	case ComputerWait:
		return call(fn, nil, kwargsFor(a.Args, "seconds")), nil
	case ComputerTerminate:
		return call(fn, nil, kwargsFor(a.Args, "status")), nil
	case ComputerCallUser, ComputerScreenshot:
		return call(fn, nil, kwargsFor(a.Args)), nil
	case ComputerSetClipboard:
		text, ok, rest := take(a.Args, "text", "content")
		if !ok {
			return call(fn, nil, kwargsFor(a.Args)), nil
		}
		return call(fn, []string{pyLiteral(text)}, kwargsFor(rest)), nil
	default:
		return "", &UnsupportedError{Kind: string(a.Type)}
	}
}
