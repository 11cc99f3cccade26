package action

// GUIActionType enumerates the pyautogui-style vocabulary found in
// standardized recordings.
type GUIActionType string

const (
	GUIClick       GUIActionType = "click"
	GUIDoubleClick GUIActionType = "doubleClick"
	GUITripleClick GUIActionType = "tripleClick"
	GUIRightClick  GUIActionType = "rightClick"
	GUIMiddleClick GUIActionType = "middleClick"
	GUIMoveTo      GUIActionType = "moveTo"
	GUIDragTo      GUIActionType = "dragTo"
	GUIScroll      GUIActionType = "scroll"
	GUIHScroll     GUIActionType = "hscroll"
	GUIWrite       GUIActionType = "write"
	GUIPress       GUIActionType = "press"
	GUIHotkey      GUIActionType = "hotkey"
	GUIKeyDown     GUIActionType = "keyDown"
	GUIKeyUp       GUIActionType = "keyUp"
)

var guiActionTypes = map[GUIActionType]struct{}{
	GUIClick:       {},
	GUIDoubleClick: {},
	GUITripleClick: {},
	GUIRightClick:  {},
	GUIMiddleClick: {},
	GUIMoveTo:      {},
	GUIDragTo:      {},
	GUIScroll:      {},
	GUIHScroll:     {},
	GUIWrite:       {},
	GUIPress:       {},
	GUIHotkey:      {},
	GUIKeyDown:     {},
	GUIKeyUp:       {},
}

// GUIAction renders one pyautogui call.
type GUIAction struct {
	Type GUIActionType
	Args map[string]any
}

func (a *GUIAction) Command() (string, error) {
	fn := "pyautogui." + string(a.Type)
	switch a.Type {
	case GUIClick, GUIDoubleClick, GUITripleClick, GUIRightClick, GUIMiddleClick, GUIMoveTo, GUIDragTo:
		return call(fn, nil, kwargsFor(a.Args, "x", "y", "duration", "button")), nil
	case GUIScroll, GUIHScroll:
		clicks, ok, rest := take(a.Args, "clicks", "amount")
		if !ok {
			return call(fn, nil, kwargsFor(a.Args, "x", "y")), nil
		}
		return call(fn, []string{pyLiteral(clicks)}, kwargsFor(rest, "x", "y")), nil
	case GUIWrite:
		message, ok, rest := take(a.Args, "message", "text", "content")
		if !ok {
			return call(fn, nil, kwargsFor(a.Args, "interval")), nil
		}
		return call(fn, []string{pyLiteral(message)}, kwargsFor(rest, "interval")), nil
	case GUIPress, GUIKeyDown, GUIKeyUp:
		key, ok, rest := take(a.Args, "key", "keys")
		if !ok {
			return call(fn, nil, kwargsFor(a.Args)), nil
		}
		return call(fn, []string{pyLiteral(key)}, kwargsFor(rest, "presses")), nil
	case GUIHotkey:
		keys, ok, rest := take(a.Args, "keys", "key")
		if !ok {
			return call(fn, nil, kwargsFor(a.Args)), nil
		}
		if list, isList := keys.([]any); isList {
			positional := make([]string, len(list))
			for i, k := range list {
				positional[i] = pyLiteral(k)
			}
			return call(fn, positional, kwargsFor(rest)), nil
		}
		return call(fn, []string{pyLiteral(keys)}, kwargsFor(rest)), nil
	default:
		return "", &UnsupportedError{Kind: string(a.Type)}
	}
}
