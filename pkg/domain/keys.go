package domain

// Key is a keyboard key as reported by the rendering surface.
// Printable keys use their lower-case character; named keys use their DOM name.
type Key string

const (
	KeyBackspace Key = "Backspace"
	KeyB         Key = "b"
	KeyS         Key = "s"
	KeyF         Key = "f"
	KeyI         Key = "i"
	KeyL         Key = "l"
	KeyM         Key = "m"
)

// Action is an editor shortcut.
type Action string

const (
	ActionNone    Action = ""
	ActionDelete  Action = "delete"
	ActionPin     Action = "pin"
	ActionFinal   Action = "final"
	ActionInitial Action = "initial"
	ActionLoop    Action = "loop"
	ActionPan     Action = "pan"
)

// Keymap binds keys to editor actions.
type Keymap map[Key]Action

// DefaultKeymap returns the stock bindings of the editor.
func DefaultKeymap() Keymap {
	return Keymap{
		KeyBackspace: ActionDelete,
		KeyB:         ActionDelete,
		KeyS:         ActionPin,
		KeyF:         ActionFinal,
		KeyI:         ActionInitial,
		KeyL:         ActionLoop,
		KeyM:         ActionPan,
	}
}

// Lookup returns the action bound to k, or ActionNone.
func (m Keymap) Lookup(k Key) Action {
	if m == nil {
		return ActionNone
	}
	return m[k]
}

// ParseKeymap builds a keymap from action -> keys bindings, as found in configuration.
// Unknown actions are ignored.
func ParseKeymap(bindings map[string][]string) Keymap {
	km := Keymap{}
	for action, keys := range bindings {
		a := Action(action)
		switch a {
		case ActionDelete, ActionPin, ActionFinal, ActionInitial, ActionLoop, ActionPan:
		default:
			continue
		}
		for _, k := range keys {
			km[Key(k)] = a
		}
	}
	return km
}
