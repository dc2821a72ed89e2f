package domain

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// EventType names an input event on the wire.
type EventType string

const (
	EventPointerDown EventType = "pointer_down"
	EventPointerMove EventType = "pointer_move"
	EventPointerOver EventType = "pointer_over"
	EventPointerUp   EventType = "pointer_up"
	EventKeyDown     EventType = "key_down"
	EventKeyUp       EventType = "key_up"
	EventLabelFocus  EventType = "label_focus"
	EventLabelInput  EventType = "label_input"
	EventLabelCommit EventType = "label_commit"
	EventLabelBlur   EventType = "label_blur"
)

// Event is an input delivered by the host rendering surface.
type Event interface {
	Type() EventType
}

// Target is what lies under the pointer.
// The zero value is the empty canvas.
type Target struct {
	StateID string `json:"state,omitempty"`
	Source  string `json:"source,omitempty"`
	Dest    string `json:"target,omitempty"`
}

// IsCanvas reports whether the pointer is over empty canvas.
func (t Target) IsCanvas() bool { return t.StateID == "" && t.Source == "" }

// IsState reports whether the pointer is over a state.
func (t Target) IsState() bool { return t.StateID != "" }

// IsTransition reports whether the pointer is over a transition.
func (t Target) IsTransition() bool { return t.StateID == "" && t.Source != "" }

// StateTarget points at a state.
func StateTarget(id string) Target { return Target{StateID: id} }

// TransitionTarget points at the transition source -> target.
func TransitionTarget(source, target string) Target {
	return Target{Source: source, Dest: target}
}

type PointerDown struct {
	Pos    Point
	Target Target
	// Modifier is the pan modifier (ctrl) held during the press.
	Modifier bool
}

type PointerMove struct {
	Pos Point
}

type PointerOver struct {
	StateID string
}

// PointerUp ends a gesture. OverStateID is the state under the pointer, if any.
type PointerUp struct {
	Pos         Point
	OverStateID string
}

type KeyDown struct{ Key Key }

type KeyUp struct{ Key Key }

type LabelFocus struct{}

// LabelInput updates the label editor buffer while typing.
type LabelInput struct{ Text string }

// LabelCommit is the Enter key in the label editor.
// A nil Text commits the editor buffer as typed so far.
type LabelCommit struct{ Text *string }

// LabelBlur is the label editor losing focus; it commits like LabelCommit.
type LabelBlur struct{ Text *string }

// LabelText returns a label text for LabelCommit and LabelBlur.
func LabelText(s string) *string { return &s }

func (PointerDown) Type() EventType { return EventPointerDown }
func (PointerMove) Type() EventType { return EventPointerMove }
func (PointerOver) Type() EventType { return EventPointerOver }
func (PointerUp) Type() EventType   { return EventPointerUp }
func (KeyDown) Type() EventType     { return EventKeyDown }
func (KeyUp) Type() EventType       { return EventKeyUp }
func (LabelFocus) Type() EventType  { return EventLabelFocus }
func (LabelInput) Type() EventType  { return EventLabelInput }
func (LabelCommit) Type() EventType { return EventLabelCommit }
func (LabelBlur) Type() EventType   { return EventLabelBlur }

// eventEnvelope is the flat wire shape of every event.
type eventEnvelope struct {
	Type     string  `mapstructure:"type"`
	X        float64 `mapstructure:"x"`
	Y        float64 `mapstructure:"y"`
	State    string  `mapstructure:"state"`
	Source   string  `mapstructure:"source"`
	Target   string  `mapstructure:"target"`
	Over     string  `mapstructure:"over"`
	Modifier bool    `mapstructure:"modifier"`
	Key      string  `mapstructure:"key"`
	Text     *string `mapstructure:"text"`
}

// DecodeEvent builds a typed Event from a generic map (decoded JSON, YAML or MCP arguments).
// Numeric ids are accepted and converted to strings.
func DecodeEvent(raw map[string]any) (Event, error) {
	var env eventEnvelope
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &env,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build event decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}

	pos := Point{X: env.X, Y: env.Y}
	switch EventType(env.Type) {
	case EventPointerDown:
		target := Target{StateID: env.State}
		if env.State == "" {
			target = Target{Source: env.Source, Dest: env.Target}
		}
		return PointerDown{Pos: pos, Target: target, Modifier: env.Modifier}, nil
	case EventPointerMove:
		return PointerMove{Pos: pos}, nil
	case EventPointerOver:
		return PointerOver{StateID: env.State}, nil
	case EventPointerUp:
		return PointerUp{Pos: pos, OverStateID: env.Over}, nil
	case EventKeyDown:
		return KeyDown{Key: Key(env.Key)}, nil
	case EventKeyUp:
		return KeyUp{Key: Key(env.Key)}, nil
	case EventLabelFocus:
		return LabelFocus{}, nil
	case EventLabelInput:
		text := ""
		if env.Text != nil {
			text = *env.Text
		}
		return LabelInput{Text: text}, nil
	case EventLabelCommit:
		return LabelCommit{Text: env.Text}, nil
	case EventLabelBlur:
		return LabelBlur{Text: env.Text}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
}

// MutationKind names a structural change applied by the editor.
type MutationKind string

const (
	MutationStateAdded        MutationKind = "state_added"
	MutationStateRemoved      MutationKind = "state_removed"
	MutationStatePinned       MutationKind = "state_pinned"
	MutationTransitionAdded   MutationKind = "transition_added"
	MutationTransitionRemoved MutationKind = "transition_removed"
	MutationLabelChanged      MutationKind = "label_changed"
)

// Mutation describes one change, using boundary ids so it can be logged and published.
type Mutation struct {
	Kind    MutationKind `json:"kind"`
	StateID string       `json:"state_id,omitempty"`
	Source  string       `json:"source,omitempty"`
	Target  string       `json:"target,omitempty"`
	Label   string       `json:"label,omitempty"`
}

// MutationHooks defines callbacks for editor observability.
type MutationHooks struct {
	OnMutation func(context.Context, Mutation)
	OnFlush    func(context.Context, *Snapshot)
}
