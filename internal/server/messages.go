package server

import (
	"errors"
	"fmt"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/MHostile/root-automated-setup/internal/setup"
)

// Message types exchanged over the websocket
const (
	TypeCreate        = "create"
	TypeResume        = "resume"
	TypeToggle        = "toggle"
	TypeSet           = "set"
	TypeAdvance       = "advance"
	TypeBack          = "back"
	TypeForward       = "forward"
	TypeSelectFaction = "select_faction"
	TypeReset         = "reset"
	TypeState         = "state"
	TypeError         = "error"
)

var ErrUnknownMessage = errors.New("unknown message type")

// Message is a websocket frame in either direction. Requests carry the
// command fields; replies carry either Data or Error.
type Message struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`

	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
	Name    string `json:"name,omitempty"`
	Value   any    `json:"value,omitempty"`
	Index   *int   `json:"index,omitempty"`

	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Command converts a request into a setup command. Component codes are
// checked against cat so typos get a suggestion.
func (m Message) Command(cat *catalog.Catalog) (setup.Command, error) {
	switch m.Type {
	case TypeToggle:
		kind, err := catalog.ParseKind(m.Kind)
		if err != nil {
			return nil, err
		}
		if !cat.Has(kind, m.Code) {
			if suggestion, ok := cat.Suggest(kind, m.Code); ok {
				return nil, fmt.Errorf("unknown %s %q, did you mean %q?", kind, m.Code, suggestion)
			}
			return nil, fmt.Errorf("unknown %s %q", kind, m.Code)
		}
		return setup.ToggleCommand{Kind: kind, Code: m.Code, Enabled: m.Enabled}, nil
	case TypeSet:
		if m.Name == "" {
			return nil, errors.New("set requires a parameter name")
		}
		return setup.SetParameterCommand{Name: setup.Parameter(m.Name), Value: m.Value}, nil
	case TypeAdvance:
		return setup.AdvanceCommand{}, nil
	case TypeBack:
		return setup.BackCommand{}, nil
	case TypeForward:
		return setup.ForwardCommand{}, nil
	case TypeSelectFaction:
		if m.Index == nil {
			return nil, errors.New("select_faction requires an index")
		}
		return setup.SelectFactionCommand{Index: *m.Index}, nil
	case TypeReset:
		return setup.ResetCommand{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
}
