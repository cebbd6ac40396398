package ws

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"chat-engine/domain"
)

// defaultRoom is what the wire protocol assumes when a message event
// carries no room. It is deliberately absent from the reference
// catalog, so unrouted messages fall into the invalid-room drop path.
const defaultRoom = "General"

var validate = validator.New()

// inEnvelope is the wire frame for every inbound event.
type inEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinPayload struct {
	Room string `json:"room" validate:"required"`
}

type leavePayload struct {
	Room string `json:"room" validate:"required"`
}

type messagePayload struct {
	Room   string `json:"room"`
	Type   string `json:"type" validate:"omitempty,oneof=message private"`
	Msg    string `json:"msg" validate:"required"`
	Target string `json:"target" validate:"required_if=Type private"`
}

type reactPayload struct {
	Room  string `json:"room" validate:"required"`
	Index *int   `json:"index" validate:"required"`
	Emoji string `json:"emoji" validate:"required"`
}

type typingPayload struct {
	Room   string `json:"room" validate:"required"`
	Typing *bool  `json:"typing" validate:"required"`
}

type searchPayload struct {
	Room  string `json:"room" validate:"required"`
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit"`
}

// decodeCommand turns a raw inbound frame into a typed engine command,
// validating required fields at the boundary. Untrusted payloads never
// reach the router: a malformed frame is rejected here with an error
// the caller logs and forgets.
func decodeCommand(data []byte) (domain.Command, error) {
	var envelope inEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	switch envelope.Event {
	case "join":
		var p joinPayload
		if err := unmarshalPayload(envelope.Data, &p); err != nil {
			return nil, err
		}
		return domain.JoinCommand{Room: p.Room}, nil

	case "leave":
		var p leavePayload
		if err := unmarshalPayload(envelope.Data, &p); err != nil {
			return nil, err
		}
		return domain.LeaveCommand{Room: p.Room}, nil

	case "message":
		var p messagePayload
		if err := unmarshalPayload(envelope.Data, &p); err != nil {
			return nil, err
		}
		if p.Type == "private" {
			return domain.PrivateMessageCommand{Target: p.Target, Body: p.Msg}, nil
		}
		if p.Room == "" {
			p.Room = defaultRoom
		}
		return domain.PostMessageCommand{Room: p.Room, Body: p.Msg}, nil

	case "react_to_message":
		var p reactPayload
		if err := unmarshalPayload(envelope.Data, &p); err != nil {
			return nil, err
		}
		return domain.ReactCommand{Room: p.Room, Index: *p.Index, Emoji: p.Emoji}, nil

	case "typing":
		var p typingPayload
		if err := unmarshalPayload(envelope.Data, &p); err != nil {
			return nil, err
		}
		return domain.TypingCommand{Room: p.Room, Typing: *p.Typing}, nil

	case "search":
		var p searchPayload
		if err := unmarshalPayload(envelope.Data, &p); err != nil {
			return nil, err
		}
		return domain.SearchCommand{Room: p.Room, Query: p.Query, Limit: p.Limit}, nil

	default:
		return nil, fmt.Errorf("unknown event %q", envelope.Event)
	}
}

func unmarshalPayload(data json.RawMessage, payload any) error {
	if len(data) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
