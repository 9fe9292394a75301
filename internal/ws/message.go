package ws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coder/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Spectator -> Server message types
const (
	MsgPing uint8 = 0x04
)

// Server -> Spectator message types
const (
	MsgGameState uint8 = 0x81
	MsgWelcome   uint8 = 0x82
	MsgGameOver  uint8 = 0x83
	MsgScored    uint8 = 0x84
	MsgPong      uint8 = 0x86
)

// Codec selects the wire encoding of a connection.
type Codec uint8

const (
	CodecJSON Codec = iota
	CodecMsgpack
)

// ParseCodec maps the ?codec= query value to a Codec. Unknown values fall
// back to JSON.
func ParseCodec(s string) Codec {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "msgpack", "mp", "binary":
		return CodecMsgpack
	default:
		return CodecJSON
	}
}

func (c Codec) String() string {
	if c == CodecMsgpack {
		return "msgpack"
	}
	return "json"
}

// FrameType is the websocket frame type used for this codec.
func (c Codec) FrameType() websocket.MessageType {
	if c == CodecMsgpack {
		return websocket.MessageBinary
	}
	return websocket.MessageText
}

// Message is the envelope for every frame. Payload holds the JSON form;
// outgoing messages also keep the source value for the msgpack encoder.
type Message struct {
	Type    uint8           `json:"type"`
	Tick    uint32          `json:"tick"`
	Payload json.RawMessage `json:"payload"`

	value  any
	packed msgpack.RawMessage
}

type packedMessage struct {
	Type    uint8  `json:"type" msgpack:"type"`
	Tick    uint32 `json:"tick" msgpack:"tick"`
	Payload any    `json:"payload" msgpack:"payload"`
}

type packedInbound struct {
	Type    uint8              `msgpack:"type"`
	Tick    uint32             `msgpack:"tick"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

type PingPayload struct {
	ClientTime uint64 `json:"clientTime"`
}

type PongPayload struct {
	ClientTime uint64 `json:"clientTime"`
	ServerTime uint64 `json:"serverTime"`
}

type WelcomePayload struct {
	ID         string `json:"id"`
	Codec      string `json:"codec"`
	Spectators int    `json:"spectators"`
}

func NewMessage(typ uint8, tick uint32, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type:    typ,
		Tick:    tick,
		Payload: json.RawMessage(data),
		value:   payload,
	}, nil
}

// Encode serialises msg for the given codec. msgpack output reuses the JSON
// field names.
func Encode(c Codec, msg Message) ([]byte, error) {
	if c != CodecMsgpack {
		return json.Marshal(msg)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)

	var payload any = msg.value
	if payload == nil && len(msg.Payload) > 0 {
		var generic any
		if err := json.Unmarshal(msg.Payload, &generic); err != nil {
			return nil, err
		}
		payload = generic
	}
	if err := enc.Encode(packedMessage{Type: msg.Type, Tick: msg.Tick, Payload: payload}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses an incoming frame.
func Decode(c Codec, data []byte) (Message, error) {
	if c != CodecMsgpack {
		var msg Message
		err := json.Unmarshal(data, &msg)
		return msg, err
	}
	var in packedInbound
	if err := msgpack.Unmarshal(data, &in); err != nil {
		return Message{}, err
	}
	return Message{Type: in.Type, Tick: in.Tick, packed: in.Payload}, nil
}

// Unmarshal decodes the message payload into v, whichever codec it came in.
func (m Message) Unmarshal(v any) error {
	if m.packed != nil {
		dec := msgpack.NewDecoder(bytes.NewReader(m.packed))
		dec.SetCustomStructTag("json")
		return dec.Decode(v)
	}
	if len(m.Payload) == 0 {
		return fmt.Errorf("message 0x%02x has no payload", m.Type)
	}
	return json.Unmarshal(m.Payload, v)
}
