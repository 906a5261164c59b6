package relay

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Frames use single-character keys to keep them small. A client picks
// its encoding with the first frame it sends: text frames are JSON,
// binary frames are MessagePack. The relay answers in the same encoding.
//
// Message type constants (value of "t" field):
//
//	Client → Relay:
//	  "j" = join      {"t":"j","r":"room"}
//	  "a" = action    {"t":"a","n":"player-state","o":["peer"],"p":<bytes>}  (o omitted = everyone)
//	Relay → Client:
//	  "w" = welcome   {"t":"w","i":"self-id","r":"room","ps":["peer",...]}
//	  "p" = peer join {"t":"p","i":"peer-id"}
//	  "l" = peer left {"t":"l","i":"peer-id"}
//	  "a" = action    {"t":"a","n":"player-state","f":"from-id","p":<bytes>}
//	  "e" = error     {"t":"e","m":"Room full."}
const (
	MsgJoin      = "j"
	MsgAction    = "a"
	MsgWelcome   = "w"
	MsgPeerJoin  = "p"
	MsgPeerLeave = "l"
	MsgError     = "e"
)

// Frame is every message on the relay wire.
type Frame struct {
	Type    string   `json:"t" msgpack:"t"`
	Room    string   `json:"r,omitempty" msgpack:"r,omitempty"`
	ID      string   `json:"i,omitempty" msgpack:"i,omitempty"`
	Peers   []string `json:"ps,omitempty" msgpack:"ps,omitempty"`
	Action  string   `json:"n,omitempty" msgpack:"n,omitempty"`
	From    string   `json:"f,omitempty" msgpack:"f,omitempty"`
	To      []string `json:"o,omitempty" msgpack:"o,omitempty"`
	Payload []byte   `json:"p,omitempty" msgpack:"p,omitempty"`
	Message string   `json:"m,omitempty" msgpack:"m,omitempty"`
}

// Encoding selects the frame format.
type Encoding uint8

const (
	JSON Encoding = iota
	Msgpack
)

func (e Encoding) String() string {
	if e == Msgpack {
		return "msgpack"
	}
	return "json"
}

// ParseEncoding maps a name to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return Msgpack, nil
	}
	return JSON, fmt.Errorf("relay: unknown encoding %q", name)
}

func (e Encoding) encode(f Frame) (int, []byte, error) {
	if e == Msgpack {
		data, err := msgpack.Marshal(&f)
		return websocket.BinaryMessage, data, err
	}
	data, err := json.Marshal(f)
	return websocket.TextMessage, data, err
}

func decodeFrame(msgType int, data []byte) (Frame, Encoding, error) {
	var f Frame
	switch msgType {
	case websocket.BinaryMessage:
		err := msgpack.Unmarshal(data, &f)
		return f, Msgpack, err
	case websocket.TextMessage:
		err := json.Unmarshal(data, &f)
		return f, JSON, err
	}
	return f, JSON, fmt.Errorf("relay: unexpected message type %d", msgType)
}
