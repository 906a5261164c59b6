package multiplayer

// Action names shared by every peer.
const (
	ActionState     = "player-state"
	ActionSteal     = "steal-attempt"
	ActionCollected = "collected"
)

// PeerState is the lossy snapshot a peer broadcasts about itself.
// Keys are single characters to keep frames small.
//
//	{"q":12,"p":[x,y,z],"h":[x,y,z],"s":1.62,"t":2,"c":31}
type PeerState struct {
	Seq       uint64     `json:"q,omitempty" msgpack:"q,omitempty"` // 0 means unsequenced
	Position  [3]float64 `json:"p" msgpack:"p"`
	Heading   [3]float64 `json:"h" msgpack:"h"`
	Size      float64    `json:"s" msgpack:"s"`
	Tier      int        `json:"t" msgpack:"t"`
	Collected int        `json:"c" msgpack:"c"`
}

// StealAttempt is sent to one peer the local player overran.
//
//	{"t":"peer-id","s":3.2}
type StealAttempt struct {
	Target string  `json:"t" msgpack:"t"`
	Size   float64 `json:"s" msgpack:"s"` // attacker size
}

// CollectedMsg announces one absorbed object.
//
//	{"o":"object-id","s":0.8}
type CollectedMsg struct {
	ObjectID string  `json:"o" msgpack:"o"`
	Size     float64 `json:"s" msgpack:"s"`
}
