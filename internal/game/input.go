package game

import "math"

// TouchThreshold is the minimum drag delta in pixels that counts as intent.
const TouchThreshold = 2.0

// Input is the set of boolean intents for one tick.
type Input struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
	Jump    bool
}

// TouchTracker turns a single-finger drag into directional intents. Only
// the dominant axis of each move counts, so diagonal drags pick one
// direction.
type TouchTracker struct {
	lastX, lastY float64
	dragging     bool
	intent       Input
}

// Start begins a drag at the given screen position.
func (t *TouchTracker) Start(x, y float64) {
	t.lastX, t.lastY = x, y
	t.dragging = true
	t.intent = Input{}
}

// Move updates intents from the delta since the previous position.
// Screen Y grows downward: dragging up means forward.
func (t *TouchTracker) Move(x, y float64) {
	if !t.dragging {
		return
	}
	dx := x - t.lastX
	dy := y - t.lastY
	t.intent = Input{}
	if math.Abs(dx) > TouchThreshold || math.Abs(dy) > TouchThreshold {
		if math.Abs(dy) > math.Abs(dx) {
			if dy < 0 {
				t.intent.Forward = true
			} else {
				t.intent.Back = true
			}
		} else {
			if dx < 0 {
				t.intent.Left = true
			} else {
				t.intent.Right = true
			}
		}
	}
	t.lastX, t.lastY = x, y
}

// End stops the drag and clears all intents.
func (t *TouchTracker) End() {
	t.dragging = false
	t.intent = Input{}
}

// Dragging reports whether a drag is in progress.
func (t *TouchTracker) Dragging() bool { return t.dragging }

// Intent returns the current directional intents.
func (t *TouchTracker) Intent() Input { return t.intent }

// Merge ORs two intent sets, e.g. keyboard and touch.
func (in Input) Merge(o Input) Input {
	return Input{
		Forward: in.Forward || o.Forward,
		Back:    in.Back || o.Back,
		Left:    in.Left || o.Left,
		Right:   in.Right || o.Right,
		Jump:    in.Jump || o.Jump,
	}
}
