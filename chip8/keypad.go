package chip8

// Keypad holds the hex keypad state. Held is the level state used by
// EX9E/EXA1; Pressed and Released are edge flags that the input collector
// clears and repopulates once per poll.
type Keypad struct {
	Held     [KeyCount]bool
	Pressed  [KeyCount]bool
	Released [KeyCount]bool
}

// ClearEdges resets the per-poll edge flags, leaving Held untouched.
func (k *Keypad) ClearEdges() {
	k.Pressed = [KeyCount]bool{}
	k.Released = [KeyCount]bool{}
}

// Press records a key going down.
func (k *Keypad) Press(key byte) {
	key &= KeyCount - 1
	k.Held[key] = true
	k.Pressed[key] = true
}

// Release records a key going up.
func (k *Keypad) Release(key byte) {
	key &= KeyCount - 1
	k.Held[key] = false
	k.Released[key] = true
}

// firstPressed returns the lowest key index with its pressed edge set.
func (k *Keypad) firstPressed() (byte, bool) {
	for i, p := range k.Pressed {
		if p {
			return byte(i), true
		}
	}
	return 0, false
}

// WaitState is the FX0A input-wait state.
type WaitState uint8

const (
	Normal WaitState = iota
	AwaitingPress
	AwaitingRelease
)

func (s WaitState) String() string {
	switch s {
	case AwaitingPress:
		return "awaiting-press"
	case AwaitingRelease:
		return "awaiting-release"
	default:
		return "normal"
	}
}

type waitLatch struct {
	state WaitState
	reg   byte // Target register.
	key   byte // Key captured on the press edge.
}
