package claw

// State is the sequencer phase. Exactly one is active at a time.
type State uint8

const (
	StateIdle State = iota
	StateDescending
	StateGrabbing
	StateAscending
	StateMovingToBin
	StateReturning
)

var stateNames = [...]string{
	StateIdle:        "idle",
	StateDescending:  "descending",
	StateGrabbing:    "grabbing",
	StateAscending:   "ascending",
	StateMovingToBin: "moving_to_bin",
	StateReturning:   "returning",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Carrying reports whether held prizes are subject to the drop check.
func (s State) Carrying() bool {
	return s == StateAscending || s == StateMovingToBin
}
