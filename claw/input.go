package claw

import (
	"math"

	"github.com/milk9111/clawmachine/common"
)

// Input is one tick of player intent. MoveX/MoveZ come from digital keys
// (-1, 0 or 1); StickX/StickZ from an analog stick. Drop is the activate
// button.
type Input struct {
	MoveX, MoveZ   float64
	StickX, StickZ float64
	Drop           bool
}

// Direction resolves the lateral intent. The stick wins when its magnitude
// exceeds the deadzone.
func (in Input) Direction(deadzone float64) (x, z float64) {
	if math.Hypot(in.StickX, in.StickZ) > deadzone {
		return common.Clamp(in.StickX, -1, 1), common.Clamp(in.StickZ, -1, 1)
	}
	return common.Sign(in.MoveX), common.Sign(in.MoveZ)
}
