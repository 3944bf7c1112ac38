package claw

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/common"
)

// ErrInvalidConfig is wrapped by every configuration validation error.
var ErrInvalidConfig = errors.New("claw: invalid config")

// Bounds is the rectangle the claw may roam in while idle.
type Bounds struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
}

// Cabinet describes the static geometry of the prize pit and the bin.
type Cabinet struct {
	PitFloorY   float64
	PitHalfSize float64 // pit spans [-PitHalfSize, PitHalfSize] on X and Z
	WallHeight  float64 // above the pit floor
	WallThick   float64
	BinHalfSize float64 // half width of the square bin opening
	BinFloorY   float64
	RimHeight   float64 // bin rim above the pit floor
}

// Config is the full tuning of one claw machine. Distances are world units,
// claw speeds are units per tick, physics velocities are units per second
// and delays are milliseconds.
type Config struct {
	TickRate int

	RestingHeight  float64
	Bounds         Bounds
	MoveSpeed      float64
	StickDeadzone  float64
	BounceFactor   float64
	SwingFrequency float64
	SwingIntensity float64
	SwingDecay     float64
	OpenAngle      float64
	ClosedAngle    float64
	AngleEase      float64
	HoldOffset     float64

	DescendSpeed       float64
	DescendFloorY      float64
	AscendSpeed        float64
	BinX, BinZ         float64
	BinEase            float64
	BinEpsilon         float64
	ReturnNearEase     float64
	ReturnFarEase      float64
	ReturnNearDistance float64
	ReturnEpsilon      float64
	ReleaseSpeed       float64

	GrabDelayMs       float64
	AscendDelayMs     float64
	OpenDelayMs       float64
	SettleDelayMs     float64
	NoCatchDelayMs    float64
	WonRemovalDelayMs float64

	GrabRadius          float64
	MaxGrabCount        int
	GrabSuccessRate     float64
	BaseGripMin         float64
	BaseGripMax         float64
	MinGrip             float64
	GripFreeDistance    float64
	GripDistancePenalty float64
	GripWeightPenalty   float64
	DropChanceScale     float64
	SpeedDropFactor     float64
	HeightDropFactor    float64
	HeightRiskFloor     float64
	HeightRiskSpan      float64
	DisturbRadius       float64
	DisturbImpulse      float64
	DropScatter         float64
	DropFallSpeed       float64

	TetherAnchor     mgl64.Vec3
	TetherSegments   int
	TetherGravity    float64
	TetherWind       float64
	TetherIterations int
	TetherSlack      float64

	SettleSpeed   float64
	SettleHeight  float64
	DropHeightMin float64 // above the pit floor
	DropHeightMax float64

	Cabinet Cabinet
}

// DefaultConfig returns the tuning the machine ships with.
func DefaultConfig() Config {
	return Config{
		TickRate: common.TicksPerSecond,

		RestingHeight:  10,
		Bounds:         Bounds{MinX: -3.2, MaxX: 3.2, MinZ: -3.2, MaxZ: 3.2},
		MoveSpeed:      0.08,
		StickDeadzone:  0.1,
		BounceFactor:   0.3,
		SwingFrequency: 8,
		SwingIntensity: 1.5,
		SwingDecay:     0.95,
		OpenAngle:      0.6,
		ClosedAngle:    0.05,
		AngleEase:      0.15,
		HoldOffset:     0.7,

		DescendSpeed:       0.12,
		DescendFloorY:      -3.8,
		AscendSpeed:        0.1,
		BinX:               -3,
		BinZ:               3,
		BinEase:            0.08,
		BinEpsilon:         0.05,
		ReturnNearEase:     0.15,
		ReturnFarEase:      0.08,
		ReturnNearDistance: 1,
		ReturnEpsilon:      0.01,
		ReleaseSpeed:       2,

		GrabDelayMs:       500,
		AscendDelayMs:     300,
		OpenDelayMs:       300,
		SettleDelayMs:     1500,
		NoCatchDelayMs:    500,
		WonRemovalDelayMs: 5000,

		GrabRadius:          0.8,
		MaxGrabCount:        1,
		GrabSuccessRate:     0.75,
		BaseGripMin:         0.80,
		BaseGripMax:         0.95,
		MinGrip:             0.5,
		GripFreeDistance:    0.3,
		GripDistancePenalty: 0.2,
		GripWeightPenalty:   0.05,
		DropChanceScale:     0.008,
		SpeedDropFactor:     0.05,
		HeightDropFactor:    0.002,
		HeightRiskFloor:     -5,
		HeightRiskSpan:      15,
		DisturbRadius:       2,
		DisturbImpulse:      0.8,
		DropScatter:         1,
		DropFallSpeed:       1,

		TetherAnchor:     mgl64.Vec3{0, 14, 0},
		TetherSegments:   12,
		TetherGravity:    0.01,
		TetherWind:       0.004,
		TetherIterations: 3,
		TetherSlack:      1.02,

		SettleSpeed:   0.05,
		SettleHeight:  -2,
		DropHeightMin: 1,
		DropHeightMax: 4,

		Cabinet: Cabinet{
			PitFloorY:   -5,
			PitHalfSize: 4,
			WallHeight:  4,
			WallThick:   0.2,
			BinHalfSize: 0.8,
			BinFloorY:   -9,
			RimHeight:   0.6,
		},
	}
}

// Ticks converts a delay in milliseconds to ticks at the configured rate.
func (c Config) Ticks(ms float64) uint64 {
	return uint64(common.MillisToTicks(ms, c.TickRate))
}

// RestPoint is the canonical idle position of the claw.
func (c Config) RestPoint() mgl64.Vec3 {
	return mgl64.Vec3{0, c.RestingHeight, 0}
}

// BinPoint is where the claw releases its prizes.
func (c Config) BinPoint() mgl64.Vec3 {
	return mgl64.Vec3{c.BinX, c.RestingHeight, c.BinZ}
}

// Validate reports every nonsensical setting. Nothing is clamped.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	positive := func(name string, v float64) {
		if !(v > 0) {
			bad("%s must be positive, got %v", name, v)
		}
	}
	nonNegative := func(name string, v float64) {
		if !(v >= 0) {
			bad("%s must not be negative, got %v", name, v)
		}
	}
	fraction := func(name string, v float64) {
		if !(v >= 0 && v <= 1) {
			bad("%s must be within [0,1], got %v", name, v)
		}
	}
	ease := func(name string, v float64) {
		if !(v > 0 && v <= 1) {
			bad("%s must be within (0,1], got %v", name, v)
		}
	}

	if c.TickRate <= 0 {
		bad("tick rate must be positive, got %d", c.TickRate)
	}
	if !(c.Bounds.MinX < c.Bounds.MaxX) {
		bad("bounds X range [%v,%v] is empty", c.Bounds.MinX, c.Bounds.MaxX)
	}
	if !(c.Bounds.MinZ < c.Bounds.MaxZ) {
		bad("bounds Z range [%v,%v] is empty", c.Bounds.MinZ, c.Bounds.MaxZ)
	}
	if !(c.RestingHeight > c.DescendFloorY) {
		bad("resting height %v must be above descend floor %v", c.RestingHeight, c.DescendFloorY)
	}

	positive("move speed", c.MoveSpeed)
	positive("descend speed", c.DescendSpeed)
	positive("ascend speed", c.AscendSpeed)
	positive("grab radius", c.GrabRadius)
	positive("bin epsilon", c.BinEpsilon)
	positive("return epsilon", c.ReturnEpsilon)
	positive("return near distance", c.ReturnNearDistance)
	positive("height risk span", c.HeightRiskSpan)
	positive("tether slack", c.TetherSlack)
	nonNegative("swing frequency", c.SwingFrequency)
	nonNegative("swing intensity", c.SwingIntensity)
	nonNegative("hold offset", c.HoldOffset)
	nonNegative("release speed", c.ReleaseSpeed)
	nonNegative("disturb radius", c.DisturbRadius)
	nonNegative("disturb impulse", c.DisturbImpulse)
	nonNegative("drop scatter", c.DropScatter)
	nonNegative("drop fall speed", c.DropFallSpeed)
	nonNegative("drop chance scale", c.DropChanceScale)
	nonNegative("speed drop factor", c.SpeedDropFactor)
	nonNegative("height drop factor", c.HeightDropFactor)
	nonNegative("grip free distance", c.GripFreeDistance)
	nonNegative("grip distance penalty", c.GripDistancePenalty)
	nonNegative("grip weight penalty", c.GripWeightPenalty)
	nonNegative("tether gravity", c.TetherGravity)
	nonNegative("tether wind", c.TetherWind)
	nonNegative("settle speed", c.SettleSpeed)

	fraction("grab success rate", c.GrabSuccessRate)
	fraction("bounce factor", c.BounceFactor)
	fraction("swing decay", c.SwingDecay)
	ease("angle ease", c.AngleEase)
	ease("bin ease", c.BinEase)
	ease("return near ease", c.ReturnNearEase)
	ease("return far ease", c.ReturnFarEase)

	if !(c.StickDeadzone >= 0 && c.StickDeadzone < 1) {
		bad("stick deadzone must be within [0,1), got %v", c.StickDeadzone)
	}
	fraction("base grip min", c.BaseGripMin)
	fraction("base grip max", c.BaseGripMax)
	fraction("min grip", c.MinGrip)
	if c.BaseGripMin > c.BaseGripMax {
		bad("base grip range [%v,%v] is inverted", c.BaseGripMin, c.BaseGripMax)
	}
	if c.MinGrip > c.BaseGripMin {
		bad("min grip %v exceeds base grip min %v", c.MinGrip, c.BaseGripMin)
	}
	if c.MaxGrabCount < 1 {
		bad("max grab count must be at least 1, got %d", c.MaxGrabCount)
	}

	for name, v := range map[string]float64{
		"grab delay":        c.GrabDelayMs,
		"ascend delay":      c.AscendDelayMs,
		"open delay":        c.OpenDelayMs,
		"settle delay":      c.SettleDelayMs,
		"no catch delay":    c.NoCatchDelayMs,
		"won removal delay": c.WonRemovalDelayMs,
	} {
		nonNegative(name, v)
	}

	if c.TetherSegments < 2 {
		bad("tether needs at least 2 segments, got %d", c.TetherSegments)
	}
	if c.TetherIterations < 1 {
		bad("tether needs at least 1 relaxation pass, got %d", c.TetherIterations)
	}
	if !(c.TetherAnchor.Y() > c.RestingHeight) {
		bad("tether anchor height %v must be above resting height %v", c.TetherAnchor.Y(), c.RestingHeight)
	}

	nonNegative("drop height min", c.DropHeightMin)
	if c.DropHeightMin > c.DropHeightMax {
		bad("drop height range [%v,%v] is inverted", c.DropHeightMin, c.DropHeightMax)
	}

	if err := c.Cabinet.validate(c); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (cab Cabinet) validate(c Config) error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: cabinet: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	if !(cab.PitHalfSize > 0) {
		bad("pit half size must be positive, got %v", cab.PitHalfSize)
	}
	if !(cab.WallHeight > 0) || !(cab.WallThick > 0) {
		bad("walls need positive height and thickness, got %v x %v", cab.WallHeight, cab.WallThick)
	}
	if !(cab.BinHalfSize > 0) {
		bad("bin half size must be positive, got %v", cab.BinHalfSize)
	}
	if !(cab.BinFloorY < cab.PitFloorY) {
		bad("bin floor %v must be below pit floor %v", cab.BinFloorY, cab.PitFloorY)
	}
	if !(c.DescendFloorY > cab.PitFloorY) {
		bad("descend floor %v must be above pit floor %v", c.DescendFloorY, cab.PitFloorY)
	}
	edge := cab.PitHalfSize - cab.BinHalfSize
	if c.BinX < -edge || c.BinX > edge || c.BinZ < -edge || c.BinZ > edge {
		bad("bin (%v,%v) does not fit inside the pit", c.BinX, c.BinZ)
	}
	return errors.Join(errs...)
}
