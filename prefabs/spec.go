package prefabs

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/claw"
	"github.com/milk9111/clawmachine/physics"
	"gopkg.in/yaml.v3"
)

// MachineFile is the prefab describing the shipped machine.
const MachineFile = "machine.yaml"

// LoadSpec decodes a prefab over base, so keys missing from the file keep
// base's values.
func LoadSpec[T any](filename string, base T) (T, error) {
	data, err := Load(filename)
	if err != nil {
		return base, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	spec := base
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return base, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return spec, nil
}

type MachineSpec struct {
	Name     string       `yaml:"name"`
	TickRate int          `yaml:"tick_rate"`
	Claw     ClawSpec     `yaml:"claw"`
	Sequence SequenceSpec `yaml:"sequence"`
	Delays   DelaySpec    `yaml:"delays_ms"`
	Grab     GrabSpec     `yaml:"grab"`
	Tether   TetherSpec   `yaml:"tether"`
	Prizes   PrizesSpec   `yaml:"prizes"`
	Cabinet  CabinetSpec  `yaml:"cabinet"`
	Physics  PhysicsSpec  `yaml:"physics"`
}

type RangeSpec struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type VecSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type BoundsSpec struct {
	MinX float64 `yaml:"min_x"`
	MaxX float64 `yaml:"max_x"`
	MinZ float64 `yaml:"min_z"`
	MaxZ float64 `yaml:"max_z"`
}

type SwingSpec struct {
	Frequency float64 `yaml:"frequency"`
	Intensity float64 `yaml:"intensity"`
	Decay     float64 `yaml:"decay"`
}

type JawsSpec struct {
	OpenAngle   float64 `yaml:"open_angle"`
	ClosedAngle float64 `yaml:"closed_angle"`
	Ease        float64 `yaml:"ease"`
	HoldOffset  float64 `yaml:"hold_offset"`
}

type ClawSpec struct {
	RestingHeight float64    `yaml:"resting_height"`
	Bounds        BoundsSpec `yaml:"bounds"`
	MoveSpeed     float64    `yaml:"move_speed"`
	StickDeadzone float64    `yaml:"stick_deadzone"`
	BounceFactor  float64    `yaml:"bounce_factor"`
	Swing         SwingSpec  `yaml:"swing"`
	Jaws          JawsSpec   `yaml:"jaws"`
}

type SequenceSpec struct {
	DescendSpeed       float64 `yaml:"descend_speed"`
	DescendFloorY      float64 `yaml:"descend_floor_y"`
	AscendSpeed        float64 `yaml:"ascend_speed"`
	BinX               float64 `yaml:"bin_x"`
	BinZ               float64 `yaml:"bin_z"`
	BinEase            float64 `yaml:"bin_ease"`
	BinEpsilon         float64 `yaml:"bin_epsilon"`
	ReturnNearEase     float64 `yaml:"return_near_ease"`
	ReturnFarEase      float64 `yaml:"return_far_ease"`
	ReturnNearDistance float64 `yaml:"return_near_distance"`
	ReturnEpsilon      float64 `yaml:"return_epsilon"`
	ReleaseSpeed       float64 `yaml:"release_speed"`
}

type DelaySpec struct {
	Grab       float64 `yaml:"grab"`
	Ascend     float64 `yaml:"ascend"`
	Open       float64 `yaml:"open"`
	Settle     float64 `yaml:"settle"`
	NoCatch    float64 `yaml:"no_catch"`
	WonRemoval float64 `yaml:"won_removal"`
}

type GrabSpec struct {
	Radius              float64   `yaml:"radius"`
	MaxCount            int       `yaml:"max_count"`
	SuccessRate         float64   `yaml:"success_rate"`
	BaseGrip            RangeSpec `yaml:"base_grip"`
	MinGrip             float64   `yaml:"min_grip"`
	GripFreeDistance    float64   `yaml:"grip_free_distance"`
	GripDistancePenalty float64   `yaml:"grip_distance_penalty"`
	GripWeightPenalty   float64   `yaml:"grip_weight_penalty"`
	DropChanceScale     float64   `yaml:"drop_chance_scale"`
	SpeedDropFactor     float64   `yaml:"speed_drop_factor"`
	HeightDropFactor    float64   `yaml:"height_drop_factor"`
	HeightRiskFloor     float64   `yaml:"height_risk_floor"`
	HeightRiskSpan      float64   `yaml:"height_risk_span"`
	DisturbRadius       float64   `yaml:"disturb_radius"`
	DisturbImpulse      float64   `yaml:"disturb_impulse"`
	DropScatter         float64   `yaml:"drop_scatter"`
	DropFallSpeed       float64   `yaml:"drop_fall_speed"`
	// Script names a payout script under scripts/. Empty keeps the fixed
	// success rate.
	Script string `yaml:"script"`
}

type TetherSpec struct {
	Anchor     VecSpec `yaml:"anchor"`
	Segments   int     `yaml:"segments"`
	Gravity    float64 `yaml:"gravity"`
	Wind       float64 `yaml:"wind"`
	Iterations int     `yaml:"iterations"`
	Slack      float64 `yaml:"slack"`
}

type PrizeKindSpec struct {
	Name          string    `yaml:"name"`
	Radius        float64   `yaml:"radius"`
	Weight        RangeSpec `yaml:"weight"`
	Bounciness    RangeSpec `yaml:"bounciness"`
	Deformability RangeSpec `yaml:"deformability"`
}

type PrizesSpec struct {
	Count        int             `yaml:"count"`
	SettleSpeed  float64         `yaml:"settle_speed"`
	SettleHeight float64         `yaml:"settle_height"`
	DropHeight   RangeSpec       `yaml:"drop_height"`
	Kinds        []PrizeKindSpec `yaml:"kinds"`
}

type CabinetSpec struct {
	PitFloorY   float64 `yaml:"pit_floor_y"`
	PitHalfSize float64 `yaml:"pit_half_size"`
	WallHeight  float64 `yaml:"wall_height"`
	WallThick   float64 `yaml:"wall_thick"`
	BinHalfSize float64 `yaml:"bin_half_size"`
	BinFloorY   float64 `yaml:"bin_floor_y"`
	RimHeight   float64 `yaml:"rim_height"`
}

type PhysicsSpec struct {
	Gravity        float64 `yaml:"gravity"`
	GroundFriction float64 `yaml:"ground_friction"`
	AirDamping     float64 `yaml:"air_damping"`
	RestVelocity   float64 `yaml:"rest_velocity"`
}

// DefaultMachineSpec mirrors claw.DefaultConfig with no prizes.
func DefaultMachineSpec() MachineSpec {
	spec := MachineSpecFromConfig(claw.DefaultConfig())
	spec.Name = "default"
	p := physics.DefaultSpaceConfig()
	spec.Physics = PhysicsSpec{
		Gravity:        p.Gravity,
		GroundFriction: p.GroundFriction,
		AirDamping:     p.AirDamping,
		RestVelocity:   p.RestVelocity,
	}
	return spec
}

// LoadMachineSpec reads a machine prefab over the defaults.
func LoadMachineSpec(filename string) (MachineSpec, error) {
	if filename == "" {
		filename = MachineFile
	}
	return LoadSpec(filename, DefaultMachineSpec())
}

func rangeOf(r RangeSpec) claw.Range { return claw.Range{Min: r.Min, Max: r.Max} }

// Config converts the spec into a simulation config. The result is not
// validated here; claw.NewSession does that.
func (m MachineSpec) Config() claw.Config {
	return claw.Config{
		TickRate: m.TickRate,

		RestingHeight: m.Claw.RestingHeight,
		Bounds: claw.Bounds{
			MinX: m.Claw.Bounds.MinX, MaxX: m.Claw.Bounds.MaxX,
			MinZ: m.Claw.Bounds.MinZ, MaxZ: m.Claw.Bounds.MaxZ,
		},
		MoveSpeed:      m.Claw.MoveSpeed,
		StickDeadzone:  m.Claw.StickDeadzone,
		BounceFactor:   m.Claw.BounceFactor,
		SwingFrequency: m.Claw.Swing.Frequency,
		SwingIntensity: m.Claw.Swing.Intensity,
		SwingDecay:     m.Claw.Swing.Decay,
		OpenAngle:      m.Claw.Jaws.OpenAngle,
		ClosedAngle:    m.Claw.Jaws.ClosedAngle,
		AngleEase:      m.Claw.Jaws.Ease,
		HoldOffset:     m.Claw.Jaws.HoldOffset,

		DescendSpeed:       m.Sequence.DescendSpeed,
		DescendFloorY:      m.Sequence.DescendFloorY,
		AscendSpeed:        m.Sequence.AscendSpeed,
		BinX:               m.Sequence.BinX,
		BinZ:               m.Sequence.BinZ,
		BinEase:            m.Sequence.BinEase,
		BinEpsilon:         m.Sequence.BinEpsilon,
		ReturnNearEase:     m.Sequence.ReturnNearEase,
		ReturnFarEase:      m.Sequence.ReturnFarEase,
		ReturnNearDistance: m.Sequence.ReturnNearDistance,
		ReturnEpsilon:      m.Sequence.ReturnEpsilon,
		ReleaseSpeed:       m.Sequence.ReleaseSpeed,

		GrabDelayMs:       m.Delays.Grab,
		AscendDelayMs:     m.Delays.Ascend,
		OpenDelayMs:       m.Delays.Open,
		SettleDelayMs:     m.Delays.Settle,
		NoCatchDelayMs:    m.Delays.NoCatch,
		WonRemovalDelayMs: m.Delays.WonRemoval,

		GrabRadius:          m.Grab.Radius,
		MaxGrabCount:        m.Grab.MaxCount,
		GrabSuccessRate:     m.Grab.SuccessRate,
		BaseGripMin:         m.Grab.BaseGrip.Min,
		BaseGripMax:         m.Grab.BaseGrip.Max,
		MinGrip:             m.Grab.MinGrip,
		GripFreeDistance:    m.Grab.GripFreeDistance,
		GripDistancePenalty: m.Grab.GripDistancePenalty,
		GripWeightPenalty:   m.Grab.GripWeightPenalty,
		DropChanceScale:     m.Grab.DropChanceScale,
		SpeedDropFactor:     m.Grab.SpeedDropFactor,
		HeightDropFactor:    m.Grab.HeightDropFactor,
		HeightRiskFloor:     m.Grab.HeightRiskFloor,
		HeightRiskSpan:      m.Grab.HeightRiskSpan,
		DisturbRadius:       m.Grab.DisturbRadius,
		DisturbImpulse:      m.Grab.DisturbImpulse,
		DropScatter:         m.Grab.DropScatter,
		DropFallSpeed:       m.Grab.DropFallSpeed,

		TetherAnchor:     mgl64.Vec3{m.Tether.Anchor.X, m.Tether.Anchor.Y, m.Tether.Anchor.Z},
		TetherSegments:   m.Tether.Segments,
		TetherGravity:    m.Tether.Gravity,
		TetherWind:       m.Tether.Wind,
		TetherIterations: m.Tether.Iterations,
		TetherSlack:      m.Tether.Slack,

		SettleSpeed:   m.Prizes.SettleSpeed,
		SettleHeight:  m.Prizes.SettleHeight,
		DropHeightMin: m.Prizes.DropHeight.Min,
		DropHeightMax: m.Prizes.DropHeight.Max,

		Cabinet: claw.Cabinet{
			PitFloorY:   m.Cabinet.PitFloorY,
			PitHalfSize: m.Cabinet.PitHalfSize,
			WallHeight:  m.Cabinet.WallHeight,
			WallThick:   m.Cabinet.WallThick,
			BinHalfSize: m.Cabinet.BinHalfSize,
			BinFloorY:   m.Cabinet.BinFloorY,
			RimHeight:   m.Cabinet.RimHeight,
		},
	}
}

// MachineSpecFromConfig is the inverse of Config for everything a
// claw.Config carries.
func MachineSpecFromConfig(c claw.Config) MachineSpec {
	return MachineSpec{
		TickRate: c.TickRate,
		Claw: ClawSpec{
			RestingHeight: c.RestingHeight,
			Bounds: BoundsSpec{
				MinX: c.Bounds.MinX, MaxX: c.Bounds.MaxX,
				MinZ: c.Bounds.MinZ, MaxZ: c.Bounds.MaxZ,
			},
			MoveSpeed:     c.MoveSpeed,
			StickDeadzone: c.StickDeadzone,
			BounceFactor:  c.BounceFactor,
			Swing:         SwingSpec{Frequency: c.SwingFrequency, Intensity: c.SwingIntensity, Decay: c.SwingDecay},
			Jaws:          JawsSpec{OpenAngle: c.OpenAngle, ClosedAngle: c.ClosedAngle, Ease: c.AngleEase, HoldOffset: c.HoldOffset},
		},
		Sequence: SequenceSpec{
			DescendSpeed:       c.DescendSpeed,
			DescendFloorY:      c.DescendFloorY,
			AscendSpeed:        c.AscendSpeed,
			BinX:               c.BinX,
			BinZ:               c.BinZ,
			BinEase:            c.BinEase,
			BinEpsilon:         c.BinEpsilon,
			ReturnNearEase:     c.ReturnNearEase,
			ReturnFarEase:      c.ReturnFarEase,
			ReturnNearDistance: c.ReturnNearDistance,
			ReturnEpsilon:      c.ReturnEpsilon,
			ReleaseSpeed:       c.ReleaseSpeed,
		},
		Delays: DelaySpec{
			Grab:       c.GrabDelayMs,
			Ascend:     c.AscendDelayMs,
			Open:       c.OpenDelayMs,
			Settle:     c.SettleDelayMs,
			NoCatch:    c.NoCatchDelayMs,
			WonRemoval: c.WonRemovalDelayMs,
		},
		Grab: GrabSpec{
			Radius:              c.GrabRadius,
			MaxCount:            c.MaxGrabCount,
			SuccessRate:         c.GrabSuccessRate,
			BaseGrip:            RangeSpec{Min: c.BaseGripMin, Max: c.BaseGripMax},
			MinGrip:             c.MinGrip,
			GripFreeDistance:    c.GripFreeDistance,
			GripDistancePenalty: c.GripDistancePenalty,
			GripWeightPenalty:   c.GripWeightPenalty,
			DropChanceScale:     c.DropChanceScale,
			SpeedDropFactor:     c.SpeedDropFactor,
			HeightDropFactor:    c.HeightDropFactor,
			HeightRiskFloor:     c.HeightRiskFloor,
			HeightRiskSpan:      c.HeightRiskSpan,
			DisturbRadius:       c.DisturbRadius,
			DisturbImpulse:      c.DisturbImpulse,
			DropScatter:         c.DropScatter,
			DropFallSpeed:       c.DropFallSpeed,
		},
		Tether: TetherSpec{
			Anchor:     VecSpec{X: c.TetherAnchor.X(), Y: c.TetherAnchor.Y(), Z: c.TetherAnchor.Z()},
			Segments:   c.TetherSegments,
			Gravity:    c.TetherGravity,
			Wind:       c.TetherWind,
			Iterations: c.TetherIterations,
			Slack:      c.TetherSlack,
		},
		Prizes: PrizesSpec{
			SettleSpeed:  c.SettleSpeed,
			SettleHeight: c.SettleHeight,
			DropHeight:   RangeSpec{Min: c.DropHeightMin, Max: c.DropHeightMax},
		},
		Cabinet: CabinetSpec{
			PitFloorY:   c.Cabinet.PitFloorY,
			PitHalfSize: c.Cabinet.PitHalfSize,
			WallHeight:  c.Cabinet.WallHeight,
			WallThick:   c.Cabinet.WallThick,
			BinHalfSize: c.Cabinet.BinHalfSize,
			BinFloorY:   c.Cabinet.BinFloorY,
			RimHeight:   c.Cabinet.RimHeight,
		},
	}
}

// PrizeKinds converts the prize table.
func (m MachineSpec) PrizeKinds() []claw.PrizeKind {
	kinds := make([]claw.PrizeKind, 0, len(m.Prizes.Kinds))
	for _, k := range m.Prizes.Kinds {
		kinds = append(kinds, claw.PrizeKind{
			Name:          k.Name,
			Radius:        k.Radius,
			Weight:        rangeOf(k.Weight),
			Bounciness:    rangeOf(k.Bounciness),
			Deformability: rangeOf(k.Deformability),
		})
	}
	return kinds
}

// SpaceConfig converts the physics block, stepping at the machine's tick
// rate.
func (m MachineSpec) SpaceConfig() physics.SpaceConfig {
	cfg := physics.DefaultSpaceConfig()
	cfg.Gravity = m.Physics.Gravity
	cfg.GroundFriction = m.Physics.GroundFriction
	cfg.AirDamping = m.Physics.AirDamping
	cfg.RestVelocity = m.Physics.RestVelocity
	if m.TickRate > 0 {
		cfg.TimeStep = 1 / float64(m.TickRate)
	}
	return cfg
}

// Validate checks the whole machine, prize table included.
func (m MachineSpec) Validate() error {
	if err := m.Config().Validate(); err != nil {
		return fmt.Errorf("prefabs: machine %q: %w", m.Name, err)
	}
	for _, k := range m.PrizeKinds() {
		if err := k.Validate(); err != nil {
			return fmt.Errorf("prefabs: machine %q: %w", m.Name, err)
		}
	}
	if m.Prizes.Count < 0 {
		return fmt.Errorf("prefabs: machine %q: %w: negative prize count %d", m.Name, claw.ErrInvalidConfig, m.Prizes.Count)
	}
	if m.Prizes.Count > 0 && len(m.Prizes.Kinds) == 0 {
		return fmt.Errorf("prefabs: machine %q: %w: %d prizes but no kinds", m.Name, claw.ErrInvalidConfig, m.Prizes.Count)
	}
	return nil
}
