package claw

import "github.com/milk9111/clawmachine/ecs"

const (
	EventPrizesGrabbed ecs.EventType = "prizes_grabbed"
	EventPrizeDropped  ecs.EventType = "prize_dropped"
	EventPrizeWon      ecs.EventType = "prize_won"
	EventPrizeRemoved  ecs.EventType = "prize_removed"
	EventLose          ecs.EventType = "lose"
	EventBounce        ecs.EventType = "bounce"
	EventStateChanged  ecs.EventType = "state_changed"
)

// Axis names a lateral axis.
type Axis uint8

const (
	AxisX Axis = iota
	AxisZ
)

func (a Axis) String() string {
	if a == AxisZ {
		return "z"
	}
	return "x"
}

// StateChange is the payload of EventStateChanged.
type StateChange struct {
	From, To State
}

// Handlers receive the outcome of a tick after all systems have run, in the
// order the events were published. Nil handlers are skipped.
type Handlers struct {
	OnPrizeGrabbed func(prizes []*Prize)
	OnPrizeDropped func(p *Prize)
	OnPrizeWon     func(p *Prize)
	OnPrizeRemoved func(p *Prize)
	OnLose         func()
	OnBounce       func(axis Axis)
	OnStateChange  func(change StateChange)
}

// eventBus is the part of ecs.World the components publish through.
type eventBus interface {
	Publish(t ecs.EventType, data any)
	Tick() uint64
}

func (h Handlers) dispatch(evt ecs.Event) {
	switch evt.Type {
	case EventPrizesGrabbed:
		if prizes, ok := evt.Data.([]*Prize); ok && h.OnPrizeGrabbed != nil {
			h.OnPrizeGrabbed(prizes)
		}
	case EventPrizeDropped:
		if p, ok := evt.Data.(*Prize); ok && h.OnPrizeDropped != nil {
			h.OnPrizeDropped(p)
		}
	case EventPrizeWon:
		if p, ok := evt.Data.(*Prize); ok && h.OnPrizeWon != nil {
			h.OnPrizeWon(p)
		}
	case EventPrizeRemoved:
		if p, ok := evt.Data.(*Prize); ok && h.OnPrizeRemoved != nil {
			h.OnPrizeRemoved(p)
		}
	case EventLose:
		if h.OnLose != nil {
			h.OnLose()
		}
	case EventBounce:
		if a, ok := evt.Data.(Axis); ok && h.OnBounce != nil {
			h.OnBounce(a)
		}
	case EventStateChanged:
		if c, ok := evt.Data.(StateChange); ok && h.OnStateChange != nil {
			h.OnStateChange(c)
		}
	}
}
