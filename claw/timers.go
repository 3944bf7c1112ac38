package claw

// timerAction is a delayed sequencer step.
type timerAction uint8

const (
	actionEvaluateGrab timerAction = iota
	actionBeginAscent
	actionOpenJaws
	actionBeginReturn
	actionNoCatch
)

var actionNames = [...]string{
	actionEvaluateGrab: "evaluate_grab",
	actionBeginAscent:  "begin_ascent",
	actionOpenJaws:     "open_jaws",
	actionBeginReturn:  "begin_return",
	actionNoCatch:      "no_catch",
}

func (a timerAction) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

type pendingAction struct {
	due    uint64
	action timerAction
}

// timerQueue holds one-shot actions due at a tick. Actions due on the same
// tick fire in scheduling order.
type timerQueue struct {
	pending []pendingAction
}

func (q *timerQueue) schedule(now, delay uint64, action timerAction) {
	q.pending = append(q.pending, pendingAction{due: now + delay, action: action})
}

// popDue removes and returns every action due at or before now.
func (q *timerQueue) popDue(now uint64) []timerAction {
	var due []timerAction
	kept := q.pending[:0]
	for _, p := range q.pending {
		if p.due <= now {
			due = append(due, p.action)
			continue
		}
		kept = append(kept, p)
	}
	q.pending = kept
	return due
}

func (q *timerQueue) clear() {
	q.pending = q.pending[:0]
}

func (q *timerQueue) len() int {
	return len(q.pending)
}
