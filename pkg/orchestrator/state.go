package orchestrator

// State is the lifecycle state of the supervised engine.
type State int

const (
	// StateStopped is the initial state, before the first start attempt.
	StateStopped State = iota
	// StateStarting means a start attempt is in flight or a retry is pending.
	StateStarting
	// StateRunning means the engine confirmed a bind.
	StateRunning
	// StateFailed is the terminal state after a fatal failure.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// transitions is the complete transition table. Starting -> Starting is
// the port retry.
var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateStarting, StateRunning, StateFailed},
	StateRunning:  {StateFailed},
	StateFailed:   {},
}

func (s State) canTransition(to State) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}
