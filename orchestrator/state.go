package orchestrator

// State is a stage of a turn. A turn moves forward only and ends in
// StateDone or StateAborted.
type State int

const (
	StateInit State = iota
	StateContextLoaded
	StateFirstCallPending
	StateToolLoop
	StateSecondCallPending
	StateResponding
	StateDone
	StateAborted
)

var stateNames = [...]string{
	StateInit:              "init",
	StateContextLoaded:     "context_loaded",
	StateFirstCallPending:  "first_call_pending",
	StateToolLoop:          "tool_loop",
	StateSecondCallPending: "second_call_pending",
	StateResponding:        "responding",
	StateDone:              "done",
	StateAborted:           "aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}
