package types

// Participant is the opaque identity of an agent acting in an environment.
// Environments compare participants for equality only.
type Participant struct {
	ID string `json:"id"`
}

func (p Participant) String() string {
	return p.ID
}

// Result is produced fresh by every Reset and Step call
type Result[S any] struct {
	State  S       `json:"state"`
	Reward float64 `json:"reward"`
	// Done marks a terminal state
	Done bool   `json:"done"`
	Info string `json:"info"`
}

// Environment is a turn-based environment shared by several participants.
//
// Step applies the action on behalf of the participant only if the action is
// currently legal. An illegal action is absorbed as a no-op: the state does
// not change and a result reflecting the current state is still returned.
type Environment[A, S any] interface {
	// Reset reinitializes the environment, Done is always false
	Reset() Result[S]
	Step(Participant, A) Result[S]
}

// ActionSpace is implemented by environments that can enumerate the
// actions that are legal in the current state.
type ActionSpace[A any] interface {
	LegalActions() []A
}

// Gym is an environment an Agent can drive on its own.
type Gym[A, S any] interface {
	Environment[A, S]
	ActionSpace[A]
}
