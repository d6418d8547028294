package types

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoParticipants  = errors.New("agent: no participants")
	ErrPolicyMismatch  = errors.New("agent: one policy is required per participant")
	ErrNoEnvironment   = errors.New("agent: no environment")
	ErrInvalidSchedule = errors.New("agent: episodes and horizon must be positive")
)

type AgentConfig[A, S any] struct {
	Episodes     int
	Horizon      int
	Participants []Participant
	// Policies[i] acts for Participants[i]
	Policies    []Policy[A, S]
	Environment Gym[A, S]
}

func (c *AgentConfig[A, S]) Validate() error {
	if len(c.Participants) == 0 {
		return ErrNoParticipants
	}
	if len(c.Policies) != len(c.Participants) {
		return fmt.Errorf("%w: %d participants, %d policies", ErrPolicyMismatch, len(c.Participants), len(c.Policies))
	}
	if c.Environment == nil {
		return ErrNoEnvironment
	}
	if c.Episodes <= 0 || c.Horizon <= 0 {
		return fmt.Errorf("%w: episodes=%d horizon=%d", ErrInvalidSchedule, c.Episodes, c.Horizon)
	}
	return nil
}

// Outcome says why an episode ended
type Outcome int

const (
	// OutcomeTerminal the environment reported Done
	OutcomeTerminal Outcome = iota
	// OutcomeExhausted no legal action was left, or a policy declined to act
	OutcomeExhausted
	// OutcomeHorizon the horizon was reached
	OutcomeHorizon
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTerminal:
		return "terminal"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeHorizon:
		return "horizon"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Episode is the summary of one run through the environment
type Episode[A, S any] struct {
	Index   int
	Outcome Outcome
	// Finisher is the participant whose step ended the episode in a
	// terminal state.
	Finisher *Participant
	// Winner of a terminal episode, nil for a draw. Environments that
	// implement Judge decide it, otherwise it is the Finisher.
	Winner *Participant
	Trace  *Trace[A, S]
}

// Judge is implemented by environments that name the winner of a
// finished game
type Judge interface {
	Winner() (Participant, bool)
}

func (e *Episode[A, S]) Steps() int {
	return e.Trace.Len()
}

// Agent drives an environment with one policy per participant,
// participants taking turns in the configured order.
type Agent[A, S any] struct {
	config      *AgentConfig[A, S]
	environment Gym[A, S]
}

func NewAgent[A, S any](config *AgentConfig[A, S]) (*Agent[A, S], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Agent[A, S]{
		config:      config,
		environment: config.Environment,
	}, nil
}

// Run the agent for the configured number of episodes. It stops early
// when ctx is cancelled and returns the episodes completed so far.
func (a *Agent[A, S]) Run(ctx context.Context) ([]*Episode[A, S], error) {
	episodes := make([]*Episode[A, S], 0, a.config.Episodes)
	for i := 0; i < a.config.Episodes; i++ {
		select {
		case <-ctx.Done():
			return episodes, ctx.Err()
		default:
		}
		episodes = append(episodes, a.RunEpisode(i))
	}
	return episodes, nil
}

func (a *Agent[A, S]) winner(finisher Participant) *Participant {
	judge, ok := a.environment.(Judge)
	if !ok {
		return &finisher
	}
	if w, ok := judge.Winner(); ok {
		return &w
	}
	return nil
}

// RunEpisode resets the environment and plays until a terminal state,
// an empty action space or the horizon.
func (a *Agent[A, S]) RunEpisode(episode int) *Episode[A, S] {
	result := a.environment.Reset()
	state := result.State
	trace := NewTrace[A, S]()
	out := &Episode[A, S]{
		Index:   episode,
		Outcome: OutcomeHorizon,
		Trace:   trace,
	}

	turn := 0
	for i := 0; i < a.config.Horizon; i++ {
		actions := a.environment.LegalActions()
		if len(actions) == 0 {
			out.Outcome = OutcomeExhausted
			break
		}
		participant := a.config.Participants[turn]
		policy := a.config.Policies[turn]

		nextAction, ok := policy.NextAction(i, state, actions)
		if !ok {
			out.Outcome = OutcomeExhausted
			break
		}
		result = a.environment.Step(participant, nextAction)
		policy.Update(i, state, nextAction, result)

		trace.Append(participant, state, nextAction, result)
		state = result.State
		if result.Done {
			out.Outcome = OutcomeTerminal
			finisher := participant
			out.Finisher = &finisher
			out.Winner = a.winner(finisher)
			break
		}
		turn = (turn + 1) % len(a.config.Participants)
	}
	// the last step within the horizon may have used up the action space
	if out.Outcome == OutcomeHorizon && len(a.environment.LegalActions()) == 0 {
		out.Outcome = OutcomeExhausted
	}

	for _, p := range a.config.Policies {
		p.UpdateIteration(episode, trace)
	}
	return out
}
