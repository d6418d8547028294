package server

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeu5/fights/config"
	"github.com/zeu5/fights/gomoku"
	"github.com/zeu5/fights/types"
)

var ErrSessionNotFound = errors.New("server: session not found")

// Session is one game of gomoku played over the api.
// All access to the environment goes through the session lock.
type Session struct {
	ID        string
	CreatedAt time.Time

	lock *sync.Mutex
	env  *gomoku.Env
	last types.Result[gomoku.Board]
}

// SessionView is the json form of a session
type SessionView struct {
	ID           string                     `json:"id"`
	Width        int                        `json:"width"`
	Height       int                        `json:"height"`
	WinCondition int                        `json:"win_condition"`
	Participants []types.Participant        `json:"participants"`
	Phase        string                     `json:"phase"`
	Moves        int                        `json:"moves"`
	Winner       *types.Participant         `json:"winner,omitempty"`
	Result       types.Result[gomoku.Board] `json:"result"`
	CreatedAt    time.Time                  `json:"created_at"`
}

// StepOutcome is the result of a step together with whether the move was
// applied. Reason explains a move that was absorbed as a no-op.
type StepOutcome struct {
	Result   types.Result[gomoku.Board]
	Accepted bool
	Reason   error
	// Finished is set on the step that ended the game, by a win or by
	// filling the board
	Finished bool
}

func newSession(env *gomoku.Env) *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		lock:      new(sync.Mutex),
		env:       env,
		last:      env.Reset(),
	}
}

func (s *Session) Reset() types.Result[gomoku.Board] {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.last = s.env.Reset()
	return s.last
}

func (s *Session) Step(p types.Participant, a gomoku.Action) StepOutcome {
	s.lock.Lock()
	defer s.lock.Unlock()
	reason := s.env.Validate(p, a)
	s.last = s.env.Step(p, a)
	return StepOutcome{
		Result:   s.last,
		Accepted: reason == nil,
		Reason:   reason,
		Finished: reason == nil && (s.last.Done || s.env.Full()),
	}
}

func (s *Session) Participants() []types.Participant {
	ps := s.env.Participants()
	return ps[:]
}

func (s *Session) View() SessionView {
	s.lock.Lock()
	defer s.lock.Unlock()
	v := SessionView{
		ID:           s.ID,
		Width:        s.env.Width(),
		Height:       s.env.Height(),
		WinCondition: s.env.WinCondition(),
		Participants: s.Participants(),
		Phase:        s.env.Phase().String(),
		Moves:        s.env.Moves(),
		Result:       s.last,
		CreatedAt:    s.CreatedAt,
	}
	if w, ok := s.env.Winner(); ok {
		v.Winner = &w
	}
	return v
}

// SessionManager owns the live sessions
type SessionManager struct {
	lock     *sync.RWMutex
	sessions map[string]*Session
	defaults config.GomokuConfig
}

func NewSessionManager(defaults config.GomokuConfig) *SessionManager {
	return &SessionManager{
		lock:     new(sync.RWMutex),
		sessions: make(map[string]*Session),
		defaults: defaults,
	}
}

// Create starts a session. Zero fields of opts fall back to the defaults.
func (m *SessionManager) Create(opts config.GomokuConfig) (*Session, error) {
	if opts.Width == 0 {
		opts.Width = m.defaults.Width
	}
	if opts.Height == 0 {
		opts.Height = m.defaults.Height
	}
	if opts.WinCondition == 0 {
		opts.WinCondition = m.defaults.WinCondition
	}
	if len(opts.Participants) == 0 {
		opts.Participants = m.defaults.Participants
	}
	if len(opts.Participants) != 2 {
		return nil, gomoku.ErrInvalidConfig
	}
	participants := [2]types.Participant{{ID: opts.Participants[0]}, {ID: opts.Participants[1]}}
	env, err := gomoku.New(opts.Width, opts.Height, opts.WinCondition, participants)
	if err != nil {
		return nil, err
	}

	s := newSession(env)
	m.lock.Lock()
	m.sessions[s.ID] = s
	m.lock.Unlock()
	return s, nil
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *SessionManager) Delete(id string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// List returns the sessions oldest first
func (m *SessionManager) List() []*Session {
	m.lock.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.lock.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *SessionManager) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.sessions)
}
