// Package wizard runs multi-step admin dialogues: a flow is an ordered
// list of steps, each with a prompt, a validator and an optional skip
// predicate evaluated against the answers collected so far. Flows nest: a
// step can start a sub-flow and the outer session resumes where it left
// off when the inner one completes.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/clubhaus/backoffice/internal/domain"
)

// Step is one question in a flow. Validate parses the raw input into the
// typed answer stored under Key; a validation error re-prompts without
// advancing. Skip, when set and true, drops the step so its key never
// appears in the answers.
type Step struct {
	Key      string
	Prompt   func(s *Session) string
	Validate func(input string) (any, error)
	Skip     func(s *Session) bool
}

// Flow is a named sequence of steps with a completion action. OnFinish
// receives the collected answers and returns the closing message.
type Flow struct {
	Name     string
	Steps    []Step
	OnFinish func(ctx context.Context, s *Session) (string, error)
}

// Session is a user's progress through a flow. Parent holds the suspended
// outer session while a nested flow runs.
type Session struct {
	UserID    int64          `json:"user_id"`
	Flow      string         `json:"flow"`
	StepIndex int            `json:"step_index"`
	Answers   map[string]any `json:"answers"`
	Parent    *Session       `json:"parent,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Answer returns a collected answer by key.
func (s *Session) Answer(key string) (any, bool) {
	v, ok := s.Answers[key]
	return v, ok
}

// Bool returns a boolean answer, false when absent.
func (s *Session) Bool(key string) bool {
	v, ok := s.Answers[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// SessionStore persists in-flight wizard sessions, one per user.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, userID int64) error
}

// MemSessions is the in-memory SessionStore used by the API process.
type MemSessions struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewMemSessions creates an empty session store.
func NewMemSessions() *MemSessions {
	return &MemSessions{sessions: make(map[int64]*Session)}
}

func (m *MemSessions) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID], nil
}

func (m *MemSessions) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s
	return nil
}

func (m *MemSessions) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Runner drives registered flows over a session store.
type Runner struct {
	mu       sync.RWMutex
	flows    map[string]*Flow
	sessions SessionStore
	logger   *slog.Logger
}

// NewRunner creates a Runner on the given session store.
func NewRunner(sessions SessionStore, logger *slog.Logger) *Runner {
	return &Runner{
		flows:    make(map[string]*Flow),
		sessions: sessions,
		logger:   logger,
	}
}

// Register adds a flow. Registering two flows under one name is a
// programming error.
func (r *Runner) Register(f *Flow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.flows[f.Name]; dup {
		panic(fmt.Sprintf("wizard: duplicate flow %q", f.Name))
	}
	r.flows[f.Name] = f
}

func (r *Runner) flow(name string) (*Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.flows[name]
	if !ok {
		return nil, domain.ErrNotFound("flow", name)
	}
	return f, nil
}

// StepResult is the outcome of feeding the wizard. Invalid carries a
// validation message when the step rejected the input; Done marks flow
// completion, with Prompt holding the closing message (or, after a nested
// flow, the resumed outer prompt).
type StepResult struct {
	Prompt  string `json:"prompt"`
	Invalid string `json:"invalid,omitempty"`
	Done    bool   `json:"done"`
}

// Start begins a flow for the user. An in-flight session is suspended and
// becomes the parent of the new one, resuming when the inner flow ends.
func (r *Runner) Start(ctx context.Context, userID int64, flowName string) (*StepResult, error) {
	flow, err := r.flow(flowName)
	if err != nil {
		return nil, err
	}

	parent, err := r.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if parent != nil && parent.Flow == flowName {
		return nil, domain.ErrConflict(fmt.Sprintf("flow %q already in progress", flowName))
	}

	sess := &Session{
		UserID:    userID,
		Flow:      flowName,
		Answers:   make(map[string]any),
		Parent:    parent,
		UpdatedAt: time.Now(),
	}
	sess.StepIndex = nextStep(flow, sess, 0)
	if sess.StepIndex >= len(flow.Steps) {
		return r.finish(ctx, flow, sess)
	}

	if err := r.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return &StepResult{Prompt: flow.Steps[sess.StepIndex].Prompt(sess)}, nil
}

// Input feeds the user's answer to the current step.
func (r *Runner) Input(ctx context.Context, userID int64, input string) (*StepResult, error) {
	sess, err := r.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrNotFound("wizard session", fmt.Sprintf("%d", userID))
	}

	flow, err := r.flow(sess.Flow)
	if err != nil {
		return nil, err
	}

	step := flow.Steps[sess.StepIndex]
	value, verr := step.Validate(input)
	if verr != nil {
		return &StepResult{Invalid: verr.Error(), Prompt: step.Prompt(sess)}, nil
	}
	sess.Answers[step.Key] = value
	sess.UpdatedAt = time.Now()

	sess.StepIndex = nextStep(flow, sess, sess.StepIndex+1)
	if sess.StepIndex >= len(flow.Steps) {
		return r.finish(ctx, flow, sess)
	}

	if err := r.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return &StepResult{Prompt: flow.Steps[sess.StepIndex].Prompt(sess)}, nil
}

// Cancel abandons the user's whole wizard stack.
func (r *Runner) Cancel(ctx context.Context, userID int64) error {
	sess, err := r.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	if sess == nil {
		return domain.ErrNotFound("wizard session", fmt.Sprintf("%d", userID))
	}
	return r.sessions.Delete(ctx, userID)
}

// finish runs the completion action and restores the parent session when
// one is suspended.
func (r *Runner) finish(ctx context.Context, flow *Flow, sess *Session) (*StepResult, error) {
	msg, err := flow.OnFinish(ctx, sess)
	if err != nil {
		// Abort the inner flow but hand a suspended outer session back.
		if sess.Parent != nil {
			_ = r.sessions.Put(ctx, sess.Parent)
		} else {
			_ = r.sessions.Delete(ctx, sess.UserID)
		}
		return nil, err
	}

	if sess.Parent != nil {
		outer := sess.Parent
		if err := r.sessions.Put(ctx, outer); err != nil {
			return nil, err
		}
		outerFlow, ferr := r.flow(outer.Flow)
		if ferr == nil && outer.StepIndex < len(outerFlow.Steps) {
			msg = msg + "\n" + outerFlow.Steps[outer.StepIndex].Prompt(outer)
		}
		return &StepResult{Prompt: msg, Done: true}, nil
	}

	if err := r.sessions.Delete(ctx, sess.UserID); err != nil {
		return nil, err
	}
	return &StepResult{Prompt: msg, Done: true}, nil
}

// nextStep advances from i past every step whose skip predicate fires.
func nextStep(flow *Flow, sess *Session, i int) int {
	for i < len(flow.Steps) {
		step := flow.Steps[i]
		if step.Skip == nil || !step.Skip(sess) {
			return i
		}
		i++
	}
	return i
}
