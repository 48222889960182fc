package generator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	MinEmailCount = 1
	MaxEmailCount = 5
)

// Session holds the configuration, feedback history and latest drafts of
// one user's working session. It is the single owner of that state.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	config   Configuration
	count    int
	feedback *FeedbackLog
	emails   []GeneratedEmail
	busy     atomic.Bool
	agent    *Agent
}

// NewSession creates a session with no drafts yet.
func NewSession(id string, cfg Configuration, agent *Agent) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		config:    cfg,
		count:     MinEmailCount,
		feedback:  &FeedbackLog{},
		agent:     agent,
	}
}

// Generate compiles the current configuration with the feedback so far and
// replaces the session drafts. A second call while one is pending fails
// with ErrBusy.
func (s *Session) Generate(ctx context.Context) ([]GeneratedEmail, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	cfg, count, history := s.config, s.count, s.feedback.Entries()
	s.mu.Unlock()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	emails, err := s.agent.Generate(ctx, BuildGenerationRequest(cfg, count, history))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.emails = emails
	s.mu.Unlock()
	return emails, nil
}

// Busy reports whether a generation is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Suggest asks for a suggestion for the field with the given key.
func (s *Session) Suggest(ctx context.Context, fieldKey string) (string, error) {
	s.mu.Lock()
	cfg := s.config
	s.mu.Unlock()

	instruction, err := SuggestionPromptFor(fieldKey, cfg)
	if err != nil {
		return "", err
	}
	return s.agent.Suggest(ctx, instruction)
}

// AddFeedback appends to the history and returns its new length.
func (s *Session) AddFeedback(f Feedback) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback.Append(f)
}

func (s *Session) SetConfig(cfg Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	return nil
}

// SetCount clamps n to the allowed draft count range.
func (s *Session) SetCount(n int) int {
	n = min(max(n, MinEmailCount), MaxEmailCount)
	s.mu.Lock()
	s.count = n
	s.mu.Unlock()
	return n
}

func (s *Session) Config() Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Session) Emails() []GeneratedEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GeneratedEmail, len(s.emails))
	copy(out, s.emails)
	return out
}

func (s *Session) FeedbackHistory() []Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback.Entries()
}

// Restore replaces configuration and feedback history with a stored
// snapshot.
func (s *Session) Restore(cfg Configuration, history []Feedback) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := NewFeedbackLog(history...)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.config = cfg
	s.feedback = log
	s.mu.Unlock()
	return nil
}
