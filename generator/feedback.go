package generator

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is one star rating plus an optional comment on a draft.
type Feedback struct {
	OverallRating int    `json:"overallRating"`
	Text          string `json:"text,omitempty"`
}

func (f Feedback) Validate() error {
	if f.OverallRating < MinRating || f.OverallRating > MaxRating {
		return fmt.Errorf("%w: %d", ErrInvalidRating, f.OverallRating)
	}
	return nil
}

// FeedbackLog is the append-only feedback history of one session. Order is
// significant: prompts number entries by position.
type FeedbackLog struct {
	entries []Feedback
}

// NewFeedbackLog restores a log from a stored snapshot.
func NewFeedbackLog(entries ...Feedback) (*FeedbackLog, error) {
	l := &FeedbackLog{}
	for _, f := range entries {
		if _, err := l.Append(f); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Append adds f and returns the new length.
func (l *FeedbackLog) Append(f Feedback) (int, error) {
	if err := f.Validate(); err != nil {
		return len(l.entries), err
	}
	l.entries = append(l.entries, f)
	return len(l.entries), nil
}

func (l *FeedbackLog) Len() int {
	return len(l.entries)
}

// Entries returns a copy in insertion order.
func (l *FeedbackLog) Entries() []Feedback {
	out := make([]Feedback, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *FeedbackLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Entries())
}

func (l *FeedbackLog) UnmarshalJSON(data []byte) error {
	var entries []Feedback
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	restored, err := NewFeedbackLog(entries...)
	if err != nil {
		return err
	}
	*l = *restored
	return nil
}
