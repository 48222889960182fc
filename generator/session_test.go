package generator_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_email_copywriter/generator"
)

// blockingLLM holds every call until release is closed.
type blockingLLM struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingLLM) Complete(ctx context.Context, _ generator.Request) (string, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return `[{"subject":"A","body":"B"}]`, nil
}

func newTestSession(t *testing.T, llm generator.LLMClient) *generator.Session {
	t.Helper()
	agent, err := generator.NewAgent(llm)
	require.NoError(t, err)
	return generator.NewSession("test", generator.DefaultConfiguration(), agent)
}

func TestSession_GenerateIncludesFeedback(t *testing.T) {
	llm := &stubLLM{reply: `[{"subject":"A","body":"B"},{"subject":"C","body":"D"}]`}
	sess := newTestSession(t, llm)

	_, err := sess.AddFeedback(generator.Feedback{OverallRating: 2, Text: "muy largo"})
	require.NoError(t, err)
	assert.Equal(t, 2, sess.SetCount(2))

	emails, err := sess.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, emails, 2)
	assert.Equal(t, emails, sess.Emails())

	calls := llm.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Instruction, `- Email 1: 2/5 estrellas. Comentario: "muy largo"`)
	assert.Contains(t, calls[0].Instruction, "array JSON de 2 objeto(s)")
}

func TestSession_GenerateBusy(t *testing.T) {
	llm := &blockingLLM{started: make(chan struct{}), release: make(chan struct{})}
	sess := newTestSession(t, llm)

	done := make(chan error, 1)
	go func() {
		_, err := sess.Generate(context.Background())
		done <- err
	}()
	<-llm.started

	assert.True(t, sess.Busy())
	_, err := sess.Generate(context.Background())
	assert.ErrorIs(t, err, generator.ErrBusy)

	close(llm.release)
	require.NoError(t, <-done)
	assert.False(t, sess.Busy())
	assert.Len(t, sess.Emails(), 1)
}

func TestSession_GenerateFailureKeepsDrafts(t *testing.T) {
	llm := &stubLLM{reply: `[{"subject":"A","body":"B"}]`}
	sess := newTestSession(t, llm)
	_, err := sess.Generate(context.Background())
	require.NoError(t, err)

	llm.mu.Lock()
	llm.reply = "roto"
	llm.mu.Unlock()

	_, err = sess.Generate(context.Background())
	assert.ErrorIs(t, err, generator.ErrMalformedResponse)
	assert.Len(t, sess.Emails(), 1)
}

func TestSession_SetCountClamps(t *testing.T) {
	sess := newTestSession(t, &stubLLM{})

	assert.Equal(t, generator.MinEmailCount, sess.SetCount(0))
	assert.Equal(t, generator.MaxEmailCount, sess.SetCount(9))
	assert.Equal(t, 3, sess.SetCount(3))
	assert.Equal(t, 3, sess.Count())
}

func TestSession_SetConfigValidates(t *testing.T) {
	sess := newTestSession(t, &stubLLM{})

	bad := generator.DefaultConfiguration()
	bad.ParagraphLength = 2
	assert.ErrorIs(t, sess.SetConfig(bad), generator.ErrParagraphDensity)
	assert.InDelta(t, 0.4, sess.Config().ParagraphLength, 1e-9)

	good := generator.DefaultConfiguration()
	good.Topic = "lanzamiento"
	require.NoError(t, sess.SetConfig(good))
	assert.Equal(t, "lanzamiento", sess.Config().Topic)
}

func TestSession_Suggest(t *testing.T) {
	llm := &stubLLM{reply: "Lanzamiento del curso"}
	sess := newTestSession(t, llm)

	got, err := sess.Suggest(context.Background(), "objective")
	require.NoError(t, err)
	assert.Equal(t, generator.InsufficientContextMessage, got)
	assert.Empty(t, llm.calls())

	got, err = sess.Suggest(context.Background(), "topic")
	require.NoError(t, err)
	assert.Equal(t, "Lanzamiento del curso", got)

	_, err = sess.Suggest(context.Background(), "length")
	assert.ErrorIs(t, err, generator.ErrNotSuggestable)
}

func TestSession_Restore(t *testing.T) {
	sess := newTestSession(t, &stubLLM{})
	cfg := generator.ExampleConfiguration()
	history := []generator.Feedback{{OverallRating: 5}, {OverallRating: 1, Text: "no"}}

	require.NoError(t, sess.Restore(cfg, history))
	assert.Equal(t, cfg, sess.Config())
	assert.Equal(t, history, sess.FeedbackHistory())

	assert.ErrorIs(t, sess.Restore(cfg, []generator.Feedback{{OverallRating: 7}}), generator.ErrInvalidRating)
	assert.Equal(t, history, sess.FeedbackHistory())
}
