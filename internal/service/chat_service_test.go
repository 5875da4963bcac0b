package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/askdoc-io/askdoc/internal/history"
	"github.com/askdoc-io/askdoc/internal/model"
	appErr "github.com/askdoc-io/askdoc/internal/pkg/errors"
)

type stubGenerator struct {
	mu      sync.Mutex
	answer  string
	err     error
	delay   time.Duration
	prompts []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	answer, err, delay := s.answer, s.err, s.delay
	s.mu.Unlock()
	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return answer, err
}

func (s *stubGenerator) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

func newTestChat(t *testing.T, gen *stubGenerator, timeout time.Duration) (*ChatService, *history.Store) {
	t.Helper()
	store := newMemStore()
	store.put("doc.pdf", "raw pdf bytes")
	pipeline := newTestPipeline(t, store, &stubExtractor{pages: testPages()}, &stubEmbedder{})
	histories := history.NewStore(0)
	chat := NewChatService(pipeline, histories, gen, &stubEmbedder{}, 4, timeout)
	return chat, histories
}

func TestChatAnswersAndRecordsExchange(t *testing.T) {
	gen := &stubGenerator{answer: "Two years of repairs are covered."}
	chat, histories := newTestChat(t, gen, 0)

	answer, err := chat.Ask(context.Background(), "what does the warranty cover?", "doc.pdf", "s1")
	require.NoError(t, err)
	require.Equal(t, "Two years of repairs are covered.", answer)

	msgs := histories.History("s1")
	require.Len(t, msgs, 2)
	require.Equal(t, model.RoleUser, msgs[0].Role)
	require.Equal(t, "what does the warranty cover?", msgs[0].Content)
	require.Equal(t, model.RoleAssistant, msgs[1].Role)
	require.Equal(t, answer, msgs[1].Content)

	require.Contains(t, gen.lastPrompt(), "warranty")
	require.Contains(t, gen.lastPrompt(), "AskDoc")
}

func TestChatSecondTurnSeesHistory(t *testing.T) {
	gen := &stubGenerator{answer: "Thirty days."}
	chat, _ := chatWithFirstTurn(t, gen)

	_, err := chat.Ask(context.Background(), "and the claim deadline?", "doc.pdf", "s1")
	require.NoError(t, err)
	require.Contains(t, gen.lastPrompt(), "User: what does the warranty cover?")
	require.Contains(t, gen.lastPrompt(), "CONVERSATION SO FAR:")
}

func chatWithFirstTurn(t *testing.T, gen *stubGenerator) (*ChatService, *history.Store) {
	t.Helper()
	chat, histories := newTestChat(t, gen, 0)
	_, err := chat.Ask(context.Background(), "what does the warranty cover?", "doc.pdf", "s1")
	require.NoError(t, err)
	return chat, histories
}

func TestChatValidatesInput(t *testing.T) {
	gen := &stubGenerator{answer: "x"}
	chat, _ := newTestChat(t, gen, 0)

	_, err := chat.Ask(context.Background(), "   ", "doc.pdf", "s1")
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = chat.Ask(context.Background(), "hello", "", "s1")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestChatUnknownDocument(t *testing.T) {
	gen := &stubGenerator{answer: "x"}
	chat, histories := newTestChat(t, gen, 0)

	_, err := chat.Ask(context.Background(), "hello", "nope.pdf", "s1")
	require.ErrorIs(t, err, appErr.ErrNotFound)
	require.Empty(t, histories.History("s1"))
}

func TestChatGenerationFailureLeavesHistoryUntouched(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider exploded")}
	chat, histories := newTestChat(t, gen, 0)

	_, err := chat.Ask(context.Background(), "hello", "doc.pdf", "s1")
	require.ErrorIs(t, err, appErr.ErrGenerationFailed)
	require.Empty(t, histories.History("s1"))
}

func TestChatGenerationTimeout(t *testing.T) {
	gen := &stubGenerator{answer: "too late", delay: 200 * time.Millisecond}
	chat, histories := newTestChat(t, gen, 10*time.Millisecond)

	_, err := chat.Ask(context.Background(), "hello", "doc.pdf", "s1")
	require.ErrorIs(t, err, appErr.ErrGenerationFailed)
	require.Empty(t, histories.History("s1"))
}

func TestChatDefaultSession(t *testing.T) {
	gen := &stubGenerator{answer: "hi"}
	chat, histories := newTestChat(t, gen, 0)

	_, err := chat.Ask(context.Background(), "hello", "doc.pdf", "")
	require.NoError(t, err)
	require.Len(t, histories.History("default"), 2)
	require.Len(t, chat.History(""), 2)
}
