package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/askdoc-io/askdoc/internal/ai"
	"github.com/askdoc-io/askdoc/internal/history"
	"github.com/askdoc-io/askdoc/internal/model"
	appErr "github.com/askdoc-io/askdoc/internal/pkg/errors"
	"github.com/askdoc-io/askdoc/internal/rag"
)

const DefaultTopK = 4

// ChatService answers questions grounded in an uploaded document: retrieve
// top-k chunks, combine them with the session history, generate, then record
// the exchange.
type ChatService struct {
	pipeline  *PipelineService
	histories *history.Store
	generator ai.IGenerator
	embedder  ai.IEmbedder
	topK      int
	timeout   time.Duration
}

func NewChatService(
	pipeline *PipelineService,
	histories *history.Store,
	generator ai.IGenerator,
	embedder ai.IEmbedder,
	topK int,
	timeout time.Duration,
) *ChatService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ChatService{
		pipeline:  pipeline,
		histories: histories,
		generator: generator,
		embedder:  embedder,
		topK:      topK,
		timeout:   timeout,
	}
}

func (s *ChatService) Ask(ctx context.Context, question, fileID, sessionID string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: message is required", appErr.ErrInvalid)
	}
	if fileID == "" {
		return "", fmt.Errorf("%w: file_id is required", appErr.ErrInvalid)
	}
	if sessionID == "" {
		sessionID = "default"
	}
	logger := logutil.GetLogger(ctx).With(
		zap.String("file_id", fileID), zap.String("session_id", sessionID))

	idx, err := s.pipeline.GetOrBuild(ctx, fileID)
	if err != nil {
		return "", err
	}

	queryVec, err := s.embedder.Embed(ctx, question, "RETRIEVAL_QUERY")
	if err != nil {
		logger.Error("query embedding failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", appErr.ErrGenerationFailed, err)
	}
	retrieved := idx.Search(queryVec, s.topK)
	msgs := s.histories.History(sessionID)

	prompt := rag.BuildPrompt(question, retrieved, msgs)
	answer, err := s.generate(ctx, prompt)
	if err != nil {
		// History stays untouched: a question with no answer is never recorded.
		logger.Error("answer generation failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", appErr.ErrGenerationFailed, err)
	}

	now := time.Now()
	s.histories.Append(sessionID,
		model.Message{Role: model.RoleUser, Content: question, Time: now},
		model.Message{Role: model.RoleAssistant, Content: answer, Time: now},
	)
	logger.Info("question answered", zap.Int("retrieved", len(retrieved)))
	return answer, nil
}

func (s *ChatService) generate(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.New("empty ai response")
	}
	return answer, nil
}

// History exposes the session transcript, newest last.
func (s *ChatService) History(sessionID string) []model.Message {
	if sessionID == "" {
		sessionID = "default"
	}
	return s.histories.History(sessionID)
}
