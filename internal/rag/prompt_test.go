package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askdoc-io/askdoc/internal/model"
)

func TestBuildPromptContainsAllSections(t *testing.T) {
	retrieved := []model.ScoredChunk{
		{Chunk: model.Chunk{Page: 2, Text: "refunds are processed in 5 days"}, Score: 0.9},
		{Chunk: model.Chunk{Page: 4, Text: "contact support via email"}, Score: 0.5},
	}
	history := []model.Message{
		{Role: model.RoleUser, Content: "what is the refund policy?"},
		{Role: model.RoleAssistant, Content: "Refunds take 5 days."},
	}
	prompt := BuildPrompt("how do I contact support?", retrieved, history)

	require.Contains(t, prompt, "AskDoc")
	require.Contains(t, prompt, "refunds are processed in 5 days")
	require.Contains(t, prompt, "[page 2]")
	require.Contains(t, prompt, "[page 4]")
	require.Contains(t, prompt, "User: what is the refund policy?")
	require.Contains(t, prompt, "AskDoc: Refunds take 5 days.")
	require.True(t, strings.HasSuffix(prompt, "how do I contact support?"))

	// context precedes history which precedes the question
	ctxPos := strings.Index(prompt, "CONTEXT:")
	histPos := strings.Index(prompt, "CONVERSATION SO FAR:")
	qPos := strings.Index(prompt, "QUESTION:")
	require.True(t, ctxPos < histPos && histPos < qPos)
}

func TestBuildPromptNoContextNoHistory(t *testing.T) {
	prompt := BuildPrompt("hello?", nil, nil)
	require.Contains(t, prompt, "(no context available)")
	require.NotContains(t, prompt, "CONVERSATION SO FAR:")
	require.True(t, strings.HasSuffix(prompt, "hello?"))
}
