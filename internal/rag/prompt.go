package rag

import (
	"fmt"
	"strings"

	"github.com/askdoc-io/askdoc/internal/model"
)

const systemPrompt = `You are an intelligent chatbot. Your name is AskDoc and you are a helpful assistant for answering questions based on the provided PDF documents.
Use the context below to answer the question. You must give more priority to the context provided in the PDF documents than to your own knowledge.
If you don't know the answer, just say that you don't know.`

// BuildPrompt assembles the generation request from system instructions,
// retrieved context, conversation history and the current question.
func BuildPrompt(question string, retrieved []model.ScoredChunk, history []model.Message) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nCONTEXT:\n")
	if len(retrieved) == 0 {
		sb.WriteString("(no context available)\n")
	}
	for _, item := range retrieved {
		fmt.Fprintf(&sb, "[page %d]\n%s\n\n", item.Chunk.Page, strings.TrimSpace(item.Chunk.Text))
	}
	if len(history) > 0 {
		sb.WriteString("\nCONVERSATION SO FAR:\n")
		for _, msg := range history {
			role := "User"
			if msg.Role == model.RoleAssistant {
				role = "AskDoc"
			}
			fmt.Fprintf(&sb, "%s: %s\n", role, msg.Content)
		}
	}
	sb.WriteString("\nQUESTION:\n")
	sb.WriteString(question)
	return sb.String()
}
