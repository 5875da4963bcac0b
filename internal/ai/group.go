package ai

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type GeneratorEntry struct {
	Name      string
	Generator IGenerator
}

type EmbedderEntry struct {
	Name     string
	Embedder IEmbedder
}

// groupGenerator tries each backend in order and answers with the first
// success. Provider outages degrade to the next entry instead of failing the
// chat turn.
type groupGenerator struct {
	items []GeneratorEntry
}

func NewGroupGenerator(items []GeneratorEntry) IGenerator {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return items[0].Generator
	}
	return &groupGenerator{items: items}
}

func (g *groupGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, item := range g.items {
		if item.Generator == nil {
			continue
		}
		answer, err := item.Generator.Generate(ctx, prompt)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("generator backend failed, trying next",
			zap.String("backend", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return "", ErrUnavailable
	}
	return "", lastErr
}

type groupEmbedder struct {
	items []EmbedderEntry
}

// NewGroupEmbedder builds a failover embedder. Mixing embedding models in one
// group changes the vector space between fallbacks, so entries should share a
// model family; the composite ModelName keeps their cache keys apart anyway.
func NewGroupEmbedder(items []EmbedderEntry) IEmbedder {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return items[0].Embedder
	}
	return &groupEmbedder{items: items}
}

func (g *groupEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	var lastErr error
	for _, item := range g.items {
		if item.Embedder == nil {
			continue
		}
		vec, err := item.Embedder.Embed(ctx, text, taskType)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("embedder backend failed, trying next",
			zap.String("backend", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return nil, ErrUnavailable
	}
	return nil, lastErr
}

func (g *groupEmbedder) ModelName() string {
	names := make([]string, 0, len(g.items))
	for _, item := range g.items {
		if item.Embedder == nil {
			continue
		}
		names = append(names, item.Embedder.ModelName())
	}
	return strings.Join(names, "|")
}
