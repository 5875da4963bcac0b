package service

import (
	"context"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/askdoc-io/askdoc/internal/ai"
	"github.com/askdoc-io/askdoc/internal/extract"
	"github.com/askdoc-io/askdoc/internal/filestore"
	appErr "github.com/askdoc-io/askdoc/internal/pkg/errors"
	"github.com/askdoc-io/askdoc/internal/rag"
)

// PipelineService builds and caches the retrieval index for each uploaded
// document. A build runs at most once per file id: concurrent callers for an
// unseen id share a single in-flight build, and a failed build leaves no
// cache entry behind so the next call can retry.
type PipelineService struct {
	store     filestore.Store
	extractor extract.Extractor
	chunker   *rag.Chunker
	embedder  ai.IEmbedder
	cache     *lru.Cache[string, *rag.DocumentIndex]
	group     singleflight.Group
}

func NewPipelineService(
	store filestore.Store,
	extractor extract.Extractor,
	chunker *rag.Chunker,
	embedder ai.IEmbedder,
	cacheSize int,
) (*PipelineService, error) {
	if cacheSize <= 0 {
		cacheSize = 64
	}
	cache, err := lru.New[string, *rag.DocumentIndex](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("init index cache: %w", err)
	}
	return &PipelineService{
		store:     store,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		cache:     cache,
	}, nil
}

// GetOrBuild returns the document's index, building it on first use.
func (s *PipelineService) GetOrBuild(ctx context.Context, fileID string) (*rag.DocumentIndex, error) {
	if idx, ok := s.cache.Get(fileID); ok {
		return idx, nil
	}
	value, err, _ := s.group.Do(fileID, func() (interface{}, error) {
		if idx, ok := s.cache.Get(fileID); ok {
			return idx, nil
		}
		idx, err := s.build(ctx, fileID)
		if err != nil {
			return nil, err
		}
		s.cache.Add(fileID, idx)
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*rag.DocumentIndex), nil
}

func (s *PipelineService) build(ctx context.Context, fileID string) (*rag.DocumentIndex, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("file_id", fileID))

	file, err := s.store.Open(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown file id %s", appErr.ErrNotFound, fileID)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	pages, err := s.extractor.Extract(ctx, data)
	if err != nil {
		logger.Error("pdf extraction failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrExtractionFailed, err)
	}
	if len(pages) == 0 {
		logger.Warn("document yielded no pages")
		return nil, appErr.ErrDocumentEmpty
	}

	chunks := s.chunker.Split(fileID, pages)
	if len(chunks) == 0 {
		return nil, appErr.ErrDocumentEmpty
	}
	logger.Info("document chunked", zap.Int("pages", len(pages)), zap.Int("chunks", len(chunks)))

	idx, err := rag.BuildIndex(ctx, fileID, chunks, func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.Embed(ctx, text, "RETRIEVAL_DOCUMENT")
	})
	if err != nil {
		logger.Error("index build failed", zap.Error(err))
		return nil, err
	}
	logger.Info("document index built", zap.Int("chunks", idx.Len()))
	return idx, nil
}

// Cached reports whether the document's index is already built.
func (s *PipelineService) Cached(fileID string) bool {
	return s.cache.Contains(fileID)
}
