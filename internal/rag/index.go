package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/askdoc-io/askdoc/internal/model"
)

// EmbedFunc maps a chunk text to its embedding vector.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// DocumentIndex is the searchable collection of embedded chunks for one
// uploaded document. It is immutable once built.
type DocumentIndex struct {
	fileID  string
	builtAt time.Time
	vectors [][]float32
	chunks  []model.Chunk
}

// BuildIndex embeds every chunk and stores L2-normalized vectors, so search
// can score by plain dot product.
func BuildIndex(ctx context.Context, fileID string, chunks []model.Chunk, embed EmbedFunc) (*DocumentIndex, error) {
	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := embed(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", chunk.Seq, err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("empty embedding for chunk %d", chunk.Seq)
		}
		vectors = append(vectors, normalize(vec))
	}
	stored := make([]model.Chunk, len(chunks))
	copy(stored, chunks)
	return &DocumentIndex{
		fileID:  fileID,
		builtAt: time.Now(),
		vectors: vectors,
		chunks:  stored,
	}, nil
}

func (idx *DocumentIndex) FileID() string {
	return idx.fileID
}

func (idx *DocumentIndex) BuiltAt() time.Time {
	return idx.builtAt
}

func (idx *DocumentIndex) Len() int {
	return len(idx.chunks)
}

// Search returns up to k chunks ordered by descending cosine similarity.
// Ties are broken by lower sequence index so results are deterministic.
func (idx *DocumentIndex) Search(query []float32, k int) []model.ScoredChunk {
	if idx == nil || len(idx.chunks) == 0 || len(query) == 0 || k <= 0 {
		return nil
	}
	q := normalize(query)
	results := make([]model.ScoredChunk, 0, len(idx.chunks))
	for i, vec := range idx.vectors {
		results = append(results, model.ScoredChunk{
			Chunk: idx.chunks[i],
			Score: dot(vec, q),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Seq < results[j].Chunk.Seq
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	out := make([]float32, len(vec))
	if sum == 0 {
		copy(out, vec)
		return out
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}
