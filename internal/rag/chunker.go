package rag

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/askdoc-io/askdoc/internal/extract"
	"github.com/askdoc-io/askdoc/internal/model"
)

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// Chunker splits extracted page texts into overlapping character windows.
// Consecutive chunks share exactly Overlap characters, so concatenating the
// first chunk with the tail of every following chunk reproduces the joined
// document text.
type Chunker struct {
	ChunkSize int
	Overlap   int
}

func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap must satisfy 0 <= overlap < chunk_size, got %d/%d", overlap, chunkSize)
	}
	return &Chunker{ChunkSize: chunkSize, Overlap: overlap}, nil
}

// Split concatenates page texts (newline-joined) and emits sliding windows of
// at most ChunkSize characters. Each chunk records the page containing its
// first character. An empty page sequence yields no chunks.
func (c *Chunker) Split(fileID string, pages []extract.Page) []model.Chunk {
	if len(pages) == 0 {
		return nil
	}
	var sb strings.Builder
	pageStarts := make([]int, 0, len(pages))
	pageNums := make([]int, 0, len(pages))
	offset := 0
	for i, page := range pages {
		if i > 0 {
			sb.WriteString("\n")
			offset++
		}
		pageStarts = append(pageStarts, offset)
		pageNums = append(pageNums, page.Number)
		runeLen := len([]rune(page.Text))
		offset += runeLen
		sb.WriteString(page.Text)
	}
	runes := []rune(sb.String())
	total := len(runes)
	if total == 0 {
		return nil
	}

	pageFor := func(pos int) int {
		idx := sort.Search(len(pageStarts), func(i int) bool { return pageStarts[i] > pos }) - 1
		if idx < 0 {
			idx = 0
		}
		return pageNums[idx]
	}

	var chunks []model.Chunk
	start := 0
	seq := 0
	for {
		end := start + c.ChunkSize
		if end >= total {
			end = total
		} else {
			end = c.cutPoint(runes, start, end)
		}
		chunks = append(chunks, model.Chunk{
			FileID: fileID,
			Seq:    seq,
			Page:   pageFor(start),
			Text:   string(runes[start:end]),
		})
		if end >= total {
			return chunks
		}
		start = end - c.Overlap
		seq++
	}
}

// cutPoint moves the window end back to the nearest paragraph, sentence or
// word boundary, falling back to a hard character cut. The cut never moves
// into the first three quarters of the window and always leaves the next
// window start strictly after the current one.
func (c *Chunker) cutPoint(runes []rune, start, end int) int {
	lo := start + c.ChunkSize*3/4
	if lo <= start+c.Overlap {
		lo = start + c.Overlap + 1
	}
	if lo >= end {
		return end
	}
	for i := end; i > lo; i-- {
		if i >= 2 && runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}
	for i := end; i > lo; i-- {
		if isSentenceEnd(runes[i-1]) && (i == len(runes) || unicode.IsSpace(runes[i])) {
			return i
		}
	}
	for i := end; i > lo; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}
