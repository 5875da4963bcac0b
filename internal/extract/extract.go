package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Page is one page of extracted document text, 1-based.
type Page struct {
	Number int
	Text   string
}

// Extractor turns raw document bytes into ordered page texts.
type Extractor interface {
	Extract(ctx context.Context, data []byte) ([]Page, error)
}

type pdfExtractor struct{}

func NewPDFExtractor() Extractor {
	return &pdfExtractor{}
}

func (e *pdfExtractor) Extract(ctx context.Context, data []byte) ([]Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	logger := logutil.GetLogger(ctx)

	var pages []Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page does not make the document unusable.
			logger.Warn("skipping unreadable pdf page", zap.Int("page", i), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}
