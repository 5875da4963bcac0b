package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/askdoc-io/askdoc/internal/filestore"
	appErr "github.com/askdoc-io/askdoc/internal/pkg/errors"
)

// UploadService stores uploaded PDF documents under a freshly generated
// opaque file id. An optional archive store receives an off-box copy.
type UploadService struct {
	store   filestore.Store
	archive filestore.Store
}

func NewUploadService(store filestore.Store, archive filestore.Store) *UploadService {
	return &UploadService{store: store, archive: archive}
}

type UploadResult struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
}

func (s *UploadService) Upload(ctx context.Context, filename string, r filestore.ReadSeekCloser, size int64) (*UploadResult, error) {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return nil, fmt.Errorf("%w: only pdf files are allowed", appErr.ErrInvalid)
	}
	fileID := newFileID()
	if err := s.store.Save(ctx, fileID, r, size); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	if s.archive != nil {
		// The primary save consumed the reader; rewind before mirroring.
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			logutil.GetLogger(ctx).Warn("archive upload skipped: rewind failed",
				zap.String("file_id", fileID), zap.Error(err))
		} else if err := s.archive.Save(ctx, fileID, r, size); err != nil {
			// The working copy is saved; a failed archive mirror is not fatal.
			logutil.GetLogger(ctx).Warn("archive upload failed",
				zap.String("file_id", fileID), zap.Error(err))
		}
	}
	logutil.GetLogger(ctx).Info("document uploaded",
		zap.String("file_id", fileID), zap.String("filename", filename), zap.Int64("size", size))
	return &UploadResult{FileID: fileID, Filename: filename}, nil
}
