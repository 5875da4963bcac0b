package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/askdoc-io/askdoc/internal/history"
)

// SessionSweepJob drops conversation sessions that have been idle longer than
// maxIdle, keeping the in-memory store bounded on long-running processes.
type SessionSweepJob struct {
	store   *history.Store
	maxIdle time.Duration
}

func NewSessionSweepJob(store *history.Store, maxIdle time.Duration) *SessionSweepJob {
	return &SessionSweepJob{store: store, maxIdle: maxIdle}
}

func (j *SessionSweepJob) Name() string {
	return "session_sweep"
}

func (j *SessionSweepJob) Run(ctx context.Context) error {
	if j.store == nil || j.maxIdle <= 0 {
		return nil
	}
	removed := j.store.SweepIdle(j.maxIdle)
	if removed > 0 {
		logutil.GetLogger(ctx).Info("idle sessions swept", zap.Int("removed", removed))
	}
	return nil
}
