package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/askdoc-io/askdoc/internal/model"
)

func TestStoreCreatesSessionOnFirstUse(t *testing.T) {
	s := NewStore(0)
	require.Empty(t, s.History("fresh"))
	s.Append("fresh", model.Message{Role: model.RoleUser, Content: "hi"})
	got := s.History("fresh")
	require.Len(t, got, 1)
	require.Equal(t, "hi", got[0].Content)
}

func TestStoreHistoryReturnsCopy(t *testing.T) {
	s := NewStore(0)
	s.Append("a", model.Message{Role: model.RoleUser, Content: "one"})
	got := s.History("a")
	got[0].Content = "mutated"
	require.Equal(t, "one", s.History("a")[0].Content)
}

func TestStoreConcurrentAppendsLoseNothing(t *testing.T) {
	s := NewStore(0)
	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Append("shared", model.Message{
					Role:    model.RoleUser,
					Content: fmt.Sprintf("w%d-m%d", w, i),
				})
			}
		}(w)
	}
	wg.Wait()

	got := s.History("shared")
	require.Len(t, got, workers*perWorker)
	seen := make(map[string]bool, len(got))
	for _, msg := range got {
		require.False(t, seen[msg.Content], "duplicate message %s", msg.Content)
		seen[msg.Content] = true
	}
}

func TestStoreAppendPairIsAtomic(t *testing.T) {
	s := NewStore(0)
	const workers = 8
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				q := fmt.Sprintf("q-%d-%d", w, i)
				s.Append("chat",
					model.Message{Role: model.RoleUser, Content: q},
					model.Message{Role: model.RoleAssistant, Content: "a:" + q},
				)
			}
		}(w)
	}
	wg.Wait()

	got := s.History("chat")
	require.Equal(t, 0, len(got)%2)
	for i := 0; i < len(got); i += 2 {
		require.Equal(t, model.RoleUser, got[i].Role)
		require.Equal(t, model.RoleAssistant, got[i+1].Role)
		require.Equal(t, "a:"+got[i].Content, got[i+1].Content)
	}
}

func TestStoreUnrelatedSessionsAreIsolated(t *testing.T) {
	s := NewStore(0)
	s.Append("a", model.Message{Role: model.RoleUser, Content: "for a"})
	s.Append("b", model.Message{Role: model.RoleUser, Content: "for b"})
	require.Len(t, s.History("a"), 1)
	require.Len(t, s.History("b"), 1)
	require.Equal(t, "for a", s.History("a")[0].Content)
}

func TestStoreCapsMessages(t *testing.T) {
	s := NewStore(4)
	for i := 0; i < 10; i++ {
		s.Append("capped", model.Message{Role: model.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}
	got := s.History("capped")
	require.Len(t, got, 4)
	require.Equal(t, "m6", got[0].Content)
	require.Equal(t, "m9", got[3].Content)
}

func TestStoreSweepIdle(t *testing.T) {
	s := NewStore(0)
	now := time.Now()
	s.now = func() time.Time { return now }
	s.Append("old", model.Message{Role: model.RoleUser, Content: "x"})

	s.now = func() time.Time { return now.Add(30 * time.Minute) }
	s.Append("active", model.Message{Role: model.RoleUser, Content: "y"})

	removed := s.SweepIdle(10 * time.Minute)
	require.Equal(t, 1, removed)
	require.Equal(t, 1, s.Len())
	require.Empty(t, s.History("old"))
	require.Len(t, s.History("active"), 1)
}

func TestStoreAppendAfterSweepIsNeverLost(t *testing.T) {
	s := NewStore(0)
	now := time.Now()
	s.now = func() time.Time { return now }
	s.Append("a", model.Message{Role: model.RoleUser, Content: "m1"})

	// A caller may still hold the session pointer when the sweeper removes it.
	stale := s.get("a")

	s.now = func() time.Time { return now.Add(time.Hour) }
	require.Equal(t, 1, s.SweepIdle(10*time.Minute))

	stale.mu.Lock()
	require.True(t, stale.gone)
	staleLen := len(stale.messages)
	stale.mu.Unlock()

	// Appending through the stale id must land in a live session, not on the
	// swept object.
	s.Append("a", model.Message{Role: model.RoleUser, Content: "m2"})
	got := s.History("a")
	require.Len(t, got, 1)
	require.Equal(t, "m2", got[0].Content)

	stale.mu.Lock()
	require.Equal(t, staleLen, len(stale.messages))
	stale.mu.Unlock()
}
