package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-checks/pkg/storage"
)

// stubSpool records Sweep calls; the other methods are unused.
type stubSpool struct {
	storage.Storage
	removed int
	err     error
	maxAges []time.Duration
}

func (s *stubSpool) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	s.maxAges = append(s.maxAges, maxAge)
	return s.removed, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunNow(t *testing.T) {
	spool := &stubSpool{removed: 3}
	s := NewScheduler(spool, "*/15 * * * *", time.Hour, discardLogger())

	assert.Equal(t, 3, s.RunNow())
	assert.Equal(t, []time.Duration{time.Hour}, spool.maxAges)
}

func TestScheduler_RunNowError(t *testing.T) {
	spool := &stubSpool{removed: 1, err: errors.New("disk gone")}
	s := NewScheduler(spool, "*/15 * * * *", time.Hour, discardLogger())

	assert.Equal(t, 1, s.RunNow())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(&stubSpool{}, "*/15 * * * *", time.Hour, discardLogger())

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)

	ctx := s.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler(&stubSpool{}, "every now and then", time.Hour, discardLogger())
	assert.Error(t, s.Start())
}

func TestScheduler_RealSpool(t *testing.T) {
	spool, err := storage.NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = spool.Upload(context.Background(), "a.pdf", "application/pdf", nopReader{})
	require.NoError(t, err)

	// a negative max age makes every file stale
	s := NewScheduler(spool, "@hourly", -time.Minute, discardLogger())
	assert.Equal(t, 1, s.RunNow())

	files, err := spool.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

type nopReader struct{}

func (nopReader) Read(p []byte) (int, error) { return 0, io.EOF }
