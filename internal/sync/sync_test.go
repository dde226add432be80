package sync_test

import (
	"context"
	"errors"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/internal/derived"
	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
	"github.com/jonesrussell/north-cloud/stayscope/internal/elasticsearch"
	stsync "github.com/jonesrussell/north-cloud/stayscope/internal/sync"
	"github.com/jonesrussell/north-cloud/stayscope/internal/telemetry"
)

const testIndex = "hotel_bookings"

type fakeSource struct {
	rows     []domain.Booking
	countErr error
	failAt   map[int]bool
}

func newSource(n int) *fakeSource {
	rows := make([]domain.Booking, n)
	for i := range rows {
		rows[i] = domain.Booking{
			ID:                   int64(i + 1),
			Hotel:                "City Hotel",
			Adults:               2,
			StaysInWeekNights:    2,
			StaysInWeekendNights: 1,
			ADR:                  100,
		}
	}
	return &fakeSource{rows: rows, failAt: map[int]bool{}}
}

func (s *fakeSource) Count(context.Context) (int64, error) {
	return int64(len(s.rows)), s.countErr
}

func (s *fakeSource) ListChunk(_ context.Context, offset, limit int) ([]domain.Booking, error) {
	if s.failAt[offset] {
		return nil, errors.New("connection reset")
	}
	if offset >= len(s.rows) {
		return nil, nil
	}
	return s.rows[offset:min(offset+limit, len(s.rows))], nil
}

type fakeIndexer struct {
	mu   gosync.Mutex
	docs map[string]domain.BookingDocument

	delay       time.Duration
	inflight    atomic.Int32
	maxInflight atomic.Int32

	entered chan struct{}
	release chan struct{}
}

func newIndexer() *fakeIndexer {
	return &fakeIndexer{docs: map[string]domain.BookingDocument{}}
}

func (f *fakeIndexer) BulkUpsert(
	_ context.Context, index string, docs []domain.BookingDocument,
) (elasticsearch.BulkResult, error) {
	if index != testIndex {
		return elasticsearch.BulkResult{}, errors.New("wrong index " + index)
	}

	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		seen := f.maxInflight.Load()
		if n <= seen || f.maxInflight.CompareAndSwap(seen, n) {
			break
		}
	}

	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	time.Sleep(f.delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		f.docs[d.DocumentID()] = d
	}
	return elasticsearch.BulkResult{Indexed: len(docs)}, nil
}

type fakeRecorder struct {
	mu       gosync.Mutex
	outcomes []string
	indexed  int
}

func (r *fakeRecorder) RecordSyncRun(outcome string, _ time.Duration, indexed, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
	r.indexed += indexed
}

func newSyncer(t *testing.T, src stsync.BookingSource, idx stsync.Indexer, rec stsync.Recorder, workers int) *stsync.Syncer {
	t.Helper()

	calc, err := derived.NewCalculator()
	require.NoError(t, err)

	return stsync.NewSyncer(stsync.Config{
		Index:     testIndex,
		ChunkSize: 3,
		Workers:   workers,
		BulkRPS:   1000,
		BulkBurst: 10,
	}, src, idx, calc, rec, logger.NewNop())
}

func TestSyncer_IndexesEveryRow(t *testing.T) {
	t.Parallel()

	idx := newIndexer()
	rec := &fakeRecorder{}
	s := newSyncer(t, newSource(7), idx, rec, 2)

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, int64(7), res.Rows)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, 7, res.Indexed)
	assert.Zero(t, res.Failed)
	assert.Len(t, idx.docs, 7)

	doc := idx.docs["1"]
	assert.Equal(t, 3, doc.LengthOfStay)
	assert.InDelta(t, 300.0, doc.StayRevenue, 1e-9)
	assert.Equal(t, "2 adults, 0.0 children, 0 babies", doc.BookingComposition)

	assert.Equal(t, []string{telemetry.OutcomeSuccess}, rec.outcomes)
	assert.Equal(t, 7, rec.indexed)
}

func TestSyncer_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	idx := newIndexer()
	idx.delay = 20 * time.Millisecond
	s := newSyncer(t, newSource(30), idx, nil, 3)

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 30, res.Indexed)
	assert.LessOrEqual(t, idx.maxInflight.Load(), int32(3))
}

func TestSyncer_FailedChunkDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	src := newSource(7)
	src.failAt[3] = true
	rec := &fakeRecorder{}
	s := newSyncer(t, src, newIndexer(), rec, 2)

	res, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 chunks failed")

	assert.Equal(t, 1, res.ChunkErrors)
	assert.Equal(t, 4, res.Indexed)
	assert.Equal(t, []string{telemetry.OutcomeError}, rec.outcomes)
}

func TestSyncer_EmptyStore(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	s := newSyncer(t, newSource(0), newIndexer(), rec, 2)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Chunks)
	assert.Equal(t, []string{telemetry.OutcomeEmpty}, rec.outcomes)
}

func TestSyncer_CountFailure(t *testing.T) {
	t.Parallel()

	src := newSource(3)
	src.countErr = errors.New("relation does not exist")
	s := newSyncer(t, src, newIndexer(), nil, 2)

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count rows")
}

func TestSyncer_RejectsOverlappingRun(t *testing.T) {
	t.Parallel()

	idx := newIndexer()
	idx.entered = make(chan struct{})
	idx.release = make(chan struct{})
	s := newSyncer(t, newSource(2), idx, nil, 1)

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background())
		done <- err
	}()

	<-idx.entered
	_, err := s.Run(context.Background())
	require.ErrorIs(t, err, stsync.ErrRunInProgress)

	close(idx.release)
	require.NoError(t, <-done)
}

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(ctx context.Context) (stsync.RunResult, error) {
	r.runs.Add(1)
	return stsync.RunResult{}, ctx.Err()
}

func TestScheduler(t *testing.T) {
	t.Parallel()

	t.Run("rejects bad schedule", func(t *testing.T) {
		t.Parallel()

		s := stsync.NewScheduler(&countingRunner{}, "every hour please", logger.NewNop())
		require.Error(t, s.Start(context.Background()))
		assert.True(t, s.NextRun().IsZero())
	})

	t.Run("reports next run until stopped", func(t *testing.T) {
		t.Parallel()

		s := stsync.NewScheduler(&countingRunner{}, "", logger.NewNop())
		require.NoError(t, s.Start(context.Background()))

		next := s.NextRun()
		assert.WithinDuration(t, time.Now().Add(time.Hour), next, time.Minute)
		require.Error(t, s.Start(context.Background()), "second start")

		s.Stop()
		assert.True(t, s.NextRun().IsZero())
		s.Stop()
	})

	t.Run("triggers runs", func(t *testing.T) {
		t.Parallel()

		runner := &countingRunner{}
		s := stsync.NewScheduler(runner, "@every 1s", logger.NewNop())
		require.NoError(t, s.Start(context.Background()))
		defer s.Stop()

		require.Eventually(t, func() bool { return runner.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	})
}
