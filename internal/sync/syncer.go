// Package sync mirrors the relational booking store into the search index.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
	"github.com/jonesrussell/north-cloud/stayscope/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/stayscope/internal/telemetry"
)

const (
	defaultChunkSize = 500
	defaultWorkers   = 4
)

// ErrRunInProgress is returned when a run starts while another is active.
var ErrRunInProgress = errors.New("sync run already in progress")

// BookingSource reads rows from the relational store.
type BookingSource interface {
	Count(ctx context.Context) (int64, error)
	ListChunk(ctx context.Context, offset, limit int) ([]domain.Booking, error)
}

// Indexer writes documents to the search index.
type Indexer interface {
	BulkUpsert(ctx context.Context, index string, docs []domain.BookingDocument) (elasticsearch.BulkResult, error)
}

// DocumentBuilder turns a row into its index document.
type DocumentBuilder interface {
	Document(b domain.Booking) (domain.BookingDocument, error)
}

// Recorder receives run metrics.
type Recorder interface {
	RecordSyncRun(outcome string, elapsed time.Duration, indexed, failed int)
}

// Config tunes a Syncer.
type Config struct {
	Index     string
	ChunkSize int
	Workers   int
	BulkRPS   float64
	BulkBurst int
}

// RunResult summarises one sync run.
type RunResult struct {
	RunID       string
	Rows        int64
	Chunks      int
	Indexed     int
	Failed      int
	ChunkErrors int
	Duration    time.Duration
}

// Syncer copies every row of the store into the index in fixed-size chunks
// processed by a bounded pool of workers.
type Syncer struct {
	source  BookingSource
	indexer Indexer
	builder DocumentBuilder
	limiter *rate.Limiter
	metrics Recorder
	logger  logger.Logger

	index     string
	chunkSize int
	workers   int

	running atomic.Bool
}

// NewSyncer creates a syncer. metrics may be nil.
func NewSyncer(
	cfg Config,
	source BookingSource,
	indexer Indexer,
	builder DocumentBuilder,
	metrics Recorder,
	log logger.Logger,
) *Syncer {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	limit := rate.Inf
	if cfg.BulkRPS > 0 {
		limit = rate.Limit(cfg.BulkRPS)
	}
	if cfg.BulkBurst <= 0 {
		cfg.BulkBurst = 1
	}

	return &Syncer{
		source:    source,
		indexer:   indexer,
		builder:   builder,
		limiter:   rate.NewLimiter(limit, cfg.BulkBurst),
		metrics:   metrics,
		logger:    log,
		index:     cfg.Index,
		chunkSize: cfg.ChunkSize,
		workers:   cfg.Workers,
	}
}

type chunk struct {
	offset int
	limit  int
}

type chunkResult struct {
	chunk   chunk
	indexed int
	failed  int
	err     error
}

// Run performs one full resync. A failed chunk does not stop the others; the
// returned error reports how many chunks failed. Readers may observe a
// partially resynced index while a run is in progress.
func (s *Syncer) Run(ctx context.Context) (RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return RunResult{}, ErrRunInProgress
	}
	defer s.running.Store(false)

	start := time.Now()
	res := RunResult{RunID: uuid.NewString()}
	log := s.logger.With(logger.String("run_id", res.RunID))

	total, err := s.source.Count(ctx)
	if err != nil {
		s.record(telemetry.OutcomeError, &res, start)
		return res, fmt.Errorf("count rows: %w", err)
	}
	res.Rows = total

	if total == 0 {
		log.Info("Nothing to sync")
		s.record(telemetry.OutcomeEmpty, &res, start)
		return res, nil
	}

	chunks := s.plan(total)
	res.Chunks = len(chunks)

	log.Info("Sync started",
		logger.Int64("rows", total),
		logger.Int("chunks", len(chunks)),
		logger.Int("workers", s.workers),
	)

	jobs := make(chan chunk, len(chunks))
	results := make(chan chunkResult, len(chunks))

	var wg gosync.WaitGroup
	for i := 0; i < min(s.workers, len(chunks)); i++ {
		wg.Add(1)
		go s.worker(ctx, i, log, jobs, results, &wg)
	}

	for _, c := range chunks {
		jobs <- c
	}
	close(jobs)

	wg.Wait()
	close(results)

	completed := 0
	for r := range results {
		completed++
		res.Indexed += r.indexed
		res.Failed += r.failed
		if r.err != nil {
			res.ChunkErrors++
		}
	}
	// Chunks skipped after cancellation never report.
	res.ChunkErrors += len(chunks) - completed

	outcome := telemetry.OutcomeSuccess
	var runErr error
	if res.ChunkErrors > 0 || res.Failed > 0 {
		outcome = telemetry.OutcomeError
	}
	if res.ChunkErrors > 0 {
		runErr = fmt.Errorf("%d of %d chunks failed", res.ChunkErrors, len(chunks))
	}
	if ctx.Err() != nil {
		runErr = errors.Join(runErr, ctx.Err())
	}
	s.record(outcome, &res, start)

	log.Info("Sync finished",
		logger.Int("indexed", res.Indexed),
		logger.Int("failed", res.Failed),
		logger.Int("chunk_errors", res.ChunkErrors),
		logger.Duration("duration", res.Duration),
	)
	return res, runErr
}

func (s *Syncer) plan(total int64) []chunk {
	n := int((total + int64(s.chunkSize) - 1) / int64(s.chunkSize))
	chunks := make([]chunk, n)
	for i := range chunks {
		chunks[i] = chunk{offset: i * s.chunkSize, limit: s.chunkSize}
	}
	return chunks
}

func (s *Syncer) worker(
	ctx context.Context,
	id int,
	log logger.Logger,
	jobs <-chan chunk,
	results chan<- chunkResult,
	wg *gosync.WaitGroup,
) {
	defer wg.Done()

	for c := range jobs {
		select {
		case <-ctx.Done():
			log.Warn("Sync worker stopping", logger.Int("worker_id", id), logger.Error(ctx.Err()))
			return
		default:
		}

		r := s.syncChunk(ctx, c)
		if r.err != nil {
			log.Error("Chunk failed",
				logger.Int("worker_id", id),
				logger.Int("offset", c.offset),
				logger.Error(r.err),
			)
		}
		results <- r
	}
}

func (s *Syncer) syncChunk(ctx context.Context, c chunk) chunkResult {
	r := chunkResult{chunk: c}

	rows, err := s.source.ListChunk(ctx, c.offset, c.limit)
	if err != nil {
		r.err = err
		return r
	}
	if len(rows) == 0 {
		return r
	}

	docs := make([]domain.BookingDocument, 0, len(rows))
	for i := range rows {
		doc, buildErr := s.builder.Document(rows[i])
		if buildErr != nil {
			r.failed++
			continue
		}
		docs = append(docs, doc)
	}

	if err = s.limiter.Wait(ctx); err != nil {
		r.err = err
		return r
	}

	bulk, err := s.indexer.BulkUpsert(ctx, s.index, docs)
	if err != nil {
		r.err = err
		r.failed += len(docs)
		return r
	}
	r.indexed = bulk.Indexed
	r.failed += bulk.Failed
	return r
}

func (s *Syncer) record(outcome string, res *RunResult, start time.Time) {
	res.Duration = time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordSyncRun(outcome, res.Duration, res.Indexed, res.Failed)
	}
}
