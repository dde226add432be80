package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

const defaultBatchSize = 1000

// BookingWriter persists cleaned bookings.
type BookingWriter interface {
	InsertBatch(ctx context.Context, rows []domain.Booking) (int, error)
}

// Recorder receives ingest metrics.
type Recorder interface {
	RecordIngest(rows int, clamped map[string]int)
}

// Result summarises one load.
type Result struct {
	Summary
	Inserted int
	Duration time.Duration
}

// Loader runs extract, transform and load against a store.
type Loader struct {
	store     BookingWriter
	batchSize int
	metrics   Recorder
	logger    logger.Logger
}

// NewLoader creates a loader. metrics may be nil.
func NewLoader(store BookingWriter, batchSize int, metrics Recorder, log logger.Logger) *Loader {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Loader{store: store, batchSize: batchSize, metrics: metrics, logger: log}
}

// LoadFile loads the CSV at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	l.logger.Info("Loading bookings", logger.String("path", path))
	return l.Load(ctx, f)
}

// Load reads a bookings CSV from r, cleans it and inserts it in batches.
// Batches already committed stay committed when a later one fails.
func (l *Loader) Load(ctx context.Context, r io.Reader) (Result, error) {
	start := time.Now()

	records, err := Extract(r)
	if err != nil {
		return Result{}, fmt.Errorf("extract: %w", err)
	}

	bookings, summary, err := Transform(records)
	if err != nil {
		return Result{Summary: summary}, fmt.Errorf("transform: %w", err)
	}

	for col, n := range summary.Filled {
		l.logger.Info("Filled missing values", logger.String("column", col), logger.Int("rows", n))
	}
	for col, n := range summary.Clamped {
		lim := summary.Limits[col]
		l.logger.Info("Suppressed outliers",
			logger.String("column", col),
			logger.Int("rows", n),
			logger.Float64("lower", lim.Lower),
			logger.Float64("upper", lim.Upper),
		)
	}

	res := Result{Summary: summary}
	for begin := 0; begin < len(bookings); begin += l.batchSize {
		end := min(begin+l.batchSize, len(bookings))

		n, insertErr := l.store.InsertBatch(ctx, bookings[begin:end])
		if insertErr != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("load rows %d-%d: %w", begin, end, insertErr)
		}
		res.Inserted += n
	}
	res.Duration = time.Since(start)

	if l.metrics != nil {
		l.metrics.RecordIngest(res.Inserted, summary.Clamped)
	}

	l.logger.Info("Bookings loaded",
		logger.Int("rows", summary.Rows),
		logger.Int("inserted", res.Inserted),
		logger.Duration("duration", res.Duration),
	)
	return res, nil
}
