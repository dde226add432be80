package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

// bookingColumns lists every data column in insert order. id is assigned by
// the database.
var bookingColumns = []string{
	"hotel", "is_canceled", "lead_time", "arrival_date", "arrival_date_year", "arrival_date_month",
	"arrival_date_week_number", "arrival_date_day_of_month", "stays_in_weekend_nights",
	"stays_in_week_nights", "adults", "children", "babies", "meal", "country", "market_segment",
	"distribution_channel", "is_repeated_guest", "previous_cancellations",
	"previous_bookings_not_canceled", "reserved_room_type", "assigned_room_type", "booking_changes",
	"deposit_type", "agent", "company", "days_in_waiting_list", "customer_type", "adr",
	"required_car_parking_spaces", "total_of_special_requests", "reservation_status",
	"reservation_status_date",
}

// BookingRepository reads and writes booking rows.
type BookingRepository struct {
	db    *sqlx.DB
	table string

	selectCols string
	insertSQL  string
}

// NewBookingRepository binds the repository to table.
func NewBookingRepository(db *sqlx.DB, table string) *BookingRepository {
	quoted := pq.QuoteIdentifier(table)

	named := make([]string, len(bookingColumns))
	for i, c := range bookingColumns {
		named[i] = ":" + c
	}

	return &BookingRepository{
		db:         db,
		table:      quoted,
		selectCols: "id, " + strings.Join(bookingColumns, ", "),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoted, strings.Join(bookingColumns, ", "), strings.Join(named, ", ")),
	}
}

// Count returns the number of rows.
func (r *BookingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+r.table); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

// ListChunk returns up to limit rows ordered by id, skipping offset rows.
func (r *BookingRepository) ListChunk(ctx context.Context, offset, limit int) ([]domain.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id LIMIT $1 OFFSET $2", r.selectCols, r.table)

	var rows []domain.Booking
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list bookings [%d,+%d): %w", offset, limit, err)
	}
	return rows, nil
}

// ListAll returns every row ordered by id.
func (r *BookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", r.selectCols, r.table)

	var rows []domain.Booking
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return rows, nil
}

// InsertBatch inserts rows in one transaction.
func (r *BookingRepository) InsertBatch(ctx context.Context, rows []domain.Booking) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.NamedExecContext(ctx, r.insertSQL, rows)
	if err != nil {
		return 0, fmt.Errorf("insert %d bookings: %w", len(rows), err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return len(rows), nil //nolint:nilerr // driver without row counts
	}
	return int(n), nil
}
