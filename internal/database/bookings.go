package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"prokat/internal/models"
)

const bookingColumns = `id, start_date, end_date, item_id, booker_id, status, created_at, updated_at, version`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_date, end_date, item_id, booker_id, status, created_at, updated_at, version)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		booking.Start.UTC(),
		booking.End.UTC(),
		booking.ItemID,
		booking.BookerID,
		booking.Status,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// UpdateBookingStatusWithVersion меняет статус с проверкой версии, чтобы
// два конкурирующих изменения одной брони не потеряли запись.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status models.Status) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// ListByBooker возвращает бронирования пользователя по фильтру state.
// now фиксируется один раз на уровне вызова сервиса и передается сюда,
// чтобы CURRENT/PAST/FUTURE были согласованы в пределах одного ответа.
func (db *DB) ListByBooker(ctx context.Context, bookerID int64, state models.State, now time.Time, limit, offset int) ([]*models.Booking, error) {
	where, args := stateFilter("booker_id = ?", []interface{}{bookerID}, state, now)
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where +
		` ORDER BY start_date DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	return db.queryBookings(ctx, query, args...)
}

// ListByOwner — то же самое, но по вещам, принадлежащим владельцу.
func (db *DB) ListByOwner(ctx context.Context, ownerID int64, state models.State, now time.Time, limit, offset int) ([]*models.Booking, error) {
	where, args := stateFilter(
		"item_id IN (SELECT id FROM items WHERE owner_id = ?)",
		[]interface{}{ownerID}, state, now)
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where +
		` ORDER BY start_date DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	return db.queryBookings(ctx, query, args...)
}

// stateFilter добавляет к базовому условию предикат фильтра.
// Граница PAST/CURRENT: бронь с end_date == now считается CURRENT.
func stateFilter(base string, args []interface{}, state models.State, now time.Time) (string, []interface{}) {
	now = now.UTC()
	switch state {
	case models.StateCurrent:
		return base + " AND start_date <= ? AND end_date >= ?", append(args, now, now)
	case models.StatePast:
		return base + " AND end_date < ?", append(args, now)
	case models.StateFuture:
		return base + " AND start_date > ?", append(args, now)
	case models.StateWaiting:
		return base + " AND status = ?", append(args, models.StatusWaiting)
	case models.StateRejected:
		return base + " AND status = ?", append(args, models.StatusRejected)
	default: // ALL
		return base, args
	}
}

// LastApprovedBooking — подтвержденная бронь вещи с наибольшим end_date
// строго раньше now. Возвращает nil без ошибки, если такой нет.
func (db *DB) LastApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND status = ? AND end_date < ?
              ORDER BY end_date DESC LIMIT 1`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, now.UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking: %w", err)
	}
	return booking, nil
}

// NextApprovedBooking — подтвержденная бронь с наименьшим end_date,
// который не раньше now (идущая сейчас или ближайшая будущая).
func (db *DB) NextApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND status = ? AND end_date >= ?
              ORDER BY end_date ASC LIMIT 1`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, now.UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking: %w", err)
	}
	return booking, nil
}

// HasFinishedBooking проверяет, было ли у пользователя бронирование вещи,
// завершившееся до now. Нужно для права оставить комментарий.
func (db *DB) HasFinishedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE item_id = ? AND booker_id = ? AND end_date < ?`
	var count int
	if err := db.QueryRowContext(ctx, query, itemID, bookerID, now.UTC()).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.Start, &b.End, &b.ItemID, &b.BookerID,
		&b.Status, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
