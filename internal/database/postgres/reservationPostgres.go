package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gericht/reservation-service/internal/entity"
)

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

// reservationColumns keeps every SELECT in this file scanning the same shape.
// date and time come back as formatted strings, review columns stay nullable.
const reservationColumns = `
	id, user_id, customer_name, COALESCE(phone, ''), COALESCE(email, ''),
	to_char(date, 'YYYY-MM-DD'), to_char(time, 'HH24:MI'), party_size,
	COALESCE(special_requests, ''), status,
	review_rating, review_comment, review_date,
	created_at, updated_at
`

func scanReservation(row interface {
	Scan(dest ...interface{}) error
}) (*entity.Reservation, error) {
	var r entity.Reservation
	var rating sql.NullInt64
	var comment sql.NullString
	var reviewDate sql.NullTime

	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.CustomerName,
		&r.Phone,
		&r.Email,
		&r.Date,
		&r.Time,
		&r.PartySize,
		&r.SpecialRequests,
		&r.Status,
		&rating,
		&comment,
		&reviewDate,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		r.Review = &entity.Review{
			Rating:  int(rating.Int64),
			Comment: comment.String,
			Date:    reviewDate.Time,
		}
	}

	if r.UserID == entity.BotpressUserID {
		r.Source = "Botpress"
	} else {
		r.Source = "Website"
	}

	return &r, nil
}

// Create inserts a new reservation and returns the generated id.
func (r *reservationRepository) Create(ctx context.Context, reservation *entity.Reservation) (int64, error) {
	query := `
		INSERT INTO reservations
			(user_id, customer_name, phone, email, date, time, party_size, special_requests, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	status := reservation.Status
	if status == "" {
		status = entity.ReservationStatusPending
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		reservation.UserID,
		reservation.CustomerName,
		nullIfEmpty(reservation.Phone),
		nullIfEmpty(reservation.Email),
		reservation.Date,
		reservation.Time,
		reservation.PartySize,
		nullIfEmpty(reservation.SpecialRequests),
		status,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create reservation: %w", err)
	}

	reservation.ID = id
	reservation.Status = status
	return id, nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	reservation, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return reservation, nil
}

// GetByUserID returns the user's reservations, most recent slot first.
func (r *reservationRepository) GetByUserID(ctx context.Context, userID string) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY date DESC, time DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations by user: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

// GetAll returns reservations for the admin dashboard, optionally filtered.
func (r *reservationRepository) GetAll(ctx context.Context, filter *entity.ReservationFilter) ([]*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE 1=1`
	var args []interface{}

	if filter != nil {
		if filter.Status != "" {
			args = append(args, filter.Status)
			query += fmt.Sprintf(" AND status = $%d", len(args))
		}
		if filter.Date != "" {
			args = append(args, filter.Date)
			query += fmt.Sprintf(" AND date = $%d", len(args))
		}
		if filter.Email != "" {
			args = append(args, "%"+filter.Email+"%")
			query += fmt.Sprintf(" AND email LIKE $%d", len(args))
		}
		if filter.CustomerName != "" {
			args = append(args, "%"+filter.CustomerName+"%")
			query += fmt.Sprintf(" AND customer_name LIKE $%d", len(args))
		}
	}

	query += " ORDER BY date DESC, time DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

// GetWithEmail returns every reservation carrying an email address. This is
// the push-sync source set.
func (r *reservationRepository) GetWithEmail(ctx context.Context) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE email IS NOT NULL AND email <> ''
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations with email: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

// Update changes the customer-editable fields only.
func (r *reservationRepository) Update(ctx context.Context, id int64, date, timeOfDay string, partySize int, specialRequests string) error {
	query := `
		UPDATE reservations
		SET date = $1, time = $2, party_size = $3, special_requests = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query, date, timeOfDay, partySize, nullIfEmpty(specialRequests), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	return checkAffected(result)
}

// UpdateAdmin rewrites every mutable field. When includeUserID is set the
// owner reference is reassigned as well.
func (r *reservationRepository) UpdateAdmin(ctx context.Context, id int64, reservation *entity.Reservation, includeUserID bool) error {
	query := `
		UPDATE reservations
		SET customer_name = $1, phone = $2, email = $3, date = $4, time = $5,
		    party_size = $6, special_requests = $7, status = $8, updated_at = $9
		WHERE id = $10
	`
	args := []interface{}{
		reservation.CustomerName,
		nullIfEmpty(reservation.Phone),
		nullIfEmpty(reservation.Email),
		reservation.Date,
		reservation.Time,
		reservation.PartySize,
		nullIfEmpty(reservation.SpecialRequests),
		reservation.Status,
		time.Now(),
		id,
	}

	if includeUserID {
		query = `
			UPDATE reservations
			SET user_id = $1, customer_name = $2, phone = $3, email = $4, date = $5, time = $6,
			    party_size = $7, special_requests = $8, status = $9, updated_at = $10
			WHERE id = $11
		`
		args = []interface{}{
			reservation.UserID,
			reservation.CustomerName,
			nullIfEmpty(reservation.Phone),
			nullIfEmpty(reservation.Email),
			reservation.Date,
			reservation.Time,
			reservation.PartySize,
			nullIfEmpty(reservation.SpecialRequests),
			reservation.Status,
			time.Now(),
			id,
		}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	return checkAffected(result)
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id int64, status entity.ReservationStatus) error {
	query := `UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	return checkAffected(result)
}

// Delete removes the reservation row. Any botpress_reservations row pointing
// at it keeps existing with reservation_id set to null by the foreign key.
func (r *reservationRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM reservations WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	return checkAffected(result)
}

func (r *reservationRepository) AddReview(ctx context.Context, id int64, rating int, comment string) error {
	query := `
		UPDATE reservations
		SET review_rating = $1, review_comment = $2, review_date = $3, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, rating, comment, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to add review: %w", err)
	}

	return checkAffected(result)
}

// UpdateCustomerNameByUser overwrites the denormalized customer_name on
// every reservation owned by the user and returns the affected row count.
func (r *reservationRepository) UpdateCustomerNameByUser(ctx context.Context, userID, customerName string) (int64, error) {
	query := `UPDATE reservations SET customer_name = $1, updated_at = $2 WHERE user_id = $3`

	result, err := r.db.ExecContext(ctx, query, customerName, time.Now(), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to update customer name: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *reservationRepository) CountByDateTime(ctx context.Context, date, timeOfDay string) (int, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE date = $1 AND time = $2`

	var count int
	err := r.db.QueryRowContext(ctx, query, date, timeOfDay).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	return count, nil
}

// GetStats returns status counts per day over the last 30 days.
func (r *reservationRepository) GetStats(ctx context.Context) ([]*entity.ReservationStat, error) {
	query := `
		SELECT status, COUNT(*) as count, to_char(date, 'YYYY-MM-DD') as reservation_date
		FROM reservations
		WHERE date >= CURRENT_DATE - INTERVAL '30 days'
		GROUP BY status, date
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservation stats: %w", err)
	}
	defer rows.Close()

	var stats []*entity.ReservationStat
	for rows.Next() {
		var stat entity.ReservationStat
		if err := rows.Scan(&stat.Status, &stat.Count, &stat.Date); err != nil {
			return nil, fmt.Errorf("failed to scan reservation stat: %w", err)
		}
		stats = append(stats, &stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservation stats: %w", err)
	}

	return stats, nil
}

func collectReservations(rows *sql.Rows) ([]*entity.Reservation, error) {
	var reservations []*entity.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	return reservations, nil
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrReservationNotFound
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
