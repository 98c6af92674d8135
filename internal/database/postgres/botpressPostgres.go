package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gericht/reservation-service/internal/entity"
)

type botpressReservationRepository struct {
	db *sql.DB
}

func NewBotpressReservationRepository(db *sql.DB) BotpressReservationRepository {
	return &botpressReservationRepository{db: db}
}

const botpressColumns = `
	id, email, to_char(datetime, 'YYYY-MM-DD HH24:MI:SS'), party_size, status,
	reservation_id, conf_number, COALESCE(source, 'botpress'), created_at, updated_at
`

func scanBotpressReservation(row interface {
	Scan(dest ...interface{}) error
}) (*entity.BotpressReservation, error) {
	var br entity.BotpressReservation
	var reservationID sql.NullInt64
	var confNumber sql.NullInt64

	err := row.Scan(
		&br.ID,
		&br.Email,
		&br.Datetime,
		&br.PartySize,
		&br.Status,
		&reservationID,
		&confNumber,
		&br.Source,
		&br.CreatedAt,
		&br.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reservationID.Valid {
		id := reservationID.Int64
		br.ReservationID = &id
	}
	if confNumber.Valid {
		n := int(confNumber.Int64)
		br.ConfNumber = &n
	}

	return &br, nil
}

func (r *botpressReservationRepository) Create(ctx context.Context, reservation *entity.BotpressReservation) (int64, error) {
	query := `
		INSERT INTO botpress_reservations
			(email, datetime, party_size, reservation_id, conf_number, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	status := reservation.Status
	if status == "" {
		status = entity.ReservationStatusPending
	}

	var reservationID interface{}
	if reservation.ReservationID != nil {
		reservationID = *reservation.ReservationID
	}
	var confNumber interface{}
	if reservation.ConfNumber != nil {
		confNumber = *reservation.ConfNumber
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		reservation.Email,
		reservation.Datetime,
		reservation.PartySize,
		reservationID,
		confNumber,
		status,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create botpress reservation: %w", err)
	}

	reservation.ID = id
	reservation.Status = status
	return id, nil
}

func (r *botpressReservationRepository) GetByID(ctx context.Context, id int64) (*entity.BotpressReservation, error) {
	query := `SELECT ` + botpressColumns + ` FROM botpress_reservations WHERE id = $1`

	reservation, err := scanBotpressReservation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrBotpressReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get botpress reservation: %w", err)
	}

	return reservation, nil
}

// FindByEmailAndDatetime is the pull-sync dedupe lookup. Returns nil without
// error when no record matches.
func (r *botpressReservationRepository) FindByEmailAndDatetime(ctx context.Context, email, datetime string) (*entity.BotpressReservation, error) {
	query := `SELECT ` + botpressColumns + ` FROM botpress_reservations WHERE email = $1 AND datetime = $2`

	reservation, err := scanBotpressReservation(r.db.QueryRowContext(ctx, query, email, datetime))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find botpress reservation: %w", err)
	}

	return reservation, nil
}

// GetAll lists mirror records newest slot first, joining customer details
// from the canonical reservation when the reference is still set.
func (r *botpressReservationRepository) GetAll(ctx context.Context) ([]*entity.BotpressReservation, error) {
	query := `
		SELECT br.id, br.email, to_char(br.datetime, 'YYYY-MM-DD HH24:MI:SS'), br.party_size, br.status,
		       br.reservation_id, br.conf_number, COALESCE(br.source, 'botpress'), br.created_at, br.updated_at,
		       COALESCE(r.customer_name, ''), COALESCE(r.phone, ''), COALESCE(r.special_requests, '')
		FROM botpress_reservations br
		LEFT JOIN reservations r ON br.reservation_id = r.id
		ORDER BY br.datetime DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query botpress reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*entity.BotpressReservation
	for rows.Next() {
		var br entity.BotpressReservation
		var reservationID sql.NullInt64
		var confNumber sql.NullInt64

		err := rows.Scan(
			&br.ID,
			&br.Email,
			&br.Datetime,
			&br.PartySize,
			&br.Status,
			&reservationID,
			&confNumber,
			&br.Source,
			&br.CreatedAt,
			&br.UpdatedAt,
			&br.CustomerName,
			&br.Phone,
			&br.SpecialRequests,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan botpress reservation: %w", err)
		}

		if reservationID.Valid {
			id := reservationID.Int64
			br.ReservationID = &id
		}
		if confNumber.Valid {
			n := int(confNumber.Int64)
			br.ConfNumber = &n
		}

		reservations = append(reservations, &br)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating botpress reservations: %w", err)
	}

	return reservations, nil
}

func (r *botpressReservationRepository) Update(ctx context.Context, id int64, datetime string, partySize int, status entity.ReservationStatus, confNumber *int) error {
	query := `
		UPDATE botpress_reservations
		SET datetime = $1, party_size = $2, status = $3, conf_number = $4, updated_at = $5
		WHERE id = $6
	`

	var conf interface{}
	if confNumber != nil {
		conf = *confNumber
	}

	result, err := r.db.ExecContext(ctx, query, datetime, partySize, status, conf, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update botpress reservation: %w", err)
	}

	return checkBotpressAffected(result)
}

func (r *botpressReservationRepository) UpdateStatus(ctx context.Context, id int64, status entity.ReservationStatus) error {
	query := `UPDATE botpress_reservations SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update botpress reservation status: %w", err)
	}

	return checkBotpressAffected(result)
}

func (r *botpressReservationRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM botpress_reservations WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete botpress reservation: %w", err)
	}

	return checkBotpressAffected(result)
}

func checkBotpressAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrBotpressReservationNotFound
	}
	return nil
}
