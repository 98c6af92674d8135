package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/gericht/reservation-service/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			customer_name VARCHAR(255) NOT NULL,
			phone VARCHAR(20),
			email VARCHAR(255),
			date DATE NOT NULL,
			time TIME NOT NULL,
			party_size INTEGER NOT NULL,
			special_requests TEXT,
			status VARCHAR(30) NOT NULL DEFAULT 'pending',
			review_rating INTEGER,
			review_comment TEXT,
			review_date TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS botpress_reservations (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			datetime TIMESTAMP NOT NULL,
			party_size INTEGER NOT NULL,
			status VARCHAR(30) NOT NULL DEFAULT 'pending',
			reservation_id INTEGER REFERENCES reservations(id) ON DELETE SET NULL,
			conf_number INTEGER,
			source VARCHAR(50) DEFAULT 'botpress',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_date_time ON reservations(date, time)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_email ON reservations(email)`,
		`CREATE INDEX IF NOT EXISTS idx_botpress_reservations_email_datetime ON botpress_reservations(email, datetime)`,
		`CREATE INDEX IF NOT EXISTS idx_botpress_reservations_reservation_id ON botpress_reservations(reservation_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %v", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
