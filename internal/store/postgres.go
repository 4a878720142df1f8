package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shakespr/cost-data-service/internal/costs"
)

// Postgres is the persistent costs.Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database, verifies the connection, and ensures
// the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &Postgres{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	log.Println("INFO: connected to Postgres and initialized schema")
	return s, nil
}

// Close releases the underlying pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

// initSchema creates the tables if they do not exist: cities with a
// case-insensitive unique identity, append-only updates, and one cost-set
// table per category generated from the category field schemas.
func (s *Postgres) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cities (
			city_id SERIAL PRIMARY KEY,
			city_name VARCHAR(255) NOT NULL,
			country VARCHAR(255) NOT NULL,
			region VARCHAR(255) NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS cities_name_country_ci
			ON cities (LOWER(city_name), LOWER(country))`,
		`CREATE TABLE IF NOT EXISTS updates (
			update_id SERIAL PRIMARY KEY,
			city_id INTEGER NOT NULL REFERENCES cities (city_id),
			date TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS updates_city_date ON updates (city_id, date DESC)`,
	}

	for _, cat := range costs.Categories {
		cols := make([]string, 0, len(costs.FieldsFor(cat)))
		for _, f := range costs.FieldsFor(cat) {
			cols = append(cols, f+" DOUBLE PRECISION")
		}
		stmts = append(stmts, fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s_cost_sets (
				update_id INTEGER PRIMARY KEY REFERENCES updates (update_id) ON DELETE CASCADE,
				%s
			)`, cat, strings.Join(cols, ",\n\t\t\t\t")))
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// freshQuery assembles the display record from the newest update inside the
// window, joining the cost-set tables the record draws from. Missing cost
// sets surface as NULL fields, not as errors.
const freshQuery = `
	WITH latest AS (
		SELECT u.update_id, u.city_id, u.date
		FROM cities c
		JOIN updates u ON u.city_id = c.city_id
		WHERE LOWER(c.city_name) = LOWER($1)
		  AND LOWER(c.country) = LOWER($2)
		  AND u.date >= $3
		ORDER BY u.update_id DESC
		LIMIT 1
	)
	SELECT
		c.city_name,
		c.country,
		c.region,
		l.date,
		rent.apt_one_bdrm_ctr,
		r.cheap_meal_for_one,
		m.milk_one_liter,
		t.monthly_transit_pass,
		ut.all_basic
	FROM latest l
	JOIN cities c ON c.city_id = l.city_id
	LEFT JOIN restaurant_cost_sets r ON r.update_id = l.update_id
	LEFT JOIN market_cost_sets m ON m.update_id = l.update_id
	LEFT JOIN transportation_cost_sets t ON t.update_id = l.update_id
	LEFT JOIN utilities_cost_sets ut ON ut.update_id = l.update_id
	LEFT JOIN rent_cost_sets rent ON rent.update_id = l.update_id
`

// GetFresh returns the assembled record for the city's most recent update no
// older than the window, or costs.ErrNoFreshData.
func (s *Postgres) GetFresh(ctx context.Context, city costs.CityKey, window time.Duration) (*costs.CityRecord, error) {
	cutoff := time.Now().UTC().Add(-window)

	var rec costs.CityRecord
	err := s.pool.QueryRow(ctx, freshQuery, city.Name, city.Country, cutoff).Scan(
		&rec.CityName,
		&rec.Country,
		&rec.Region,
		&rec.LastUpdated,
		&rec.RentOneBedroomCenter,
		&rec.CheapMealForOne,
		&rec.MilkOneLiter,
		&rec.MonthlyTransitPass,
		&rec.UtilitiesBasic,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, costs.ErrNoFreshData
		}
		return nil, fmt.Errorf("%w: %v", costs.ErrStorage, err)
	}
	return &rec, nil
}

// SaveObservation writes the city (insert if absent), one update row, and the
// observation's cost sets inside a single transaction. A concurrent insert of
// the same city is absorbed by the unique index: the conflicting insert
// resolves to the existing row and the existing region is kept.
func (s *Postgres) SaveObservation(ctx context.Context, obs costs.Observation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", costs.ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	var cityID int
	err = tx.QueryRow(ctx, `
		INSERT INTO cities (city_name, country, region)
		VALUES ($1, $2, $3)
		ON CONFLICT (LOWER(city_name), LOWER(country))
		DO UPDATE SET region = cities.region
		RETURNING city_id
	`, obs.City.Name, obs.City.Country, obs.Region).Scan(&cityID)
	if err != nil {
		return fmt.Errorf("%w: upsert city: %v", costs.ErrStorage, err)
	}

	var updateID int
	err = tx.QueryRow(ctx, `
		INSERT INTO updates (city_id, date)
		VALUES ($1, $2)
		RETURNING update_id
	`, cityID, obs.Timestamp).Scan(&updateID)
	if err != nil {
		return fmt.Errorf("%w: insert update: %v", costs.ErrStorage, err)
	}

	for _, set := range obs.Sets {
		fields := costs.FieldsFor(set.Category)
		if fields == nil {
			continue
		}

		cols := make([]string, 0, len(fields)+1)
		placeholders := make([]string, 0, len(fields)+1)
		args := make([]any, 0, len(fields)+1)

		cols = append(cols, "update_id")
		placeholders = append(placeholders, "$1")
		args = append(args, updateID)

		for i, f := range fields {
			cols = append(cols, f)
			placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
			args = append(args, set.Values[f])
		}

		// Column names come from the category schemas, never from input.
		stmt := fmt.Sprintf("INSERT INTO %s_cost_sets (%s) VALUES (%s)",
			set.Category, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("%w: insert %s cost set: %v", costs.ErrStorage, set.Category, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", costs.ErrStorage, err)
	}
	return nil
}
