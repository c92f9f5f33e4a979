// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package store persists decoded telemetry records in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/negevsat/groundlink/pkg/groundlink"
)

const schema = `
CREATE TABLE IF NOT EXISTS satellite_status (
	id                    BIGSERIAL PRIMARY KEY,
	received_at           TIMESTAMPTZ NOT NULL,
	satellite_state       TEXT NOT NULL,
	temperature_status    TEXT NOT NULL,
	temperature_ts        TIMESTAMPTZ,
	energy_status         TEXT NOT NULL,
	energy_ts             TIMESTAMPTZ,
	payload_status        TEXT NOT NULL,
	payload_ts            TIMESTAMPTZ,
	sband_status          TEXT NOT NULL,
	sband_ts              TIMESTAMPTZ,
	solar_panels_status   TEXT NOT NULL,
	solar_panels_ts       TIMESTAMPTZ,
	thermal_control_status TEXT NOT NULL,
	thermal_control_ts    TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS temperature_samples (
	id      BIGSERIAL PRIMARY KEY,
	ts      TIMESTAMPTZ NOT NULL,
	sensor1 DOUBLE PRECISION NOT NULL,
	sensor2 DOUBLE PRECISION NOT NULL,
	sensor3 DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS energy_samples (
	id         BIGSERIAL PRIMARY KEY,
	ts         TIMESTAMPTZ NOT NULL,
	battery1_v DOUBLE PRECISION NOT NULL,
	battery2_v DOUBLE PRECISION NOT NULL,
	battery3_v DOUBLE PRECISION NOT NULL,
	battery1_c DOUBLE PRECISION NOT NULL,
	battery2_c DOUBLE PRECISION NOT NULL,
	battery3_c DOUBLE PRECISION NOT NULL
);`

const (
	insertStatic = `INSERT INTO satellite_status (received_at, satellite_state, ` +
		`temperature_status, temperature_ts, energy_status, energy_ts, payload_status, payload_ts, ` +
		`sband_status, sband_ts, solar_panels_status, solar_panels_ts, thermal_control_status, thermal_control_ts) ` +
		`VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

	insertTemperature = `INSERT INTO temperature_samples (ts, sensor1, sensor2, sensor3) VALUES ($1,$2,$3,$4)`

	insertEnergy = `INSERT INTO energy_samples (ts, battery1_v, battery2_v, battery3_v, battery1_c, battery2_c, battery3_c) ` +
		`VALUES ($1,$2,$3,$4,$5,$6,$7)`
)

// Store is a groundlink.Gateway writing one row per record
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ groundlink.Gateway = (*Store)(nil)

// New wraps an open database handle
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open connects to PostgreSQL using dsn and verifies the connection
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return New(db), nil
}

// Migrate creates the telemetry tables if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InsertStaticStatus(ctx context.Context, rec groundlink.StaticStatusRecord) error {
	args := []any{s.now().UTC(), rec.SatelliteState.String()}
	for _, m := range groundlink.Modules() {
		ms := rec.Module(m)
		args = append(args, ms.Status.String(), nullTime(ms.Timestamp))
	}
	if _, err := s.db.ExecContext(ctx, insertStatic, args...); err != nil {
		return fmt.Errorf("insert static status: %w", err)
	}
	return nil
}

func (s *Store) InsertTemperatureSample(ctx context.Context, rec groundlink.TemperatureSampleRecord) error {
	if _, err := s.db.ExecContext(ctx, insertTemperature,
		rec.Timestamp, rec.Sensor1, rec.Sensor2, rec.Sensor3); err != nil {
		return fmt.Errorf("insert temperature sample: %w", err)
	}
	return nil
}

func (s *Store) InsertEnergySample(ctx context.Context, rec groundlink.EnergySampleRecord) error {
	if _, err := s.db.ExecContext(ctx, insertEnergy, rec.Timestamp,
		rec.Battery1.Voltage, rec.Battery2.Voltage, rec.Battery3.Voltage,
		rec.Battery1.Current, rec.Battery2.Current, rec.Battery3.Current); err != nil {
		return fmt.Errorf("insert energy sample: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
