// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/negevsat/groundlink/pkg/groundlink"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestInsertTemperatureSample(t *testing.T) {
	s, mock := newMockStore(t)
	ts := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(insertTemperature)).
		WithArgs(ts, 21.5, 22.0, 0.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := groundlink.TemperatureSampleRecord{Sensor1: 21.5, Sensor2: 22.0, Timestamp: ts}
	if err := s.InsertTemperatureSample(context.Background(), rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertEnergySample(t *testing.T) {
	s, mock := newMockStore(t)
	ts := time.Date(2023, 1, 1, 12, 0, 5, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(insertEnergy)).
		WithArgs(ts, 3.7, 3.8, 3.9, 0.1, 0.2, 0.3).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := groundlink.EnergySampleRecord{
		Battery1:  groundlink.BatteryReading{Voltage: 3.7, Current: 0.1},
		Battery2:  groundlink.BatteryReading{Voltage: 3.8, Current: 0.2},
		Battery3:  groundlink.BatteryReading{Voltage: 3.9, Current: 0.3},
		Timestamp: ts,
	}
	if err := s.InsertEnergySample(context.Background(), rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertStaticStatus_NullTimestamps(t *testing.T) {
	s, mock := newMockStore(t)
	received := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return received }
	payloadTS := time.Date(2023, 1, 1, 11, 59, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(insertStatic)).
		WithArgs(received, "OPERATIONAL",
			"ON", sql.NullTime{},
			"UNKNOWN", sql.NullTime{},
			"MALFUNCTION", sql.NullTime{Time: payloadTS, Valid: true},
			"UNKNOWN", sql.NullTime{},
			"UNKNOWN", sql.NullTime{},
			"UNKNOWN", sql.NullTime{}).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := groundlink.StaticStatusRecord{
		SatelliteState: groundlink.StateOperational,
		Temperature:    groundlink.ModuleStatus{Status: groundlink.StatusOn},
		Payload:        groundlink.ModuleStatus{Status: groundlink.StatusMalfunction, Timestamp: &payloadTS},
	}
	if err := s.InsertStaticStatus(context.Background(), rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertWrapsDriverError(t *testing.T) {
	s, mock := newMockStore(t)
	driverErr := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta(insertTemperature)).WillReturnError(driverErr)

	err := s.InsertTemperatureSample(context.Background(), groundlink.TemperatureSampleRecord{})
	if !errors.Is(err, driverErr) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}

func TestMigrate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS satellite_status")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreAsLinkGateway(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(insertTemperature)).
		WithArgs(time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC), 1.5, 0.0, 0.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	p := groundlink.NewParser(groundlink.NewQueue[groundlink.RawMessage](1), s, groundlink.ParserConfig{})
	out := p.Process(context.Background(), groundlink.RawMessage(
		`<downstreamPacket><type>Temperature</type><TemperatureSample time="20230101120000"><Sensor1 temp="1.5"/></TemperatureSample></downstreamPacket>`))
	if out.Kind != groundlink.OutcomeOK {
		t.Fatalf("outcome = %v", out.Kind)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
