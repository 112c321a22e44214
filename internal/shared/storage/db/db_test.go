package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// withMockDB routes Connect to a sqlmock connection that tracks pings.
func withMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		if name != "pgx" {
			t.Fatalf("expected the pgx driver, got %q", name)
		}
		return conn, nil
	}
	t.Cleanup(func() {
		openDB = prev
		conn.Close()
	})
	return mock
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectPing()

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultServerOptions(), nil)
	db, err := Connect(context.Background(), "postgres://resume@localhost/resume", opts, nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if got := db.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", got)
	}
	want := Options{
		MaxOpenConns:    7,
		MaxIdleConns:    3,
		ConnMaxLifetime: 20 * time.Minute,
		ConnMaxIdleTime: 45 * time.Second,
		PingTimeout:     time.Second,
	}
	if opts != want {
		t.Fatalf("expected %+v, got %+v", want, opts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestOptionsFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("DB_PING_TIMEOUT", "soon")

	opts := OptionsFromEnv(DefaultCLIOptions(), nil)
	if opts != DefaultCLIOptions() {
		t.Fatalf("expected CLI defaults, got %+v", opts)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultCLIOptions(), nil); err == nil {
		t.Fatalf("expected an error for an empty DATABASE_URL")
	}
}

func TestConnectReportsPingFailure(t *testing.T) {
	mock := withMockDB(t)
	refused := errors.New("connection refused")
	mock.ExpectPing().WillReturnError(refused)

	_, err := Connect(context.Background(), "postgres://resume@localhost/resume", DefaultCLIOptions(), nil)
	if !errors.Is(err, refused) {
		t.Fatalf("expected wrapped ping error, got %v", err)
	}
}

func TestConnectReportsOpenFailure(t *testing.T) {
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return nil, driver.ErrBadConn
	}
	t.Cleanup(func() { openDB = prev })

	_, err := Connect(context.Background(), "postgres://ignored", DefaultServerOptions(), nil)
	if !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected wrapped ErrBadConn, got %v", err)
	}
}
