package shared

import (
	"errors"
	"testing"
)

func TestNewDatabase(t *testing.T) {
	t.Run("sqlite in memory", func(t *testing.T) {
		db, err := NewDatabase(DriverSQLite, ":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		var enabled int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
			t.Fatalf("failed to read pragma: %v", err)
		}
		if enabled != 1 {
			t.Error("expected foreign keys to be enabled")
		}
	})

	t.Run("unsupported driver", func(t *testing.T) {
		_, err := NewDatabase("oracle", "whatever")
		if !errors.Is(err, ErrUnsupportedDriver) {
			t.Errorf("expected ErrUnsupportedDriver, got %v", err)
		}
	})

	t.Run("OpenDatabase keeps a single connection for memory databases", func(t *testing.T) {
		db, err := OpenDatabase(DatabaseConfig{Driver: DriverSQLite, DSN: ":memory:", MaxOpenConns: 10})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if got := db.Stats().MaxOpenConnections; got != 1 {
			t.Errorf("expected 1 max open connection, got %d", got)
		}
	})
}

func TestRebind(t *testing.T) {
	tt := []struct {
		name   string
		driver string
		query  string
		want   string
	}{
		{
			name:   "sqlite untouched",
			driver: DriverSQLite,
			query:  "SELECT * FROM users WHERE id = ? AND email = ?",
			want:   "SELECT * FROM users WHERE id = ? AND email = ?",
		},
		{
			name:   "postgres numbered",
			driver: DriverPostgres,
			query:  "SELECT * FROM users WHERE id = ? AND email = ?",
			want:   "SELECT * FROM users WHERE id = $1 AND email = $2",
		},
		{
			name:   "quoted question mark kept",
			driver: DriverPostgres,
			query:  "SELECT '?' FROM users WHERE id = ?",
			want:   "SELECT '?' FROM users WHERE id = $1",
		},
		{
			name:   "no placeholders",
			driver: DriverPostgres,
			query:  "SELECT 1",
			want:   "SELECT 1",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := Rebind(tc.driver, tc.query); got != tc.want {
				t.Errorf("Rebind() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db, err := NewDatabase(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE t (name TEXT UNIQUE)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO t (name) VALUES ('a')"); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}

	_, err = db.Exec("INSERT INTO t (name) VALUES ('a')")
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error should not be a unique violation")
	}
	if IsUniqueViolation(nil) {
		t.Error("nil should not be a unique violation")
	}
}
