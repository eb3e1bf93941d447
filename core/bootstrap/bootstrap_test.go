package bootstrap

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/supportbot/core/config"
	coredatabase "github.com/m3rciful/supportbot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunSkipsDatabaseWhenDisabled(t *testing.T) {
	connected := false
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if connected || res.DB != nil {
		t.Fatalf("database should not be touched when DB_HOST is empty")
	}
}

func TestRunPropagatesFailures(t *testing.T) {
	if _, err := Run(Options{}); err == nil {
		t.Fatalf("expected error for nil config")
	}

	loggerErr := errors.New("logger")
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return loggerErr },
	})
	if !errors.Is(err, loggerErr) {
		t.Fatalf("err = %v, want logger error", err)
	}

	connectErr := errors.New("refused")
	_, err = Run(Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Host: "db"},
		Migrations: fstest.MapFS{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			return nil, connectErr
		},
		Migrate: func(coredatabase.Config, fs.FS) error {
			t.Fatalf("migrate must not run after a failed connect")
			return nil
		},
	})
	if !errors.Is(err, connectErr) {
		t.Fatalf("err = %v, want connect error", err)
	}
}
