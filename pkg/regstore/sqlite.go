package regstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const (
	// EnvDBPath overrides the SQLite settings file location.
	EnvDBPath         = "WARRANTY_DB_PATH"
	defaultDBDirName  = ".warranty"
	defaultDBFileName = "settings.sqlite"
	settingsTable     = "settings"
)

// SQLite keeps settings in a local key/value table keyed by the same
// path/name pairs the registry uses, so layouts are portable between them.
type SQLite struct {
	db     *sql.DB
	path   string
	layout Layout
}

// NewSQLite opens (creating if needed) the settings database at dbPath. An
// empty dbPath resolves $WARRANTY_DB_PATH, then ~/.warranty/settings.sqlite.
func NewSQLite(dbPath string, layout Layout) (*SQLite, error) {
	path, err := resolveDatabasePath(dbPath)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: open settings database failed")
	}
	if err := configureSQLite(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := prepareSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug().Str("db_path", path).Msg("sqlite: settings store ready")
	return &SQLite{db: db, path: path, layout: layout}, nil
}

// Path returns the database file location.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Get(ctx context.Context, key Key) (string, error) {
	loc, err := s.layout.Resolve(key)
	if err != nil {
		return "", err
	}
	var value sql.NullString
	err = s.db.QueryRowContext(ctx,
		"SELECT value FROM "+settingsTable+" WHERE path=? AND name=?",
		foldPath(loc.Path), loc.Name).Scan(&value)
	if err == sql.ErrNoRows || (err == nil && !value.Valid) {
		return "", errors.Wrapf(ErrNotFound, "sqlite: %s", loc)
	}
	if err != nil {
		return "", errors.Wrapf(err, "sqlite: read %s failed", loc)
	}
	return value.String, nil
}

func (s *SQLite) Set(ctx context.Context, key Key, value string) error {
	loc, err := s.layout.Resolve(key)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+settingsTable+` (path, name, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path, name) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		foldPath(loc.Path), loc.Name, value, time.Now().Unix())
	if err != nil {
		return errors.Wrapf(err, "sqlite: write %s failed", loc)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// foldPath normalises a registry path the way the registry compares them:
// case-insensitively and without surrounding separators.
func foldPath(path string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(path), `\`))
}

func resolveDatabasePath(custom string) (string, error) {
	if custom = strings.TrimSpace(custom); custom == "" {
		custom = strings.TrimSpace(os.Getenv(EnvDBPath))
	}
	if custom != "" {
		if err := ensureDirExists(filepath.Dir(custom)); err != nil {
			return "", err
		}
		return custom, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "sqlite: locate user home failed")
	}
	dir := filepath.Join(home, defaultDBDirName)
	if err := ensureDirExists(dir); err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultDBFileName), nil
}

func ensureDirExists(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "sqlite: create directory %s failed", dir)
	}
	return nil
}

func configureSQLite(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Wrapf(err, "sqlite: execute %s failed", pragma)
		}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return nil
}

func prepareSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + settingsTable + ` (
		path TEXT NOT NULL,
		name TEXT NOT NULL,
		value TEXT,
		updated_at INTEGER,
		PRIMARY KEY (path, name)
	)`)
	if err != nil {
		return errors.Wrap(err, "sqlite: create settings table failed")
	}
	return nil
}
