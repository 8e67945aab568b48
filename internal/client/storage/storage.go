// Package storage opens the metadata and image stores selected by the
// client configuration and applies their schema migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/docarchive/internal/client/config"
	"github.com/dmitrijs2005/docarchive/internal/client/migrations"
	"github.com/dmitrijs2005/docarchive/internal/client/repositories/images"
	"github.com/dmitrijs2005/docarchive/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docarchive/internal/dbx"
)

const sqlitePragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// newS3Repository is a seam for tests that must not reach AWS.
var newS3Repository = func(ctx context.Context, cfg images.S3Config) (images.Repository, error) {
	return images.NewS3Repository(ctx, cfg)
}

// Stores bundles the two local stores used by the document service.
type Stores struct {
	Metadata metadata.Repository
	Images   images.Repository

	// shared is set when both stores live in the same SQLite database.
	shared *sql.DB
	dbs    []*sql.DB
}

// Open builds the stores described by cfg. The SQLite database is opened
// once and shared when both backends are sqlite.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	s := &Stores{}

	var sqliteDB *sql.DB
	sqlite := func() (*sql.DB, error) {
		if sqliteDB != nil {
			return sqliteDB, nil
		}
		db, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		sqliteDB = db
		s.dbs = append(s.dbs, db)
		return db, nil
	}

	switch cfg.MetadataBackend {
	case config.BackendSQLite:
		db, err := sqlite()
		if err != nil {
			return nil, s.closeWith(err)
		}
		s.Metadata = metadata.NewSQLiteRepository(db)
	case config.BackendPostgres:
		db, err := OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, s.closeWith(err)
		}
		s.dbs = append(s.dbs, db)
		s.Metadata = metadata.NewPostgresRepository(db)
	case config.BackendMemory:
		s.Metadata = metadata.NewMemoryRepository()
	default:
		return nil, fmt.Errorf("unknown metadata backend %q", cfg.MetadataBackend)
	}

	switch cfg.ImageBackend {
	case config.BackendSQLite:
		db, err := sqlite()
		if err != nil {
			return nil, s.closeWith(err)
		}
		s.Images = images.NewSQLiteRepository(db)
		if cfg.MetadataBackend == config.BackendSQLite {
			s.shared = db
		}
	case config.BackendFileSystem:
		repo, err := images.NewFileSystemRepository(cfg.ImageDir)
		if err != nil {
			return nil, s.closeWith(err)
		}
		s.Images = repo
	case config.BackendS3:
		repo, err := newS3Repository(ctx, images.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3BaseEndpoint,
			AccessKey: cfg.S3User,
			SecretKey: cfg.S3Password,
			Prefix:    cfg.S3Prefix,
		})
		if err != nil {
			return nil, s.closeWith(err)
		}
		s.Images = repo
	case config.BackendMemory:
		s.Images = images.NewMemoryRepository(0)
	default:
		return nil, s.closeWith(fmt.Errorf("unknown image backend %q", cfg.ImageBackend))
	}

	return s, nil
}

// OpenSQLite opens the cache database at path and migrates it. An in-memory
// path gets a single pooled connection, since every new connection would
// open its own empty database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if isMemoryPath(path) {
		db.SetMaxOpenConns(1)
	}

	if err := migrate(ctx, db, "sqlite3", migrations.SQLiteDir); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + strings.TrimPrefix(sqlitePragmas, "?")
	}
	return path + sqlitePragmas
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// OpenPostgres opens a pgx-backed database/sql handle and migrates it.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := migrate(ctx, db, "pgx", migrations.PostgresDir); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect %s: %w", dialect, err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	return nil
}

// Purge empties both stores. When they share one SQLite database the two
// tables are cleared in a single transaction.
func (s *Stores) Purge(ctx context.Context) error {
	if s.shared != nil {
		return dbx.WithTx(ctx, s.shared, nil, func(ctx context.Context, tx dbx.DBTX) error {
			if err := metadata.NewSQLiteRepository(tx).Clear(ctx); err != nil {
				return err
			}
			return images.NewSQLiteRepository(tx).Clear(ctx)
		})
	}

	if err := s.Metadata.Clear(ctx); err != nil {
		return fmt.Errorf("purge metadata: %w", err)
	}
	if err := s.Images.Clear(ctx); err != nil {
		return fmt.Errorf("purge images: %w", err)
	}
	return nil
}

// Close releases every database handle opened by Open.
func (s *Stores) Close() error {
	var errs []error
	for _, db := range s.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.dbs = nil
	return errors.Join(errs...)
}

func (s *Stores) closeWith(err error) error {
	if cerr := s.Close(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}
