package sink

import (
	"context"

	"github.com/kbukum/etlkit/database"
	"github.com/kbukum/etlkit/entity"
	"github.com/kbukum/etlkit/logger"
)

// SQLite writes users into the users table, one transaction per chunk.
type SQLite struct {
	db   *database.DB
	repo *database.UserRepository
	log  *logger.Logger
}

// OpenSQLite opens the database at path and creates the users table.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	o := buildOptions(opts)
	cfg := o.db
	cfg.Path = path

	log := o.componentLog("sink.sqlite")
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	repo := database.NewUserRepository(db)
	if err := repo.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db, repo: repo, log: log}, nil
}

// Write inserts the chunk atomically.
func (s *SQLite) Write(ctx context.Context, chunk []entity.User) error {
	if err := s.repo.InsertBatch(ctx, chunk); err != nil {
		return err
	}
	s.log.Debug("chunk inserted", logger.Fields(logger.FieldCount, len(chunk)))
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
