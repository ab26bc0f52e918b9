package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/kbukum/etlkit/entity"
)

// UserRepository stores users in the users table.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a repository over db.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Init creates the users table if it does not exist.
func (r *UserRepository) Init(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&entity.User{}); err != nil {
		return FromDatabase(err, "init")
	}
	return nil
}

// InsertBatch inserts users in one transaction. Either every row is
// written or none is.
func (r *UserRepository) InsertBatch(ctx context.Context, users []entity.User) error {
	if len(users) == 0 {
		return nil
	}
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.CreateInBatches(&users, r.db.cfg.InsertBatchSize).Error
	})
	if err != nil {
		return FromDatabase(err, "insert")
	}
	return nil
}

// All returns every stored user in insertion order.
func (r *UserRepository) All(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Order("rowid").Find(&users).Error; err != nil {
		return nil, FromDatabase(err, "select")
	}
	return users, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&n).Error; err != nil {
		return 0, FromDatabase(err, "count")
	}
	return n, nil
}
