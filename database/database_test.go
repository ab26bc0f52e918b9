package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/kbukum/etlkit/entity"
	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/logger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Path: filepath.Join(t.TempDir(), "out.db")}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{Path: "x.db"}
	cfg.ApplyDefaults()
	if cfg.MaxOpenConns != 1 || cfg.MaxRetries != 3 || cfg.InsertBatchSize != 500 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing path", Config{MaxOpenConns: 1, MaxRetries: 1, InsertBatchSize: 1, SlowQueryThreshold: "1s"}},
		{"bad threshold", Config{Path: "x.db", MaxOpenConns: 1, MaxRetries: 1, InsertBatchSize: 1, SlowQueryThreshold: "soon"}},
		{"zero retries", Config{Path: "x.db", MaxOpenConns: 1, InsertBatchSize: 1, SlowQueryThreshold: "1s"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(context.Background(), Config{}, logger.Nop())
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestUserRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))
	for i := 0; i < 2; i++ {
		if err := repo.Init(ctx); err != nil {
			t.Fatalf("init %d: %v", i, err)
		}
	}

	batch := make([]entity.User, 1200)
	for i := range batch {
		batch[i] = entity.User{
			Username:   fmt.Sprintf("user%04d", i),
			Identifier: fmt.Sprint(i),
			FirstName:  "First",
			LastName:   "Last",
		}
	}
	for _, chunk := range [][]entity.User{batch[:1000], batch[1000:], nil} {
		if err := repo.InsertBatch(ctx, chunk); err != nil {
			t.Fatal(err)
		}
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1200 {
		t.Errorf("count = %d, want 1200", n)
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1200 {
		t.Fatalf("expected 1200 users, got %d", len(all))
	}
	if all[0] != batch[0] || all[1199] != batch[1199] {
		t.Errorf("insertion order not preserved: %v .. %v", all[0], all[1199])
	}
}

func TestUserRepository_InsertWithoutTable(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	err := repo.InsertBatch(context.Background(), []entity.User{{Username: "abc"}})
	if !errors.Is(err, errors.ErrCodeDatabaseError) {
		t.Fatalf("expected DATABASE_ERROR, got %v", err)
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected an AppError, got %T", err)
	}
	if got := appErr.Details[logger.FieldOperation]; got != "insert" {
		t.Errorf("operation = %v, want insert", got)
	}
}

func TestWithTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewUserRepository(db)
	if err := repo.Init(ctx); err != nil {
		t.Fatal(err)
	}

	err := db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&entity.User{Username: "tmp"}).Error; err != nil {
			t.Errorf("create: %v", err)
		}
		return fmt.Errorf("abort")
	})
	if err == nil {
		t.Fatal("expected the transaction error")
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0 after rollback", n)
	}
}

func TestFromDatabase(t *testing.T) {
	if FromDatabase(nil, "x") != nil {
		t.Error("nil error should map to nil")
	}

	appErr := FromDatabase(fmt.Errorf("database is locked"), "insert")
	if appErr.Code != errors.ErrCodeDatabaseError {
		t.Errorf("code = %s, want DATABASE_ERROR", appErr.Code)
	}
	if appErr.Details["busy"] != true {
		t.Errorf("expected busy=true, got %v", appErr.Details["busy"])
	}
	if IsBusyError(fmt.Errorf("no such table")) {
		t.Error("no such table is not a busy error")
	}
}

func TestClose_Idempotent(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 2; i++ {
		if err := db.Close(); err != nil {
			t.Errorf("close %d: %v", i, err)
		}
	}
}
