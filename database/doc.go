// Package database provides a GORM-backed SQLite store for pipeline output
// with retrying connection setup, transactions and a users repository.
//
//	db, err := database.Open(ctx, database.Config{Path: "output.db"}, log)
//	repo := database.NewUserRepository(db)
//	err = repo.Init(ctx)
//	err = repo.InsertBatch(ctx, users)
package database
