// Package repository provides data access interfaces and implementations
// for the Job Board Service.
//
// # Overview
//
// JobPostStore is the authoritative store for job posts. Every method
// returns a domain.Result instead of a (value, error) pair: callers branch
// on Result.OK before reading the value.
//
// # Error Handling
//
// Failed results carry errors from the domain package:
//
//   - domain.ErrNotFound: no row matched the id and owner
//   - domain.ErrInvalidInput: the entity passed in cannot be written
//   - domain.ErrStoreFailure: the database call itself failed
//
// # Thread Safety
//
// PgJobPostRepository holds no mutable state and is safe for concurrent use.
// The underlying pgxpool handles connection pooling and synchronization.
//
// # Usage Pattern
//
//	db, _ := database.New(ctx, cfg, logger)
//	store := repository.NewPgJobPostRepository(db)
package repository

import (
	"github.com/helixir/job-board-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction contexts.
// Passing a pgx.Tx instead of the pool scopes every call to that transaction.
type DBTX = database.DBTX
