package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when a lookup targets a record
	// (identified by user_id and record_id) that does not exist.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrBatchNotFound is returned when a sync batch id is unknown.
	ErrBatchNotFound = errors.New("sync batch was not found")

	// ErrBatchNotClaimable is returned when a claim targets a batch that
	// exists but is no longer pending — either another processor holds it or
	// it already reached a terminal status.
	ErrBatchNotClaimable = errors.New("sync batch is not pending")

	// ErrConflictNotFound is returned when a conflict id is unknown.
	ErrConflictNotFound = errors.New("conflict was not found")

	// ErrConflictAlreadyResolved is returned when a resolution targets a
	// conflict that has already been resolved. Resolution is at-most-once.
	ErrConflictAlreadyResolved = errors.New("conflict is already resolved")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingPayload is returned when a JSON column value cannot be
	// marshalled or unmarshalled.
	ErrEncodingPayload = errors.New("failed to encode payload")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")
)
