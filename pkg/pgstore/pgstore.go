// Package pgstore provides a PostgreSQL-backed tuple store for sietch.
//
// The store works over database/sql and is driver-agnostic: both lib/pq
// and the pgx stdlib driver are supported, with SQLSTATE extraction via
// interface detection rather than driver-specific error types.
//
// # Usage
//
//	db, _ := sql.Open("postgres", databaseURL)
//	store := pgstore.New(db)
//	boot := sietch.NewBootstrap(store)
//	reg, err := boot.Run(ctx, "workspace", model, orgID, rootAdmin)
//
// CreateStore applies idempotent DDL (CREATE TABLE IF NOT EXISTS), so
// bootstrap can run on every startup. Tuples live in the sietch_tuples
// table with the full triple as primary key; adds use ON CONFLICT DO
// NOTHING, which is what makes duplicate adds collapse to the existing
// row instead of erroring.
//
// # Batches
//
// Write applies each batch inside one transaction. A concurrent checker
// reading through the same database observes either the whole batch or
// none of it. Connection-class failures surface as
// sietch.ErrStoreUnavailable so callers can retry with backoff.
package pgstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pthm/sietch"
)

// DB is the database handle the store needs. *sql.DB satisfies it.
// Transactions are started per write batch, so a bare *sql.Tx is not
// sufficient here; use the pool handle.
type DB interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Store is a durable sietch.TupleStore over PostgreSQL.
// Safe for concurrent use; reads run on the pool, writes each take one
// transaction.
type Store struct {
	db DB

	mu  sync.RWMutex
	reg *sietch.Registry
}

// New creates a store over the database handle. Call CreateStore (or run
// Bootstrap) before first use to apply the DDL.
func New(db DB) *Store {
	return &Store{db: db}
}

// CreateStore applies the tuple-table DDL and records the store row.
// Idempotent: every statement is IF NOT EXISTS / ON CONFLICT DO NOTHING.
func (s *Store) CreateStore(ctx context.Context, name string) error {
	for _, stmt := range ddlStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return s.wrapErr("applying ddl", err)
		}
	}
	if _, err := s.db.ExecContext(ctx, insertStoreSQL, name); err != nil {
		return s.wrapErr("recording store", err)
	}
	return nil
}

// InstallModel records the model version and keeps the registry for
// write validation. Reinstalling replaces the previous registry.
func (s *Store) InstallModel(ctx context.Context, reg *sietch.Registry) error {
	if _, err := s.db.ExecContext(ctx, upsertModelSQL, reg.Version()); err != nil {
		return s.wrapErr("recording model version", err)
	}
	s.mu.Lock()
	s.reg = reg
	s.mu.Unlock()
	return nil
}

// UseModel associates an already-installed registry with the store
// without touching the database. Reads never need it; Write validates
// batches against it.
func (s *Store) UseModel(reg *sietch.Registry) {
	s.mu.Lock()
	s.reg = reg
	s.mu.Unlock()
}

// InstalledVersion returns the model version recorded in the database,
// or "" when no model has ever been installed. Used by CLI status
// output.
func (s *Store) InstalledVersion(ctx context.Context) (string, error) {
	var version string
	err := s.db.QueryRowContext(ctx, selectModelSQL).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	// undefined_table: the DDL has never been applied, same answer as an
	// empty table.
	if sqlState(err) == "42P01" {
		return "", nil
	}
	if err != nil {
		return "", s.wrapErr("reading model version", err)
	}
	return version, nil
}

// Lookup reports whether the exact tuple is stored.
func (s *Store) Lookup(ctx context.Context, subject sietch.Subject, relation sietch.Relation, object sietch.Object) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, lookupSQL,
		subject.Type, subject.ID, subject.Relation,
		relation, object.Type, object.ID,
	).Scan(&exists)
	if err != nil {
		return false, s.wrapErr("lookup", err)
	}
	return exists, nil
}

// LookupByTupleset returns the plain-object link targets of object under
// the tupleset relation.
func (s *Store) LookupByTupleset(ctx context.Context, object sietch.Object, tupleset sietch.Relation) ([]sietch.Object, error) {
	rows, err := s.db.QueryContext(ctx, lookupTuplesetSQL, tupleset, object.Type, object.ID)
	if err != nil {
		return nil, s.wrapErr("lookup tupleset", err)
	}
	defer func() { _ = rows.Close() }()

	var targets []sietch.Object
	for rows.Next() {
		var target sietch.Object
		if err := rows.Scan(&target.Type, &target.ID); err != nil {
			return nil, s.wrapErr("lookup tupleset", err)
		}
		targets = append(targets, target)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("lookup tupleset", err)
	}
	return targets, nil
}

// LookupUsersets returns the userset-reference subjects stored for
// (relation, object).
func (s *Store) LookupUsersets(ctx context.Context, object sietch.Object, relation sietch.Relation) ([]sietch.Subject, error) {
	rows, err := s.db.QueryContext(ctx, lookupUsersetsSQL, relation, object.Type, object.ID)
	if err != nil {
		return nil, s.wrapErr("lookup usersets", err)
	}
	defer func() { _ = rows.Close() }()

	var usersets []sietch.Subject
	for rows.Next() {
		var subject sietch.Subject
		if err := rows.Scan(&subject.Type, &subject.ID, &subject.Relation); err != nil {
			return nil, s.wrapErr("lookup usersets", err)
		}
		usersets = append(usersets, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("lookup usersets", err)
	}
	return usersets, nil
}

// ReadByObject returns every stored tuple on the given object.
func (s *Store) ReadByObject(ctx context.Context, object sietch.Object) ([]sietch.Tuple, error) {
	rows, err := s.db.QueryContext(ctx, readByObjectSQL, object.Type, object.ID)
	if err != nil {
		return nil, s.wrapErr("read by object", err)
	}
	defer func() { _ = rows.Close() }()

	var tuples []sietch.Tuple
	for rows.Next() {
		var t sietch.Tuple
		if err := rows.Scan(
			&t.Subject.Type, &t.Subject.ID, &t.Subject.Relation,
			&t.Relation, &t.Object.Type, &t.Object.ID,
		); err != nil {
			return nil, s.wrapErr("read by object", err)
		}
		tuples = append(tuples, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("read by object", err)
	}
	return tuples, nil
}

// Write applies adds and removes in one transaction. The batch is
// validated against the installed model before the transaction starts,
// so a single invalid tuple rejects the whole batch without touching the
// database.
func (s *Store) Write(ctx context.Context, adds, removes []sietch.Tuple) error {
	s.mu.RLock()
	reg := s.reg
	s.mu.RUnlock()

	if reg == nil {
		return sietch.ErrMissingModel
	}
	for _, t := range adds {
		if !reg.HasRelation(t.Object.Type, t.Relation) {
			return fmt.Errorf("%w: %s", sietch.ErrInvalidTuple, t)
		}
	}
	for _, t := range removes {
		if !reg.HasRelation(t.Object.Type, t.Relation) {
			return fmt.Errorf("%w: %s", sietch.ErrInvalidTuple, t)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrapErr("begin batch", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range adds {
		if _, err := tx.ExecContext(ctx, insertTupleSQL,
			t.Subject.Type, t.Subject.ID, t.Subject.Relation,
			t.Relation, t.Object.Type, t.Object.ID,
		); err != nil {
			return s.wrapErr("add tuple", err)
		}
	}
	for _, t := range removes {
		if _, err := tx.ExecContext(ctx, deleteTupleSQL,
			t.Subject.Type, t.Subject.ID, t.Subject.Relation,
			t.Relation, t.Object.Type, t.Object.ID,
		); err != nil {
			return s.wrapErr("remove tuple", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return s.wrapErr("commit batch", err)
	}
	return nil
}

// wrapErr classifies a database error. Connection-class failures and
// expired deadlines become sietch.ErrStoreUnavailable; everything else
// is wrapped with the failing operation.
func (s *Store) wrapErr(operation string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", sietch.ErrStoreUnavailable, operation, err)
	}
	return fmt.Errorf("pgstore: %s: %w", operation, err)
}

// SQLSTATE classes and codes that indicate the database cannot currently
// serve requests, as opposed to a statement-level failure.
const (
	sqlStateClassConnection = "08"    // connection_exception
	sqlStateAdminShutdown   = "57P01" // terminating connection
	sqlStateCrashShutdown   = "57P02"
	sqlStateCannotConnect   = "57P03"
	sqlStateTooManyConns    = "53300"
)

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	switch code := sqlState(err); {
	case code == "":
		return false
	case strings.HasPrefix(code, sqlStateClassConnection):
		return true
	case code == sqlStateAdminShutdown, code == sqlStateCrashShutdown,
		code == sqlStateCannotConnect, code == sqlStateTooManyConns:
		return true
	}
	return false
}

// sqlState extracts the SQLSTATE code from a PostgreSQL error.
// Works with multiple drivers via interface detection:
//   - pgx/pgconn: SQLState() string
//   - lib/pq: Code field (via error interface)
func sqlState(err error) string {
	type sqlStateErr interface{ SQLState() string }
	var se sqlStateErr
	if errors.As(err, &se) {
		return se.SQLState()
	}

	type codeErr interface{ Code() string }
	var ce codeErr
	if errors.As(err, &ce) {
		return ce.Code()
	}

	return ""
}

var _ sietch.AdminStore = (*Store)(nil)
