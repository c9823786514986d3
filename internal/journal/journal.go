// Package journal persists completed invocations to a SQL database for
// offline inspection. It is an observer: host behavior never depends on
// journal contents.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	// Database drivers.
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Natashkinsasha/near-nft-template/internal/runtime"
)

const schema = `
CREATE TABLE IF NOT EXISTS invocations (
	program     TEXT NOT NULL,
	method      TEXT NOT NULL,
	predecessor TEXT NOT NULL,
	signer      TEXT NOT NULL,
	deposit     BIGINT NOT NULL,
	success     BOOLEAN NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	logs        TEXT NOT NULL DEFAULT '[]',
	recorded_at TIMESTAMP NOT NULL
)`

// DB is a SQL-backed invocation journal.
type DB struct {
	db  *sql.DB
	log *zap.Logger
}

// Open connects to the journal database and ensures the schema exists.
// driver is "sqlite" or "postgres".
func Open(driver, dsn string, log *zap.Logger) (*DB, error) {
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", driver)
	}
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if driver == "sqlite" {
		// sqlite serializes writers; a second pooled connection would also
		// see a separate database when dsn is :memory:.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	log.Info("journal opened", zap.String("driver", driver))
	return &DB{db: db, log: log}, nil
}

// RecordInvocation appends one invocation record.
func (d *DB) RecordInvocation(rec runtime.InvocationRecord) error {
	logs, err := json.Marshal(rec.Logs)
	if err != nil {
		return fmt.Errorf("failed to encode logs: %w", err)
	}
	_, err = d.db.Exec(`
		INSERT INTO invocations
			(program, method, predecessor, signer, deposit, success, error, logs, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.Program, rec.Method, rec.Predecessor, rec.Signer,
		int64(rec.Deposit), rec.Success, rec.Error, string(logs), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert invocation: %w", err)
	}
	return nil
}

// Recent returns the latest invocations, newest first.
func (d *DB) Recent(limit int) ([]runtime.InvocationRecord, error) {
	rows, err := d.db.Query(`
		SELECT program, method, predecessor, signer, deposit, success, error, logs
		FROM invocations
		ORDER BY recorded_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	var out []runtime.InvocationRecord
	for rows.Next() {
		var rec runtime.InvocationRecord
		var deposit int64
		var logs string
		if err := rows.Scan(&rec.Program, &rec.Method, &rec.Predecessor, &rec.Signer,
			&deposit, &rec.Success, &rec.Error, &logs); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		rec.Deposit = uint64(deposit)
		if err := json.Unmarshal([]byte(logs), &rec.Logs); err != nil {
			d.log.Warn("corrupt journal logs column", zap.Error(err))
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}
