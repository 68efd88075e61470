// Package store reads connection state from a glosco SQLite database.
//
// The capture server owns the schema: a `state` table of observations and a
// `latest_ins` view exposing the most recent row per logical connection.
// The viewer only ever reads those, plus one side table of its own,
// `interest`, through which the active ident filter is communicated.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"github.com/grissess/gscope/model"
)

const latestQuery = `
SELECT srchost, srcport, dsthost, dstport, proto, pkind, close, instime, ident
FROM latest_ins
WHERE NOT EXISTS (SELECT 1 FROM interest)
   OR ident IN (SELECT ident FROM interest)`

// Store is the query adapter over the state database. A Store with no
// underlying database (file absent, or Open never called) is valid: every
// query returns empty results until a re-open succeeds.
type Store struct {
	path     string
	db       *sql.DB
	interest []string // pending filter, applied on open
}

// New returns a Store with no database attached.
func New() *Store {
	return &Store{}
}

// Available reports whether a database is currently open.
func (s *Store) Available() bool {
	return s.db != nil
}

// Path returns the most recently requested database path.
func (s *Store) Path() string {
	return s.path
}

// Open attaches the store to the database at path, tearing down any prior
// handle first. A missing file is not an error: the store enters the
// unavailable state and queries no-op until the next Open. WAL journal
// mode is enabled so a concurrently writing server never blocks reads.
func (s *Store) Open(path string) error {
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
	s.path = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("store: %s not found, waiting for it to appear", path)
		return nil
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("ping %s: %w", path, err)
	}

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode=WAL").Scan(&mode); err != nil {
		db.Close()
		return fmt.Errorf("enable WAL: %w", err)
	}
	if mode != "wal" {
		db.Close()
		return fmt.Errorf("enable WAL: journal_mode is %q", mode)
	}

	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS interest (ident TEXT PRIMARY KEY)"); err != nil {
		db.Close()
		return fmt.Errorf("create interest table: %w", err)
	}

	s.db = db
	return s.writeInterest(s.interest)
}

// Close releases the database handle, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SetInterest restricts queries to the given idents. An empty set removes
// all filtering. The filter survives re-opens: when no database is open it
// is held in memory and written on the next successful Open.
func (s *Store) SetInterest(idents []string) error {
	s.interest = append([]string(nil), idents...)
	if s.db == nil {
		return nil
	}
	return s.writeInterest(s.interest)
}

// Interest returns the currently requested filter set.
func (s *Store) Interest() []string {
	return append([]string(nil), s.interest...)
}

func (s *Store) writeInterest(idents []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin interest update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM interest"); err != nil {
		return fmt.Errorf("clear interest: %w", err)
	}
	for _, id := range idents {
		if _, err := tx.Exec("INSERT OR IGNORE INTO interest (ident) VALUES (?)", id); err != nil {
			return fmt.Errorf("insert interest %q: %w", id, err)
		}
	}
	return tx.Commit()
}

// QueryLatest returns the most recent known row per monitored connection,
// restricted to the interest set when one is active. The latest-per-
// connection aggregation is the store's job (the latest_ins view), not
// ours. An unavailable store yields no rows and no error.
func (s *Store) QueryLatest() ([]model.ConnRecord, error) {
	if s.db == nil {
		return nil, nil
	}

	rows, err := s.db.Query(latestQuery)
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	defer rows.Close()

	var out []model.ConnRecord
	for rows.Next() {
		var (
			rec      model.ConnRecord
			srcHost  sql.NullString
			dstHost  sql.NullString
			srcPort  sql.NullInt64
			dstPort  sql.NullInt64
			proto    sql.NullInt64
			pkind    sql.NullInt64
			closedBy sql.NullInt64
			insTime  sql.NullFloat64
			ident    sql.NullString
		)
		if err := rows.Scan(&srcHost, &srcPort, &dstHost, &dstPort, &proto,
			&pkind, &closedBy, &insTime, &ident); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.SrcHost = srcHost.String
		rec.DstHost = dstHost.String
		rec.SrcPort = int(srcPort.Int64)
		rec.DstPort = int(dstPort.Int64)
		rec.Proto = int(proto.Int64)
		if pkind.Valid {
			rec.PKind = int(pkind.Int64)
			rec.HasPKind = true
		}
		if closedBy.Valid {
			rec.Close = int(closedBy.Int64)
			rec.HasClose = true
		}
		rec.InsTime = insTime.Float64
		rec.Ident = ident.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DistinctIdents lists every ident that has ever reported a row,
// regardless of the active filter.
func (s *Store) DistinctIdents() ([]string, error) {
	if s.db == nil {
		return nil, nil
	}

	rows, err := s.db.Query("SELECT DISTINCT ident FROM state ORDER BY ident")
	if err != nil {
		return nil, fmt.Errorf("query idents: %w", err)
	}
	defer rows.Close()

	var idents []string
	for rows.Next() {
		var ident sql.NullString
		if err := rows.Scan(&ident); err != nil {
			return nil, fmt.Errorf("scan ident: %w", err)
		}
		if ident.Valid {
			idents = append(idents, ident.String)
		}
	}
	return idents, rows.Err()
}
