// Package trust provides a SQLite-backed trust-anchor and revoked-signer
// store used by the validator's certificate chain check (§4.4, §8).
//
// The schema and query style follow the teacher's pkg/database package:
// a small OpenStore that installs a versioned schema, plus prepared
// statements per operation.
package trust

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Options configures how the trust store opens its underlying database.
type Options struct {
	Path      string
	EnableWAL bool
}

// Store is a SQLite-backed trust-anchor and revocation database.
type Store struct {
	db *sql.DB
}

// Anchor is a trusted root or intermediate certificate, stored as raw DER.
type Anchor struct {
	Fingerprint string // hex-encoded SHA-256 of the certificate DER
	Subject     string
	CertDER     []byte
	AddedAt     string
}

// Open opens (creating if necessary) the trust store at the given path.
func Open(options Options) (*Store, error) {
	db, err := sql.Open("sqlite3", options.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trust store: %w", err)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize trust store schema: %w", err)
	}

	if options.EnableWAL {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func initializeSchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trust_anchors (
			fingerprint TEXT PRIMARY KEY,
			subject     TEXT NOT NULL,
			cert_der    BLOB NOT NULL,
			added_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create trust_anchors table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS revoked_signers (
			fingerprint TEXT PRIMARY KEY,
			reason      TEXT,
			revoked_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create revoked_signers table: %w", err)
	}

	return nil
}

// Add inserts or replaces a trust anchor.
func (s *Store) Add(anchor Anchor) error {
	stmt, err := s.db.Prepare(`
		INSERT OR REPLACE INTO trust_anchors (fingerprint, subject, cert_der)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare anchor insert: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(anchor.Fingerprint, anchor.Subject, anchor.CertDER); err != nil {
		return fmt.Errorf("failed to insert trust anchor: %w", err)
	}
	return nil
}

// Lookup returns the trust anchor with the given fingerprint, if present.
func (s *Store) Lookup(fingerprint string) (*Anchor, bool, error) {
	row := s.db.QueryRow(`
		SELECT fingerprint, subject, cert_der, added_at
		FROM trust_anchors WHERE fingerprint = ?
	`, fingerprint)

	var a Anchor
	if err := row.Scan(&a.Fingerprint, &a.Subject, &a.CertDER, &a.AddedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up trust anchor: %w", err)
	}
	return &a, true, nil
}

// List returns all trust anchors in the store.
func (s *Store) List() ([]Anchor, error) {
	rows, err := s.db.Query(`SELECT fingerprint, subject, cert_der, added_at FROM trust_anchors ORDER BY added_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trust anchors: %w", err)
	}
	defer rows.Close()

	var anchors []Anchor
	for rows.Next() {
		var a Anchor
		if err := rows.Scan(&a.Fingerprint, &a.Subject, &a.CertDER, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trust anchor: %w", err)
		}
		anchors = append(anchors, a)
	}
	return anchors, rows.Err()
}

// Revoke marks a signer certificate fingerprint as revoked.
func (s *Store) Revoke(fingerprint, reason string) error {
	stmt, err := s.db.Prepare(`
		INSERT OR REPLACE INTO revoked_signers (fingerprint, reason)
		VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare revoke statement: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(fingerprint, reason); err != nil {
		return fmt.Errorf("failed to revoke signer: %w", err)
	}
	return nil
}

// IsRevoked reports whether the given signer certificate fingerprint has
// been revoked.
func (s *Store) IsRevoked(fingerprint string) (bool, error) {
	row := s.db.QueryRow(`SELECT 1 FROM revoked_signers WHERE fingerprint = ?`, fingerprint)

	var dummy int
	if err := row.Scan(&dummy); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return true, nil
}
