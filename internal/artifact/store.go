// Package artifact persists compiled dispatch tables between the generate
// and expand passes. Tables live in a SQLite database under .defcall/,
// keyed by declaration name and scope; the stored fingerprint lets a
// rebuild skip declarations that have not changed.
package artifact

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/defcall/defcall/internal/descriptor"
	"github.com/defcall/defcall/internal/permute"
	"github.com/defcall/defcall/internal/signature"
)

const (
	dirName = ".defcall"
	dbName  = "artifacts.db"
)

// ErrNotFound reports a lookup that matched no stored artifact.
var ErrNotFound = errors.New("artifact not found")

// Record is one stored generation artifact: the signature and its
// compiled table, plus bookkeeping.
type Record struct {
	ID          string
	Name        string
	Scope       string
	Kind        string
	Fingerprint string
	Signature   *signature.Signature
	Entries     []*permute.Entry
	CreatedAt   time.Time
}

// Table rebuilds the dispatch table from the stored payload.
func (r *Record) Table() *permute.Table {
	return permute.Load(r.Signature, r.Entries)
}

// payload is the JSON persisted per record.
type payload struct {
	Signature *signature.Signature `json:"signature"`
	Entries   []*permute.Entry     `json:"entries"`
}

// Store is the artifact database handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the artifact store for a project
// directory.
func Open(projectDir string) (*Store, error) {
	dir := filepath.Join(projectDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, dbName))
	if err != nil {
		return nil, fmt.Errorf("opening artifact store: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	scope       TEXT NOT NULL,
	kind        TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	payload     TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	UNIQUE (name, scope)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing artifact store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Put stores (or replaces) the artifact for one declaration.
func (s *Store) Put(decl *descriptor.Declaration, sig *signature.Signature, table *permute.Table) (*Record, error) {
	data, err := json.Marshal(payload{Signature: sig, Entries: table.Entries})
	if err != nil {
		return nil, fmt.Errorf("encoding artifact for %s: %w", sig.Name, err)
	}

	rec := &Record{
		ID:          uuid.NewString(),
		Name:        sig.Name,
		Scope:       sig.Scope,
		Kind:        string(sig.Kind),
		Fingerprint: Fingerprint(decl),
		Signature:   sig,
		Entries:     table.Entries,
		CreatedAt:   time.Now().UTC(),
	}

	const upsert = `
INSERT INTO artifacts (id, name, scope, kind, fingerprint, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (name, scope) DO UPDATE SET
	kind = excluded.kind,
	fingerprint = excluded.fingerprint,
	payload = excluded.payload,
	created_at = excluded.created_at;`
	if _, err := s.db.Exec(upsert,
		rec.ID, rec.Name, rec.Scope, rec.Kind, rec.Fingerprint, string(data), rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("storing artifact for %s: %w", sig.Name, err)
	}

	return rec, nil
}

// Lookup fetches the artifact for an exact (name, scope) pair.
func (s *Store) Lookup(name, scope string) (*Record, error) {
	row := s.db.QueryRow(
		`SELECT id, name, scope, kind, fingerprint, payload, created_at
		 FROM artifacts WHERE name = ? AND scope = ?`, name, scope)
	return scanRecord(row)
}

// LookupByName fetches the artifact for a bare item name. Fails when the
// name is stored under more than one scope.
func (s *Store) LookupByName(name string) (*Record, error) {
	rows, err := s.db.Query(
		`SELECT id, name, scope, kind, fingerprint, payload, created_at
		 FROM artifacts WHERE name = ? ORDER BY scope`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	case 1:
		return found[0], nil
	}
	scopes := make([]string, len(found))
	for i, r := range found {
		scopes[i] = r.Scope
	}
	return nil, fmt.Errorf("%s is ambiguous across scopes: %s", name, strings.Join(scopes, ", "))
}

// List returns every stored artifact, ordered by name then scope.
func (s *Store) List() ([]*Record, error) {
	rows, err := s.db.Query(
		`SELECT id, name, scope, kind, fingerprint, payload, created_at
		 FROM artifacts ORDER BY name, scope`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Clean removes the artifact directory entirely.
func Clean(projectDir string) error {
	return os.RemoveAll(filepath.Join(projectDir, dirName))
}

// Fingerprint returns a short content hash of a declaration's normalized
// form, so formatting-only edits do not invalidate its artifact.
func Fingerprint(decl *descriptor.Declaration) string {
	h := sha256.Sum256([]byte(decl.Canonical()))
	return hex.EncodeToString(h[:])[:16]
}

// scanner abstracts sql.Row and sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var data string
	err := row.Scan(&rec.ID, &rec.Name, &rec.Scope, &rec.Kind, &rec.Fingerprint, &data, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var p payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decoding artifact %s: %w", rec.Name, err)
	}
	rec.Signature = p.Signature
	rec.Entries = p.Entries
	return &rec, nil
}
