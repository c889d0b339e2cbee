// Package store exports decoded interval-stream records into a DuckDB
// database for ad-hoc SQL analysis.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/wjy123009/gatk/internal/depth"
	"github.com/wjy123009/gatk/internal/genome"
)

// Store manages a DuckDB connection holding exported locus depths.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path. Use an empty
// string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS locus_depth (
		contig VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		depth_a BIGINT,
		depth_c BIGINT,
		depth_g BIGINT,
		depth_t BIGINT,
		PRIMARY KEY (contig, pos)
	)`)
	return err
}

// WriteLocusDepths inserts a batch of records in one transaction. Contig
// indices are resolved to names through the dictionary.
func (s *Store) WriteLocusDepths(dict *genome.Dictionary, recs []depth.LocusDepth) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO locus_depth
		(contig, pos, ref, depth_a, depth_c, depth_g, depth_t)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		c, err := dict.Contig(rec.ContigID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("resolve contig %d: %w", rec.ContigID, err)
		}
		_, err = stmt.Exec(c.Name, int64(rec.Position), string(rec.RefBase()),
			int64(rec.Depths[0]), int64(rec.Depths[1]), int64(rec.Depths[2]), int64(rec.Depths[3]))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert locus %s:%d: %w", c.Name, rec.Position, err)
		}
	}
	return tx.Commit()
}

// CountLocusDepths returns the number of exported rows.
func (s *Store) CountLocusDepths() (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM locus_depth`).Scan(&n)
	return n, err
}

// Row is one exported locus depth.
type Row struct {
	Contig string
	Pos    int64
	Ref    string
	DepthA int64
	DepthC int64
	DepthG int64
	DepthT int64
}

// Lookup returns the row at a position, or nil if absent.
func (s *Store) Lookup(contig string, pos int64) (*Row, error) {
	var r Row
	err := s.db.QueryRow(`SELECT contig, pos, ref, depth_a, depth_c, depth_g, depth_t
		FROM locus_depth WHERE contig = ? AND pos = ?`, contig, pos).
		Scan(&r.Contig, &r.Pos, &r.Ref, &r.DepthA, &r.DepthC, &r.DepthG, &r.DepthT)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
