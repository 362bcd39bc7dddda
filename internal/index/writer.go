package index

import (
	"bytes"
	"database/sql"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	billy "github.com/go-git/go-billy/v5"
	_ "modernc.org/sqlite"
)

// Writer builds the index database. Pages are inserted inside one
// transaction; the term postings accumulate in memory as roaring bitmaps
// and are written on Close.
type Writer struct {
	db       *sql.DB
	tx       *sql.Tx
	stmtPage *sql.Stmt
	stmtID   *sql.Stmt
	terms    map[string]*roaring.Bitmap
	nextID   uint32
	closed   bool
}

// NewWriter creates a new writer and initializes the schema.
func NewWriter(dbPath string) (*Writer, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Performance tuning for bulk insert
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		doc_id TEXT PRIMARY KEY,
		title TEXT,
		path TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS doc_ids (
		id INTEGER PRIMARY KEY,
		doc_id TEXT UNIQUE NOT NULL
	);
	CREATE TABLE IF NOT EXISTS terms (
		token TEXT PRIMARY KEY,
		bitmap BLOB NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("begin index tx: %w", err)
	}
	stmtPage, err := tx.Prepare("INSERT OR REPLACE INTO pages (doc_id, title, path) VALUES (?, ?, ?)")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	stmtID, err := tx.Prepare("INSERT OR IGNORE INTO doc_ids (id, doc_id) VALUES (?, ?)")
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Writer{
		db:       db,
		tx:       tx,
		stmtPage: stmtPage,
		stmtID:   stmtID,
		terms:    make(map[string]*roaring.Bitmap),
	}, nil
}

// AddPage inserts one page and registers its terms.
func (w *Writer) AddPage(p Page) error {
	if _, err := w.stmtPage.Exec(p.DocID, p.Title, p.Path); err != nil {
		return fmt.Errorf("insert page %s: %w", p.DocID, err)
	}

	id := w.nextID
	w.nextID++
	if _, err := w.stmtID.Exec(id, p.DocID); err != nil {
		return fmt.Errorf("insert doc id %s: %w", p.DocID, err)
	}

	for _, term := range p.Terms {
		bm, ok := w.terms[term]
		if !ok {
			bm = roaring.New()
			w.terms[term] = bm
		}
		bm.Add(id)
	}
	return nil
}

// Close flushes the term bitmaps and commits. Safe to call once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer func() { _ = w.db.Close() }()

	stmtTerm, err := w.tx.Prepare("INSERT OR REPLACE INTO terms (token, bitmap) VALUES (?, ?)")
	if err != nil {
		_ = w.tx.Rollback()
		return fmt.Errorf("prepare terms insert: %w", err)
	}
	var buf bytes.Buffer
	for token, bm := range w.terms {
		buf.Reset()
		if _, err := bm.WriteTo(&buf); err != nil {
			_ = w.tx.Rollback()
			return fmt.Errorf("serialize bitmap for %s: %w", token, err)
		}
		if _, err := stmtTerm.Exec(token, buf.Bytes()); err != nil {
			_ = w.tx.Rollback()
			return fmt.Errorf("insert term %s: %w", token, err)
		}
	}
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("commit index: %w", err)
	}
	return nil
}

// Build scans the docs filesystem and writes a complete index database.
func Build(docs billy.Filesystem, dbPath string) (int, error) {
	pages, err := Scan(docs)
	if err != nil {
		return 0, err
	}

	w, err := NewWriter(dbPath)
	if err != nil {
		return 0, err
	}
	for _, p := range pages {
		if err := w.AddPage(p); err != nil {
			_ = w.db.Close()
			return 0, err
		}
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return len(pages), nil
}
