package index

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	_ "modernc.org/sqlite"
)

// ErrNoPage is returned when a doc id is not present in the index.
var ErrNoPage = errors.New("page not in index")

// Reader queries an index database.
type Reader struct {
	db *sql.DB
}

// OpenReader opens an existing index database.
func OpenReader(dbPath string) (*Reader, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", dbPath, err)
	}
	// Fail early if the file is not an index database.
	if _, err := db.Exec("SELECT 1 FROM pages LIMIT 1"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("not an index database %s: %w", dbPath, err)
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

// HasDoc reports whether a doc id is indexed.
func (r *Reader) HasDoc(docID string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM pages WHERE doc_id = ?", docID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Doc returns the indexed page for a doc id.
func (r *Reader) Doc(docID string) (Page, error) {
	var p Page
	err := r.db.QueryRow("SELECT doc_id, title, path FROM pages WHERE doc_id = ?", docID).
		Scan(&p.DocID, &p.Title, &p.Path)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, fmt.Errorf("%w: %s", ErrNoPage, docID)
	}
	if err != nil {
		return Page{}, err
	}
	return p, nil
}

// Search returns the doc ids whose pages contain the term, in index order.
func (r *Reader) Search(term string) ([]string, error) {
	var blob []byte
	err := r.db.QueryRow("SELECT bitmap FROM terms WHERE token = ?", term).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	bm := roaring.New()
	if _, err := bm.ReadFrom(bytes.NewReader(blob)); err != nil {
		return nil, fmt.Errorf("decode bitmap for %q: %w", term, err)
	}

	idToDoc, err := r.docIDMap()
	if err != nil {
		return nil, err
	}

	var docs []string
	it := bm.Iterator()
	for it.HasNext() {
		if doc, ok := idToDoc[it.Next()]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (r *Reader) docIDMap() (map[uint32]string, error) {
	rows, err := r.db.Query("SELECT id, doc_id FROM doc_ids")
	if err != nil {
		return nil, fmt.Errorf("query doc ids: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	m := make(map[uint32]string)
	for rows.Next() {
		var id uint32
		var doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		m[id] = doc
	}
	return m, rows.Err()
}
