package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sketchpad/internal/domain"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// DocumentStore implements domain.DocumentStore using SQLite.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) CreateDocument(d *domain.Document) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO documents (id, name, snapshot, object_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Snapshot, d.ObjectCount, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *DocumentStore) GetDocument(id string) (*domain.Document, error) {
	d := &domain.Document{}
	err := s.db.conn.QueryRow(
		`SELECT id, name, snapshot, object_count, created_at, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.Snapshot, &d.ObjectCount, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// ListDocuments returns every document, most recently updated first.
// Snapshots are not loaded.
func (s *DocumentStore) ListDocuments() ([]domain.Document, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, name, object_count, created_at, updated_at FROM documents ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.Name, &d.ObjectCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *DocumentStore) UpdateSnapshot(id, snapshot string, objectCount int) error {
	res, err := s.db.conn.Exec(
		`UPDATE documents SET snapshot = ?, object_count = ?, updated_at = ? WHERE id = ?`,
		snapshot, objectCount, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	return expectOne(res, id)
}

func (s *DocumentStore) RenameDocument(id, name string) error {
	res, err := s.db.conn.Exec(
		`UPDATE documents SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("rename document: %w", err)
	}
	return expectOne(res, id)
}

func (s *DocumentStore) DeleteDocument(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM documents WHERE id = ?`, id)
	return err
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}
