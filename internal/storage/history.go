package storage

import (
	"fmt"
	"time"

	"sketchpad/internal/domain"
)

// HistoryStacks is the persisted form of a document's undo/redo history.
// Both slices are ordered oldest→newest.
type HistoryStacks struct {
	Undo []string
	Redo []string
}

// HistoryStore persists undo/redo stacks in SQLite.
type HistoryStore struct {
	db         *DB
	maxEntries int
}

// NewHistoryStore creates a store that keeps at most maxEntries undo entries
// per document (0 = no limit). Redo entries are always kept.
func NewHistoryStore(db *DB, maxEntries int) *HistoryStore {
	return &HistoryStore{db: db, maxEntries: maxEntries}
}

// Save replaces the stored stacks of a document in one transaction.
func (s *HistoryStore) Save(documentID string, stacks HistoryStacks) error {
	undo := stacks.Undo
	if s.maxEntries > 0 && len(undo) > s.maxEntries {
		undo = undo[len(undo)-s.maxEntries:]
	}

	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM history_entries WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	now := time.Now()
	insert := func(stack domain.HistoryStack, snaps []string) error {
		for i, snap := range snaps {
			_, err := tx.Exec(
				`INSERT INTO history_entries (document_id, stack, position, snapshot, created_at) VALUES (?, ?, ?, ?, ?)`,
				documentID, stack, i, snap, now,
			)
			if err != nil {
				return fmt.Errorf("insert %s entry %d: %w", stack, i, err)
			}
		}
		return nil
	}
	if err := insert(domain.StackUndo, undo); err != nil {
		return err
	}
	if err := insert(domain.StackRedo, stacks.Redo); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the stored stacks of a document. A document without history
// yields empty stacks.
func (s *HistoryStore) Load(documentID string) (HistoryStacks, error) {
	entries, err := s.Entries(documentID)
	if err != nil {
		return HistoryStacks{}, err
	}
	var st HistoryStacks
	for _, e := range entries {
		switch e.Stack {
		case domain.StackUndo:
			st.Undo = append(st.Undo, e.Snapshot)
		case domain.StackRedo:
			st.Redo = append(st.Redo, e.Snapshot)
		}
	}
	return st, nil
}

// Entries returns the raw rows for a document ordered by stack and position.
func (s *HistoryStore) Entries(documentID string) ([]domain.HistoryEntry, error) {
	rows, err := s.db.conn.Query(
		`SELECT document_id, stack, position, snapshot, created_at
		 FROM history_entries WHERE document_id = ? ORDER BY stack ASC, position ASC`, documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.DocumentID, &e.Stack, &e.Position, &e.Snapshot, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes all history of a document.
func (s *HistoryStore) Clear(documentID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM history_entries WHERE document_id = ?`, documentID)
	return err
}
