package domain

import "time"

// Document is a persisted drawing. Snapshot holds the last saved scene.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Snapshot    string    `json:"snapshot"`
	ObjectCount int       `json:"objectCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DocumentStore manages CRUD for documents.
type DocumentStore interface {
	CreateDocument(d *Document) error
	GetDocument(id string) (*Document, error)
	ListDocuments() ([]Document, error)
	UpdateSnapshot(id, snapshot string, objectCount int) error
	RenameDocument(id, name string) error
	DeleteDocument(id string) error
}

// HistoryStack names one of the two history stacks.
type HistoryStack string

const (
	StackUndo HistoryStack = "undo"
	StackRedo HistoryStack = "redo"
)

// HistoryEntry is one persisted snapshot on a document's undo or redo stack.
// Position orders entries oldest→newest within a stack.
type HistoryEntry struct {
	DocumentID string       `json:"documentId"`
	Stack      HistoryStack `json:"stack"`
	Position   int          `json:"position"`
	Snapshot   string       `json:"snapshot"`
	CreatedAt  time.Time    `json:"createdAt"`
}
