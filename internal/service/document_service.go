package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"sketchpad/internal/clipboard"
	"sketchpad/internal/domain"
	"sketchpad/internal/history"
	"sketchpad/internal/snapshot"
	"sketchpad/internal/storage"
)

var (
	// ErrNotOpen is returned when a document has no live session.
	ErrNotOpen = errors.New("document is not open")
	// ErrSaveInProgress is returned when a save of the same document is running.
	ErrSaveInProgress = errors.New("save already in progress")
)

// DocumentService manages stored documents and their open sessions.
type DocumentService struct {
	docs    domain.DocumentStore
	history *storage.HistoryStore
	clip    clipboard.Clipboard
	logger  *slog.Logger
	guard   runningGuard

	mu       sync.Mutex
	opts     SessionOptions
	sessions map[string]*Session
}

// NewDocumentService creates a service over the given stores. Sessions it
// opens are built from opts and share clip.
func NewDocumentService(docs domain.DocumentStore, hist *storage.HistoryStore, clip clipboard.Clipboard, opts SessionOptions) *DocumentService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentService{
		docs:     docs,
		history:  hist,
		clip:     clip,
		logger:   logger,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create stores a new empty document and opens a session for it.
func (s *DocumentService) Create(name string) (*domain.Document, *Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := NewSession(id, s.clip, s.opts)
	if err != nil {
		return nil, nil, err
	}
	doc := &domain.Document{ID: id, Name: name, Snapshot: string(sess.Current())}
	if err := s.docs.CreateDocument(doc); err != nil {
		return nil, nil, err
	}
	s.sessions[id] = sess
	s.logger.Info("document created", "document", id, "name", name)
	return doc, sess, nil
}

// List returns the stored documents, most recently updated first.
func (s *DocumentService) List() ([]domain.Document, error) {
	return s.docs.ListDocuments()
}

// Get returns a stored document including its snapshot.
func (s *DocumentService) Get(id string) (*domain.Document, error) {
	return s.docs.GetDocument(id)
}

// Rename changes a document's display name.
func (s *DocumentService) Rename(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("rename %s: empty name", id)
	}
	return s.docs.RenameDocument(id, name)
}

// Open returns the live session of a document, loading it from storage when
// it is not open yet. Persisted undo/redo stacks are restored; a document
// without history starts from its stored snapshot.
func (s *DocumentService) Open(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}

	doc, err := s.docs.GetDocument(id)
	if err != nil {
		return nil, err
	}
	sess, err := NewSession(id, s.clip, s.opts)
	if err != nil {
		return nil, err
	}
	if doc.Snapshot != "" {
		st, err := s.loadState(doc)
		if err != nil {
			return nil, err
		}
		if err := sess.restore(st); err != nil {
			s.logger.Error("stored history unreadable", "document", id, "error", err)
			return nil, fmt.Errorf("open %s: %w", id, err)
		}
	}
	s.sessions[id] = sess
	s.logger.Info("document opened", "document", id, "undo", sess.History().UndoDepth)
	return sess, nil
}

func (s *DocumentService) loadState(doc *domain.Document) (history.State, error) {
	st := history.State{Current: snapshot.Snapshot(doc.Snapshot)}
	if s.history == nil {
		return st, nil
	}
	stacks, err := s.history.Load(doc.ID)
	if err != nil {
		return st, fmt.Errorf("open %s: %w", doc.ID, err)
	}
	st.Undo = toSnapshots(stacks.Undo)
	st.Redo = toSnapshots(stacks.Redo)
	return st, nil
}

// Session returns the live session of an open document.
func (s *DocumentService) Session(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotOpen)
	}
	return sess, nil
}

// OpenIDs returns the IDs of all open documents in sorted order.
func (s *DocumentService) OpenIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Save persists the current snapshot and history of an open document.
func (s *DocumentService) Save(id string) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	if !s.guard.TryLock(id) {
		return fmt.Errorf("save %s: %w", id, ErrSaveInProgress)
	}
	defer s.guard.Unlock(id)
	return s.save(sess)
}

func (s *DocumentService) save(sess *Session) error {
	st, count, rev := sess.Checkpoint()
	if err := s.docs.UpdateSnapshot(sess.ID(), string(st.Current), count); err != nil {
		return fmt.Errorf("save %s: %w", sess.ID(), err)
	}
	if s.history != nil {
		stacks := storage.HistoryStacks{Undo: fromSnapshots(st.Undo), Redo: fromSnapshots(st.Redo)}
		if err := s.history.Save(sess.ID(), stacks); err != nil {
			return fmt.Errorf("save %s history: %w", sess.ID(), err)
		}
	}
	sess.MarkSaved(rev)
	s.logger.Debug("document saved", "document", sess.ID(), "objects", count, "undo", len(st.Undo))
	return nil
}

// SaveDirty saves every open document with unsaved changes. Documents whose
// save is already running are skipped. It returns how many were saved.
func (s *DocumentService) SaveDirty() (int, error) {
	var (
		saved int
		errs  []error
	)
	for _, id := range s.OpenIDs() {
		sess, err := s.Session(id)
		if err != nil || !sess.Dirty() {
			continue
		}
		if err := s.Save(id); err != nil {
			if errors.Is(err, ErrSaveInProgress) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// Close saves a document if it has unsaved changes and drops its session.
func (s *DocumentService) Close(id string) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	if sess.Dirty() {
		if err := s.Save(id); err != nil {
			return err
		}
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.logger.Info("document closed", "document", id)
	return nil
}

// Delete drops the session without saving and removes the document and its
// history from storage.
func (s *DocumentService) Delete(id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	if s.history != nil {
		if err := s.history.Clear(id); err != nil {
			return fmt.Errorf("delete %s history: %w", id, err)
		}
	}
	if err := s.docs.DeleteDocument(id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	s.logger.Info("document deleted", "document", id)
	return nil
}

// SetMaxDepth changes the undo bound of every open session and of sessions
// opened later.
func (s *DocumentService) SetMaxDepth(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.MaxDepth = n
	for _, sess := range s.sessions {
		sess.SetMaxDepth(n)
	}
}

// Shutdown saves all dirty documents after waiting for running saves.
func (s *DocumentService) Shutdown(ctx context.Context) error {
	s.guard.WaitAll(ctx)
	_, err := s.SaveDirty()
	return err
}

func toSnapshots(in []string) []snapshot.Snapshot {
	out := make([]snapshot.Snapshot, len(in))
	for i, v := range in {
		out[i] = snapshot.Snapshot(v)
	}
	return out
}

func fromSnapshots(in []snapshot.Snapshot) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
