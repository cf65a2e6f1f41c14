package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"redpen/api/internal/analysis"
	"redpen/api/internal/annotate"
	"redpen/api/internal/config"
	"redpen/api/internal/corrections"
	"redpen/api/internal/detector"
	"redpen/api/internal/issue"
	"redpen/api/internal/plaintext"
	"redpen/api/internal/richtext"
	"redpen/api/internal/search"
	"redpen/api/internal/store"
	"redpen/api/internal/util"
)

type documentStore interface {
	ListDocuments(context.Context) ([]store.Document, error)
	GetDocument(context.Context, string) (store.Document, error)
	InsertDocument(context.Context, store.Document) error
	SaveDocumentContent(context.Context, string, []byte, string) error
	DeleteDocument(context.Context, string) error
	Ping(context.Context) error
}

// Service owns the open editing sessions and wires the correction engine
// to the document store, the detector, and the search index.
type Service struct {
	cfg      config.Config
	store    documentStore
	detector detector.Detector
	search   *search.Service
	redis    *redis.Client

	mu       sync.Mutex
	sessions map[string]*editSession
}

// editSession is one open document plus its analysis state. The surface
// and analysis session are single-owner; the mutex serializes the ordered
// callbacks that share them.
type editSession struct {
	mu       sync.Mutex
	id       string
	docID    string
	title    string
	doc      *richtext.Doc
	analysis *analysis.Session
	openedAt time.Time
}

// SessionView is the session state returned to clients.
type SessionView struct {
	SessionID  string          `json:"sessionId"`
	DocumentID string          `json:"documentId"`
	Title      string          `json:"title"`
	Doc        json.RawMessage `json:"doc"`
}

func New(cfg config.Config, dataStore documentStore, det detector.Detector, searchService *search.Service, redisClient *redis.Client) *Service {
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		detector: det,
		search:   searchService,
		redis:    redisClient,
		sessions: make(map[string]*editSession),
	}
}

// Bootstrap reindexes stored documents into the search backend.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.search != nil {
		s.search.ReindexAllFromPG(ctx)
	}
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// --- documents ---

func (s *Service) ListDocuments(ctx context.Context) ([]store.Document, error) {
	return s.store.ListDocuments(ctx)
}

func (s *Service) GetDocument(ctx context.Context, id string) (store.Document, error) {
	return s.store.GetDocument(ctx, id)
}

func (s *Service) CreateDocument(ctx context.Context, title string, body json.RawMessage) (store.Document, error) {
	doc, err := richtext.ParseDoc(body)
	if err != nil {
		return store.Document{}, domainError(http.StatusBadRequest, "INVALID_DOCUMENT", "Document body is not valid", nil)
	}
	record := store.Document{
		ID:        util.NewID("doc"),
		Title:     title,
		Doc:       body,
		PlainText: plaintext.Project(doc.ToHTML()),
	}
	if record.Doc == nil {
		record.Doc = json.RawMessage(`{"type":"doc"}`)
	}
	if err := s.store.InsertDocument(ctx, record); err != nil {
		return store.Document{}, fmt.Errorf("create document: %w", err)
	}
	if s.search != nil {
		s.search.IndexDocument(search.DocumentRecord{ID: record.ID, Title: record.Title, PlainText: record.PlainText})
	}
	return record, nil
}

// CreateDocumentFromMarkdown imports a markdown source as a new document:
// each block becomes one paragraph of projected plain text.
func (s *Service) CreateDocumentFromMarkdown(ctx context.Context, title, source string) (store.Document, error) {
	paragraphs := markdownParagraphs(source)
	if len(paragraphs) == 0 {
		return store.Document{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "markdown source is empty", nil)
	}

	doc := richtext.NewDoc(paragraphs...)
	body, err := doc.JSON()
	if err != nil {
		return store.Document{}, fmt.Errorf("serialize imported document: %w", err)
	}
	record := store.Document{
		ID:        util.NewID("doc"),
		Title:     title,
		Doc:       body,
		PlainText: doc.PlainText(),
	}
	if err := s.store.InsertDocument(ctx, record); err != nil {
		return store.Document{}, fmt.Errorf("create document: %w", err)
	}
	if s.search != nil {
		s.search.IndexDocument(search.DocumentRecord{ID: record.ID, Title: record.Title, PlainText: record.PlainText})
	}
	return record, nil
}

// markdownParagraphs splits a markdown source on blank lines and projects
// each block to plain text.
func markdownParagraphs(source string) []string {
	blocks := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n\n")
	out := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if projected := plaintext.ProjectMarkdown(block); projected != "" {
			out = append(out, projected)
		}
	}
	return out
}

// DeleteDocument removes a stored document and its search index entry.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domainError(http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found", nil)
		}
		return fmt.Errorf("delete document: %w", err)
	}
	if s.search != nil {
		s.search.DeleteDocument(id)
	}
	return nil
}

// --- sessions ---

// OpenSession loads a document and starts a correction session for it.
func (s *Service) OpenSession(ctx context.Context, documentID string) (SessionView, error) {
	record, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionView{}, domainError(http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found", nil)
		}
		return SessionView{}, fmt.Errorf("load document: %w", err)
	}

	doc, err := richtext.ParseDoc(record.Doc)
	if err != nil {
		return SessionView{}, domainError(http.StatusUnprocessableEntity, "INVALID_DOCUMENT", "Stored document body is not valid", nil)
	}

	sessionID := util.NewID("sess")
	es := &editSession{
		id:       sessionID,
		docID:    record.ID,
		title:    record.Title,
		doc:      doc,
		openedAt: time.Now(),
	}
	es.analysis = analysis.NewSession(analysis.Config{
		Detector:  s.detector,
		Tracker:   issue.NewTracker(s.dismissedStore(sessionID)),
		Debounce:  s.cfg.Debounce,
		MinLength: s.cfg.MinAnalyzeLength,
		Options: detector.Options{
			Grammar:  s.cfg.EnableGrammar,
			Spelling: s.cfg.EnableSpelling,
			Style:    s.cfg.EnableStyle,
			Language: s.cfg.Language,
		},
		OnUpdate: es.paint,
	})

	s.mu.Lock()
	s.sessions[sessionID] = es
	s.mu.Unlock()

	return s.viewOf(es)
}

// CloseSession tears a session down and clears its session-scoped
// dismissed fingerprints.
func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	es, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return errSessionNotFound()
	}

	es.analysis.Close()
	es.analysis.ClearDismissed(ctx)
	return nil
}

// UpdateContent replaces the session's document body with a user edit and
// schedules debounced re-analysis of the new projection.
func (s *Service) UpdateContent(_ context.Context, sessionID string, body json.RawMessage) error {
	es, err := s.session(sessionID)
	if err != nil {
		return err
	}
	doc, err := richtext.ParseDoc(body)
	if err != nil {
		return domainError(http.StatusBadRequest, "INVALID_DOCUMENT", "Document body is not valid", nil)
	}

	es.mu.Lock()
	es.doc = doc
	text := plaintext.Project(doc.ToHTML())
	es.mu.Unlock()

	es.analysis.Schedule(text)
	return nil
}

// Analyze runs analysis immediately, bypassing the debounce window.
func (s *Service) Analyze(ctx context.Context, sessionID string) (analysis.Snapshot, error) {
	es, err := s.session(sessionID)
	if err != nil {
		return analysis.Snapshot{}, err
	}

	es.mu.Lock()
	text := plaintext.Project(es.doc.ToHTML())
	es.mu.Unlock()

	es.analysis.Analyze(ctx, text)
	return es.analysis.Snapshot(), nil
}

// Issues returns the session's current analysis snapshot.
func (s *Service) Issues(sessionID string) (analysis.Snapshot, error) {
	es, err := s.session(sessionID)
	if err != nil {
		return analysis.Snapshot{}, err
	}
	return es.analysis.Snapshot(), nil
}

// SessionDocument returns the session's current body, annotations included.
func (s *Service) SessionDocument(sessionID string) (SessionView, error) {
	es, err := s.session(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return s.viewOf(es)
}

// DismissIssue hides an issue for the rest of the session.
func (s *Service) DismissIssue(ctx context.Context, sessionID, issueID string) error {
	es, err := s.session(sessionID)
	if err != nil {
		return err
	}
	if _, ok := es.analysis.Dismiss(ctx, issueID); !ok {
		return errIssueNotFound()
	}
	es.paint(es.analysis.Snapshot())
	return nil
}

// ApplyCorrection applies one suggestion onto the rich content. A change
// whose fragment has moved under the user reports applied=false; the issue
// is dismissed either way so it does not linger as resolved-but-visible.
func (s *Service) ApplyCorrection(ctx context.Context, sessionID, issueID string, suggestionIndex int) (bool, error) {
	es, err := s.session(sessionID)
	if err != nil {
		return false, err
	}

	snap := es.analysis.Snapshot()
	change, ok := changeFor(snap, issueID, suggestionIndex)
	if !ok {
		return false, errIssueNotFound()
	}

	// Programmatic mutation window: our own edit must not re-trigger
	// analysis scheduling.
	es.analysis.Mute()
	es.mu.Lock()
	applied := corrections.ApplyOne(es.doc, change)
	es.mu.Unlock()
	es.analysis.Unmute()

	es.analysis.Dismiss(ctx, issueID)
	es.paint(es.analysis.Snapshot())
	return applied, nil
}

// ApplyAll applies every current issue's top suggestion in one batch and
// dismisses all targeted issues regardless of per-change success.
func (s *Service) ApplyAll(ctx context.Context, sessionID string) (corrections.Result, error) {
	es, err := s.session(sessionID)
	if err != nil {
		return corrections.Result{}, err
	}

	snap := es.analysis.Snapshot()
	changes := make([]issue.Change, 0, len(snap.Issues))
	for _, iss := range snap.Issues {
		if ch, ok := changeFor(snap, iss.ID, 0); ok {
			changes = append(changes, ch)
		}
	}

	es.analysis.Mute()
	es.mu.Lock()
	result := corrections.ApplyMany(es.doc, changes)
	es.mu.Unlock()
	es.analysis.Unmute()

	// The user clicked "accept all": every targeted issue is dismissed even
	// when its correction could not be applied.
	es.analysis.DismissAll(ctx)
	es.paint(es.analysis.Snapshot())
	return result, nil
}

// SaveSession writes the session's current body back to the store and
// refreshes the search index.
func (s *Service) SaveSession(ctx context.Context, sessionID string) error {
	es, err := s.session(sessionID)
	if err != nil {
		return err
	}

	es.mu.Lock()
	body, jsonErr := es.doc.JSON()
	text := plaintext.Project(es.doc.ToHTML())
	es.mu.Unlock()
	if jsonErr != nil {
		return fmt.Errorf("serialize session document: %w", jsonErr)
	}

	if err := s.store.SaveDocumentContent(ctx, es.docID, body, text); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	if s.search != nil {
		snap := es.analysis.Snapshot()
		s.search.IndexDocument(search.DocumentRecord{
			ID:         es.docID,
			Title:      es.title,
			PlainText:  text,
			IssueCount: len(snap.Issues),
		})
	}
	return nil
}

// SearchDocuments runs a full-text search across stored documents.
func (s *Service) SearchDocuments(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}
	return s.search.Search(q)
}

// --- internals ---

// paint repaints annotation marks for the snapshot's issue list. Runs on
// every accepted analysis result and after dismiss/apply operations.
func (es *editSession) paint(snap analysis.Snapshot) {
	es.mu.Lock()
	defer es.mu.Unlock()
	annotate.Render(es.doc, snap.Issues, snap.Text)
}

// changeFor builds the correction change for an issue from the analysis
// snapshot it was detected in.
func changeFor(snap analysis.Snapshot, issueID string, suggestionIndex int) (issue.Change, bool) {
	for _, iss := range snap.Issues {
		if iss.ID != issueID {
			continue
		}
		if len(iss.Suggestions) == 0 {
			return issue.Change{}, false
		}
		if suggestionIndex < 0 || suggestionIndex >= len(iss.Suggestions) {
			suggestionIndex = 0
		}
		start, end := iss.Position.Start, iss.Position.End
		if start < 0 || end <= start || end > len(snap.Text) {
			return issue.Change{}, false
		}
		return issue.Change{
			Original:    snap.Text[start:end],
			Replacement: iss.Suggestions[suggestionIndex],
			Start:       start,
			End:         end,
		}, true
	}
	return issue.Change{}, false
}

func (s *Service) session(sessionID string) (*editSession, error) {
	s.mu.Lock()
	es, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, errSessionNotFound()
	}
	return es, nil
}

func (s *Service) viewOf(es *editSession) (SessionView, error) {
	es.mu.Lock()
	defer es.mu.Unlock()
	body, err := es.doc.JSON()
	if err != nil {
		return SessionView{}, fmt.Errorf("serialize session document: %w", err)
	}
	return SessionView{
		SessionID:  es.id,
		DocumentID: es.docID,
		Title:      es.title,
		Doc:        body,
	}, nil
}

// dismissedStore picks the backing store for a session's dismissed
// fingerprints: Redis when configured, in-memory otherwise.
func (s *Service) dismissedStore(sessionID string) issue.DismissedStore {
	if s.redis != nil {
		return issue.NewRedisStoreWithClient(s.redis, sessionID, s.cfg.SessionTTL)
	}
	return issue.NewMemoryStore()
}

func errSessionNotFound() *DomainError {
	return domainError(http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found", nil)
}

func errIssueNotFound() *DomainError {
	return domainError(http.StatusNotFound, "ISSUE_NOT_FOUND", "Issue not found", nil)
}
