// Package library holds ingested documents and their chunks in memory for
// the lifetime of the process. Nothing here is persisted.
package library

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document or chunk id is unknown.
var ErrNotFound = errors.New("library: not found")

// Document is an ingested source text split into ordered chunks.
type Document struct {
	ID       string
	URL      string
	Title    string
	ChunkIDs []int
}

// Chunk is one stable-identified slice of a document.
type Chunk struct {
	ID         int
	DocumentID string
	Text       string
}

// Library is the in-memory store of documents and chunks.
type Library struct {
	mu          sync.Mutex
	documents   map[string]*Document
	chunks      map[int]*Chunk
	nextChunkID int
}

// New returns an empty Library.
func New() *Library {
	return &Library{
		documents:   make(map[string]*Document),
		chunks:      make(map[int]*Chunk),
		nextChunkID: 1,
	}
}

// AddDocument stores a new document with the given chunk texts and returns it.
// Chunk ids are assigned sequentially and are unique across the process.
func (l *Library) AddDocument(url, title string, chunkTexts []string) *Document {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc := &Document{
		ID:    uuid.New().String(),
		URL:   url,
		Title: title,
	}
	for _, text := range chunkTexts {
		id := l.nextChunkID
		l.nextChunkID++
		l.chunks[id] = &Chunk{ID: id, DocumentID: doc.ID, Text: text}
		doc.ChunkIDs = append(doc.ChunkIDs, id)
	}
	l.documents[doc.ID] = doc
	return doc
}

// Document returns the document with the given id.
func (l *Library) Document(id string) (*Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, ok := l.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Chunk returns the chunk with the given id.
func (l *Library) Chunk(id int) (*Chunk, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.chunks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// Chunks returns a document's chunks in order.
func (l *Library) Chunks(documentID string) ([]*Chunk, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, ok := l.documents[documentID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]*Chunk, 0, len(doc.ChunkIDs))
	for _, id := range doc.ChunkIDs {
		out = append(out, l.chunks[id])
	}
	return out, nil
}

// Adjacent returns the chunks immediately before and after the given chunk
// within its document. Either may be nil at a document boundary.
func (l *Library) Adjacent(chunkID int) (prev, next *Chunk, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.chunks[chunkID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	doc := l.documents[c.DocumentID]
	for i, id := range doc.ChunkIDs {
		if id != chunkID {
			continue
		}
		if i > 0 {
			prev = l.chunks[doc.ChunkIDs[i-1]]
		}
		if i < len(doc.ChunkIDs)-1 {
			next = l.chunks[doc.ChunkIDs[i+1]]
		}
		return prev, next, nil
	}
	return nil, nil, ErrNotFound
}
