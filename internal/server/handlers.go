package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/marginalia-reader/marginalia/internal/gutenberg"
	"github.com/marginalia-reader/marginalia/internal/library"
)

// ingestRequest is the POST /api/ingest body.
type ingestRequest struct {
	URL string `json:"url"`
}

// ingestResponse reports the stored document and its chunk ids.
type ingestResponse struct {
	DocumentID string `json:"document_id"`
	Chunks     []int  `json:"chunks"`
}

// chunkOut is one element of the chunk listing response.
type chunkOut struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	raw, err := s.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		log.Printf("server: ingest %s: %v", req.URL, err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	clean := gutenberg.Clean(raw)
	texts := s.splitter.Split(clean)
	if len(texts) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "document contains no text")
		return
	}

	doc := s.lib.AddDocument(req.URL, path.Base(req.URL), texts)
	log.Printf("server: document %s stored with %d chunks", doc.ID, len(doc.ChunkIDs))

	writeJSON(w, http.StatusOK, ingestResponse{DocumentID: doc.ID, Chunks: doc.ChunkIDs})
}

func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	chunks, err := s.lib.Chunks(documentID)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown document")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]chunkOut, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, chunkOut{ID: c.ID, Text: c.Text})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
