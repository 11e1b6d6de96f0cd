package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/marginalia-reader/marginalia/internal/library"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Close codes sent to annotation channel clients.
const (
	closeUnknownChunk     = 4000
	closeAnnotationFailed = 4001
)

// handleAnnotationChannel serves one annotation channel for one chunk. The
// goal and the completion token cap are read from the query string once, at
// open time; after the initial annotation is pushed, each text message from
// the client is treated as a replacement goal and triggers another annotation
// push under the same token cap.
func (s *Server) handleAnnotationChannel(w http.ResponseWriter, r *http.Request) {
	chunkID, err := strconv.Atoi(chi.URLParam(r, "chunkID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chunk id")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	if _, err := s.lib.Chunk(chunkID); errors.Is(err, library.ErrNotFound) {
		log.Printf("server: chunk %d not found, closing channel", chunkID)
		s.closeWith(conn, closeUnknownChunk, "unknown chunk")
		return
	}

	goal := r.URL.Query().Get("goal")
	if goal == "" {
		goal = s.cfg.Goal
	}
	// Absent or unparseable falls back to the server's configured cap.
	maxTokens, err := strconv.Atoi(r.URL.Query().Get("max_tokens"))
	if err != nil || maxTokens < 1 {
		maxTokens = 0
	}

	if !s.pushAnnotation(conn, r, chunkID, goal, maxTokens) {
		return
	}

	// Refinement loop: each client message carries a new goal for this chunk.
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: chunk %d channel read: %v", chunkID, err)
			}
			return
		}
		newGoal := strings.TrimSpace(string(msg))
		if newGoal == "" {
			continue
		}
		if !s.pushAnnotation(conn, r, chunkID, newGoal, maxTokens) {
			return
		}
	}
}

// pushAnnotation annotates the chunk and writes the result as one JSON
// message. It reports whether the channel is still usable.
func (s *Server) pushAnnotation(conn *websocket.Conn, r *http.Request, chunkID int, goal string, maxTokens int) bool {
	ann, err := s.annotator.Annotate(r.Context(), chunkID, goal, maxTokens)
	if err != nil {
		log.Printf("server: annotating chunk %d: %v", chunkID, err)
		s.closeWith(conn, closeAnnotationFailed, err.Error())
		return false
	}
	if err := conn.WriteJSON(ann); err != nil {
		log.Printf("server: chunk %d channel write: %v", chunkID, err)
		return false
	}
	return true
}

func (s *Server) closeWith(conn *websocket.Conn, code int, reason string) {
	// Control frame payloads are capped at 125 bytes; leave room for the code.
	if len(reason) > 120 {
		reason = reason[:120]
	}
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		log.Printf("server: writing close frame: %v", err)
	}
}
