package stream

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/marginalia-reader/marginalia/internal/viewer"
)

// Manager owns the annotation channels for one viewer session. It keeps a
// registry keyed by chunk id so at most one channel is ever open per chunk,
// caps how many channels run concurrently, freezes the goal into each channel
// at open time, and closes every channel as a scoped resource: after its
// annotation arrives with no refinement pending, when the document is
// replaced, or when the manager shuts down.
type Manager struct {
	client  *Client
	session *viewer.Session
	sem     chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	goal      string
	maxTokens int
	channels  map[int]*channel
	closed    bool
}

// channel is the registry entry for one chunk's open (or opening) channel.
type channel struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	goal      string
	maxTokens int
	expect    int // messages still expected: the initial annotation plus one per refinement
	closed    bool
}

// NewManager creates a channel manager. maxChannels caps concurrently open
// channels; chunks past the cap wait for a slot.
func NewManager(client *Client, session *viewer.Session, goal string, maxChannels int) *Manager {
	if maxChannels < 1 {
		maxChannels = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		client:   client,
		session:  session,
		sem:      make(chan struct{}, maxChannels),
		ctx:      ctx,
		cancel:   cancel,
		goal:     goal,
		channels: make(map[int]*channel),
	}
}

// Load ingests the document at docURL, replaces the session's chunk sequence
// wholesale (closing every channel belonging to the previous document), and
// opens a channel for each chunk.
func (m *Manager) Load(ctx context.Context, docURL string) error {
	documentID, err := m.client.Ingest(ctx, docURL)
	if err != nil {
		return err
	}
	chunks, err := m.client.Chunks(ctx, documentID)
	if err != nil {
		return err
	}

	m.closeAllChannels()
	m.session.LoadChunks(chunks)
	m.OpenChannels()
	return nil
}

// SetGoal changes the goal used for channels opened from now on. Channels
// already open keep the goal they were opened with.
func (m *Manager) SetGoal(goal string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goal = goal
}

// SetMaxTokens caps the completion length requested on channels opened from
// now on. Zero leaves the cap to the server's configuration.
func (m *Manager) SetMaxTokens(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxTokens = n
}

// OpenChannels opens a channel for every chunk that has no annotation and no
// registered channel. The registry check and the registration happen under
// one lock, so two near-simultaneous triggers cannot both open a channel for
// the same chunk.
func (m *Manager) OpenChannels() {
	for _, chunkID := range m.session.Unannotated() {
		m.mu.Lock()
		goal := m.goal
		m.mu.Unlock()
		m.openChannel(chunkID, goal)
	}
}

func (m *Manager) openChannel(chunkID int, goal string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if existing, ok := m.channels[chunkID]; ok && !existing.isClosed() {
		m.mu.Unlock()
		return
	}
	// A closed entry still in the registry belongs to a channel that is
	// winding down (for instance after a document reload); replace it.
	ch := &channel{goal: goal, maxTokens: m.maxTokens, expect: 1}
	m.channels[chunkID] = ch
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(chunkID, ch)
}

// run drives one channel: wait for an admission slot, dial, then consume
// messages until the annotation is complete or the channel dies.
func (m *Manager) run(chunkID int, ch *channel) {
	defer m.wg.Done()
	defer m.unregister(chunkID, ch)

	select {
	case m.sem <- struct{}{}:
	case <-m.ctx.Done():
		return
	}
	defer func() { <-m.sem }()

	if ch.isClosed() {
		// Closed while queued behind the admission cap; nothing to dial.
		return
	}

	conn, err := m.client.DialChunk(m.ctx, chunkID, ch.goal, ch.maxTokens)
	if err != nil {
		log.Printf("stream: chunk %d: %v", chunkID, err)
		return
	}
	if !ch.attach(conn) {
		// Closed while dialing (document replaced or manager shut down).
		conn.Close()
		return
	}
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("stream: chunk %d channel read: %v", chunkID, err)
			}
			return
		}
		if m.session.ApplyMessage(chunkID, raw) != nil {
			// Malformed message dropped; the channel stays open and a later
			// valid message is still accepted.
			continue
		}
		if !ch.settle() {
			// Annotation received, nothing further expected: release the
			// channel.
			return
		}
	}
}

// Refine sends a replacement goal over a chunk's open channel; the backend
// answers with a new annotation that replaces the current one. With no
// connected channel for the chunk (none registered, or one still queued
// behind the admission cap or mid-dial), a fresh channel carrying the new
// goal is opened instead.
func (m *Manager) Refine(chunkID int, goal string) error {
	m.mu.Lock()
	ch, ok := m.channels[chunkID]
	m.mu.Unlock()
	if ok {
		sent, err := ch.refine(goal)
		if err != nil {
			return err
		}
		if sent {
			return nil
		}
		// Registered but not connected yet; close it so the replacement below
		// takes over its registry slot.
		ch.close()
	}
	m.openChannel(chunkID, goal)
	return nil
}

// Close shuts every channel and waits for their goroutines to finish.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.closeAllChannels()
	m.wg.Wait()
}

// OpenCount reports how many channels are currently registered.
func (m *Manager) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels)
}

// Wait blocks until every registered channel has been released.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// unregister removes the channel's registry entry, but only if the entry is
// still this channel: after a document reload the slot may already belong to
// the replacement channel for the same chunk id.
func (m *Manager) unregister(chunkID int, ch *channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.channels[chunkID] == ch {
		delete(m.channels, chunkID)
	}
}

func (m *Manager) closeAllChannels() {
	m.mu.Lock()
	channels := make([]*channel, 0, len(m.channels))
	for _, ch := range m.channels {
		channels = append(channels, ch)
	}
	m.mu.Unlock()

	for _, ch := range channels {
		ch.close()
	}
}

// attach records the dialed connection; it reports false if the channel was
// closed while the dial was in flight.
func (c *channel) attach(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.conn = conn
	return true
}

// settle accounts for one received annotation and reports whether the
// channel should stay open for a pending refinement.
func (c *channel) settle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expect > 0 {
		c.expect--
	}
	return c.expect > 0
}

// refine sends the replacement goal if the channel has a live connection. It
// reports false, with no error, when the channel is closed or has not
// finished dialing; the caller reopens in that case.
func (c *channel) refine(goal string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil {
		return false, nil
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(goal)); err != nil {
		return false, fmt.Errorf("stream: sending refinement: %w", err)
	}
	c.expect++
	return true, nil
}

func (c *channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *channel) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn != nil {
		c.conn.Close()
	}
}
