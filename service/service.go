// Package service runs conversion batches on behalf of remote clients and
// streams their progress over websockets.
package service

import (
	"sync"
	"time"

	pbr "github.com/Rendszerguru/Arma-Legacy2PBR"
	"github.com/gorilla/websocket"
	"github.com/kpango/glg"
)

// Possible event types.
const (
	EventSet  = "set"
	EventDone = "done"
)

// Event is sent to every connected client after each texture set and once
// the batch has finished.
type Event struct {
	Type string     `json:"type"`
	Set  *SetResult `json:"set,omitempty"`
	Run  *Summary   `json:"run,omitempty"`
}

// SetResult is the JSON form of pbr.SetResult.
type SetResult struct {
	Index    int      `json:"index"`
	BaseName string   `json:"baseName"`
	Inputs   []string `json:"inputs"`
	Outputs  []string `json:"outputs"`
	Error    string   `json:"error,omitempty"`
}

// Summary is the JSON form of a finished batch.
type Summary struct {
	InputDir string      `json:"inputDir"`
	Started  time.Time   `json:"started"`
	Duration string      `json:"duration"`
	Sets     []SetResult `json:"sets"`
	Moved    []string    `json:"moved"`
	Failed   int         `json:"failed"`
	Error    string      `json:"error,omitempty"`
}

func newSetResult(r pbr.SetResult) SetResult {
	res := SetResult{
		Index:    r.Index,
		BaseName: r.BaseName,
		Inputs:   r.Inputs[:],
		Outputs:  r.Outputs,
	}
	if r.Err != nil {
		res.Error = r.Err.Error()
	}
	return res
}

// Client is a websocket connected client.
type Client struct {
	mutex *sync.Mutex
	conn  *websocket.Conn
}

// Manager serializes conversion batches and keeps the last summary.
type Manager struct {
	runMutex *sync.Mutex

	clientsMutex *sync.Mutex
	clients      []*Client

	lastMutex *sync.Mutex
	last      *Summary

	baseOptions pbr.Options
}

// NewManager returns a manager that converts with baseOptions. The
// Observer of baseOptions is replaced by the manager's own.
func NewManager(baseOptions pbr.Options) *Manager {
	return &Manager{
		runMutex:     new(sync.Mutex),
		clientsMutex: new(sync.Mutex),
		lastMutex:    new(sync.Mutex),
		baseOptions:  baseOptions,
	}
}

// Convert runs a batch over inputDir, or the default input directory if
// empty. Only one batch runs at a time; concurrent calls wait their turn.
// The returned error is the batch error of pbr.Convert, also recorded in
// the summary.
func (m *Manager) Convert(inputDir string) (*Summary, error) {
	m.runMutex.Lock()
	defer m.runMutex.Unlock()

	opts := m.baseOptions
	if inputDir != "" {
		opts.InputDir = inputDir
	}

	summary := &Summary{
		InputDir: opts.InputDir,
		Started:  time.Now(),
		Sets:     []SetResult{},
	}

	opts.Observer = func(r pbr.SetResult) {
		res := newSetResult(r)
		summary.Sets = append(summary.Sets, res)
		m.Broadcast(Event{Type: EventSet, Set: &res})
	}

	glg.Infof("pbr service: converting %s", opts.InputDir)

	report, err := pbr.Convert(opts)
	if report != nil {
		summary.Moved = report.Moved
		summary.Failed = report.Failed()
	}
	if err != nil {
		summary.Error = err.Error()
	}
	summary.Duration = time.Since(summary.Started).String()

	m.lastMutex.Lock()
	m.last = summary
	m.lastMutex.Unlock()

	m.Broadcast(Event{Type: EventDone, Run: summary})

	return summary, err
}

// LastSummary returns the summary of the last finished batch.
func (m *Manager) LastSummary() (*Summary, bool) {
	m.lastMutex.Lock()
	defer m.lastMutex.Unlock()

	return m.last, m.last != nil
}

// NumClients returns the number of connected clients.
func (m *Manager) NumClients() int {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	return len(m.clients)
}

// Broadcast sends ev to every connected client.
func (m *Manager) Broadcast(ev Event) {
	m.clientsMutex.Lock()
	clientCopy := make([]*Client, len(m.clients))
	copy(clientCopy, m.clients)
	m.clientsMutex.Unlock()

	for _, client := range clientCopy {
		client.mutex.Lock()
		err := client.conn.WriteJSON(&ev)
		client.mutex.Unlock()
		if err != nil {
			glg.Warnf("pbr service: failed to send event: %v", err)
		}
	}
}

// HandleConn registers conn as a client and blocks until it disconnects.
// Messages from the client are ignored.
func (m *Manager) HandleConn(conn *websocket.Conn) {
	m.clientsMutex.Lock()
	client := &Client{
		mutex: new(sync.Mutex),
		conn:  conn,
	}
	m.clients = append(m.clients, client)
	m.clientsMutex.Unlock()

	defer func() {
		m.clientsMutex.Lock()
		defer m.clientsMutex.Unlock()

		for i, c := range m.clients {
			if c == client {
				m.clients = append(m.clients[:i], m.clients[i+1:]...)
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			glg.Infof("pbr service: client disconnected: %v", err)
			return
		}
	}
}
