package notify

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/logfields"
	"git.home.luguber.info/inful/hotbundle/internal/metrics"
)

// Conn is a registered client connection.
type Conn interface {
	ID() string
	Send(data []byte) error
}

// Sink receives every broadcast message in addition to registered connections.
type Sink interface {
	Publish(msg Message) error
}

// Hub is the connection registry and broadcaster.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]Conn
	sinks    []Sink
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns:    map[string]Conn{},
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
}

// WithRecorder sets the metrics recorder.
func (h *Hub) WithRecorder(r metrics.Recorder) *Hub {
	if r != nil {
		h.recorder = r
	}
	return h
}

// WithLogger sets the logger.
func (h *Hub) WithLogger(l *slog.Logger) *Hub {
	if l != nil {
		h.logger = l
	}
	return h
}

// AddSink attaches an additional message consumer.
func (h *Hub) AddSink(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, s)
}

// Register adds c to the registry.
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	h.conns[c.ID()] = c
	n := len(h.conns)
	h.mu.Unlock()
	h.recorder.SetConnectedClients(n)
	h.logger.Debug("Client connected", logfields.Client(c.ID()), logfields.Clients(n))
}

// Unregister removes c. Unknown connections are ignored.
func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	_, ok := h.conns[c.ID()]
	delete(h.conns, c.ID())
	n := len(h.conns)
	h.mu.Unlock()
	if !ok {
		return
	}
	h.recorder.SetConnectedClients(n)
	h.logger.Debug("Client disconnected", logfields.Client(c.ID()), logfields.Clients(n))
}

// Clients returns the ids of registered connections, sorted.
func (h *Hub) Clients() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends msg to every connection registered at call time. Send
// failures are logged and counted; the connection stays registered until its
// transport reports the close. It returns the number of successful sends.
func (h *Hub) Broadcast(msg Message) int {
	data, err := msg.Encode()
	if err != nil {
		h.logger.Error("Cannot encode update message", logfields.Error(err))
		return 0
	}

	h.mu.RLock()
	snapshot := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		snapshot = append(snapshot, c)
	}
	sinks := append([]Sink(nil), h.sinks...)
	h.mu.RUnlock()

	if len(snapshot) > 0 {
		h.logger.Info(fmt.Sprintf("Send reload to %d client(s)", len(snapshot)),
			logfields.Clients(len(snapshot)), logfields.Op(msg.Type))
	}
	h.recorder.IncBroadcast()

	sent := 0
	for _, c := range snapshot {
		if err := c.Send(data); err != nil {
			h.recorder.IncDeliveryFailure()
			derr := ferrors.DeliveryError("failed to deliver update").
				WithCause(err).WithContext("client", c.ID()).Build()
			h.logger.Warn("Update delivery failed", logfields.Client(c.ID()), logfields.Error(derr))
			continue
		}
		sent++
	}
	for _, s := range sinks {
		if err := s.Publish(msg); err != nil {
			h.recorder.IncDeliveryFailure()
			h.logger.Warn("Update sink publish failed",
				logfields.Error(ferrors.DeliveryError("sink publish failed").WithCause(err).Build()))
		}
	}
	return sent
}
