package daemon

import (
	"sync/atomic"
	"time"
)

// Metrics tracks daemon statistics using atomic operations for thread-safety
type Metrics struct {
	MessagesSent     atomic.Int64
	MessagesDropped  atomic.Int64
	BatchesReceived  atomic.Int64
	SnapshotsSaved   atomic.Int64
	ConnectedClients atomic.Int32
	Rooms            atomic.Int32
	StartTime        time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// IncMessagesSent increments the messages sent counter
func (m *Metrics) IncMessagesSent() {
	m.MessagesSent.Add(1)
}

// IncMessagesDropped counts messages that could not be queued for a slow client
func (m *Metrics) IncMessagesDropped() {
	m.MessagesDropped.Add(1)
}

// IncBatchesReceived increments the batches received counter
func (m *Metrics) IncBatchesReceived() {
	m.BatchesReceived.Add(1)
}

// IncSnapshotsSaved increments the snapshots saved counter
func (m *Metrics) IncSnapshotsSaved() {
	m.SnapshotsSaved.Add(1)
}

// SetConnectedClients sets the current connected clients count
func (m *Metrics) SetConnectedClients(count int32) {
	m.ConnectedClients.Store(count)
}

// SetRooms sets the current open rooms count
func (m *Metrics) SetRooms(count int32) {
	m.Rooms.Store(count)
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	MessagesSent     int64     `json:"messages_sent"`
	MessagesDropped  int64     `json:"messages_dropped"`
	BatchesReceived  int64     `json:"batches_received"`
	SnapshotsSaved   int64     `json:"snapshots_saved"`
	ConnectedClients int32     `json:"connected_clients"`
	Rooms            int32     `json:"rooms"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		MessagesSent:     m.MessagesSent.Load(),
		MessagesDropped:  m.MessagesDropped.Load(),
		BatchesReceived:  m.BatchesReceived.Load(),
		SnapshotsSaved:   m.SnapshotsSaved.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		Rooms:            m.Rooms.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).Round(time.Second).String(),
	}
}
