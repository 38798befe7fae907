package websocket

import (
	"sync"
	"sync/atomic"
	"time"
)

// HubMetrics собирает метрики работы хаба.
type HubMetrics struct {
	totalConnections  int64
	activeConnections int64
	messagesSent      int64
	messagesReceived  int64
	sendErrors        int64
	startTime         time.Time

	mu                sync.Mutex
	messageTypeCounts map[string]int64
}

// NewHubMetrics создаёт новый сборщик метрик.
func NewHubMetrics() *HubMetrics {
	return &HubMetrics{
		startTime:         time.Now(),
		messageTypeCounts: make(map[string]int64),
	}
}

// ConnectionOpened регистрирует новое соединение.
func (m *HubMetrics) ConnectionOpened() {
	atomic.AddInt64(&m.totalConnections, 1)
	atomic.AddInt64(&m.activeConnections, 1)
}

// ConnectionClosed регистрирует закрытие соединения.
func (m *HubMetrics) ConnectionClosed() {
	atomic.AddInt64(&m.activeConnections, -1)
}

// MessageSent регистрирует отправленное сообщение.
func (m *HubMetrics) MessageSent() {
	atomic.AddInt64(&m.messagesSent, 1)
}

// MessageReceived регистрирует полученное сообщение указанного типа.
func (m *HubMetrics) MessageReceived(messageType string) {
	atomic.AddInt64(&m.messagesReceived, 1)
	m.mu.Lock()
	m.messageTypeCounts[messageType]++
	m.mu.Unlock()
}

// SendError регистрирует ошибку отправки.
func (m *HubMetrics) SendError() {
	atomic.AddInt64(&m.sendErrors, 1)
}

// ActiveConnections возвращает текущее количество активных соединений.
func (m *HubMetrics) ActiveConnections() int64 {
	return atomic.LoadInt64(&m.activeConnections)
}

// Snapshot возвращает текущие значения всех метрик.
func (m *HubMetrics) Snapshot() map[string]interface{} {
	m.mu.Lock()
	typeCounts := make(map[string]int64, len(m.messageTypeCounts))
	for k, v := range m.messageTypeCounts {
		typeCounts[k] = v
	}
	m.mu.Unlock()

	return map[string]interface{}{
		"total_connections":   atomic.LoadInt64(&m.totalConnections),
		"active_connections":  atomic.LoadInt64(&m.activeConnections),
		"messages_sent":       atomic.LoadInt64(&m.messagesSent),
		"messages_received":   atomic.LoadInt64(&m.messagesReceived),
		"send_errors":         atomic.LoadInt64(&m.sendErrors),
		"message_type_counts": typeCounts,
		"uptime_seconds":      int64(time.Since(m.startTime).Seconds()),
	}
}
