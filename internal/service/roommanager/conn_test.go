package roommanager

import (
	"sync"
	"time"
)

// fakeConn — заглушка соединения, записывающая все отправленные события.
type fakeConn struct {
	id     string
	mu     sync.Mutex
	events []interface{}
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (f *fakeConn) ID() string {
	return f.id
}

func (f *fakeConn) SendEvent(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, v)
	return nil
}

// Events возвращает копию всех записанных событий.
func (f *fakeConn) Events() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := make([]interface{}, len(f.events))
	copy(events, f.events)
	return events
}

// LastEvent возвращает последнее записанное событие (nil, если событий не было).
func (f *fakeConn) LastEvent() interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	return f.events[len(f.events)-1]
}

// Reset очищает записанные события.
func (f *fakeConn) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

// testConfig возвращает конфигурацию, в которой тикер обратного отсчёта
// никогда не срабатывает сам: тики в тестах вызываются вручную.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.TickInterval = time.Hour
	return cfg
}
