package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	// Уменьшено до 30 секунд для быстрого обнаружения отключений
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 8192

	// Размер буфера по умолчанию для каналов отправки сообщений клиенту
	defaultClientBufferSize = 128

	// Максимальное количество предупреждений о переполнении буфера до отключения
	maxBufferWarnings = 3
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// ClientConfig содержит настройки для клиента
type ClientConfig struct {
	// BufferSize определяет размер буфера канала отправки сообщений
	BufferSize int

	// PingInterval определяет интервал между ping-сообщениями
	PingInterval time.Duration

	// PongWait определяет время ожидания pong-ответа
	PongWait time.Duration

	// WriteWait определяет тайм-аут для записи сообщений
	WriteWait time.Duration

	// MaxMessageSize определяет максимальный размер сообщения
	MaxMessageSize int64
}

// DefaultClientConfig возвращает конфигурацию клиента по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BufferSize:     defaultClientBufferSize,
		PingInterval:   pingPeriod,
		PongWait:       pongWait,
		WriteWait:      writeWait,
		MaxMessageSize: maxMessageSize,
	}
}

// Client является посредником между WebSocket соединением и hub.
// Соединения анонимны: к конкретной комнате клиента привязывает
// сервисный слой по ConnectionID.
type Client struct {
	// Уникальный ID для каждого соединения
	ConnectionID string

	// Hub, к которому подключен клиент (может быть nil в тестах)
	hub *Hub

	// WebSocket соединение
	conn *websocket.Conn

	// Буферизованный канал для исходящих сообщений
	send chan []byte

	// Флаг, указывающий что канал send закрыт (для предотвращения panic)
	sendClosed atomic.Bool

	// Время последней активности клиента
	lastActivity time.Time

	// Конфигурация соединения
	config ClientConfig

	// Счетчик предупреждений о переполнении буфера
	bufferWarningCount int32
	bufferWarningMutex sync.Mutex
}

// NewClient создает нового клиента с конфигурацией по умолчанию
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return NewClientWithConfig(hub, conn, DefaultClientConfig())
}

// NewClientWithConfig создает нового клиента с указанной конфигурацией
func NewClientWithConfig(hub *Hub, conn *websocket.Conn, config ClientConfig) *Client {
	// Проверяем и исправляем недопустимые значения
	if config.BufferSize <= 0 {
		config.BufferSize = defaultClientBufferSize
	}
	if config.PingInterval <= 0 {
		config.PingInterval = pingPeriod
	}
	if config.PongWait <= 0 {
		config.PongWait = pongWait
	}
	if config.WriteWait <= 0 {
		config.WriteWait = writeWait
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = maxMessageSize
	}

	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, config.BufferSize),
		ConnectionID: uuid.New().String(),
		lastActivity: time.Now(),
		config:       config,
	}
}

// ID возвращает уникальный идентификатор соединения.
func (c *Client) ID() string {
	return c.ConnectionID
}

// Send ставит сообщение в очередь отправки без блокировки.
// Возвращает false, если буфер переполнен или канал уже закрыт.
func (c *Client) Send(message []byte) bool {
	if c.sendClosed.Load() {
		return false
	}

	// Закрытие канала могло произойти между проверкой и отправкой
	defer func() {
		recover()
	}()

	select {
	case c.send <- message:
		if c.hub != nil && c.hub.metrics != nil {
			c.hub.metrics.MessageSent()
		}
		return true
	default:
		newCount := c.incrementBufferWarningCount()
		log.Printf("[Client %s] Send buffer full (warning %d/%d)", c.ConnectionID, newCount, maxBufferWarnings)
		if c.hub != nil && c.hub.metrics != nil {
			c.hub.metrics.SendError()
		}
		if newCount >= maxBufferWarnings && c.conn != nil {
			// Клиент не вычитывает сообщения — разрываем соединение,
			// readPump снимет его с регистрации
			c.conn.Close()
		}
		return false
	}
}

// SendEvent сериализует значение в JSON и ставит его в очередь отправки.
func (c *Client) SendEvent(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if !c.Send(data) {
		return fmt.Errorf("client %s: send buffer full or closed", c.ConnectionID)
	}
	return nil
}

// readPump читает сообщения от клиента и передает их обработчику
func (c *Client) readPump(messageHandler func(message []byte, client *Client) error) {
	defer func() {
		log.Printf("WebSocket Client Read Pump STOPPED for ConnID: %s", c.ConnectionID)
		if c.hub != nil {
			c.hub.unregister <- c
		}
		c.conn.Close()
	}()

	// Настройка чтения сообщений
	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		c.lastActivity = time.Now()
		return nil
	})

	log.Printf("WebSocket Client Read Pump STARTED for ConnID: %s", c.ConnectionID)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WebSocket Client Connection Closed Normally (ConnID: %s): %v", c.ConnectionID, err)
			} else {
				log.Printf("WebSocket Client Read Error (ConnID: %s): %v", c.ConnectionID, err)
			}
			break // Выходим из цикла при любой ошибке чтения
		}

		c.lastActivity = time.Now()

		// Безопасный вызов обработчика с recover
		if handlerErr := safeHandleMessage(message, c, messageHandler); handlerErr != nil {
			// Если обработчик вернул ошибку, считаем ее фатальной для соединения
			log.Printf("WebSocket Client Handler Error (ConnID: %s): %v. Closing connection.", c.ConnectionID, handlerErr)
			break
		}

		// Сбрасываем счетчик предупреждений при получении любого сообщения от клиента
		c.resetBufferWarningCount()
	}
}

// safeHandleMessage - обертка для вызова обработчика с recover
// Возвращает ошибку, если обработчик вернул ошибку.
func safeHandleMessage(message []byte, client *Client, messageHandler func(message []byte, client *Client) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC recovered in message handler for ConnID: %s. Panic: %v\nStack trace:\n%s",
				client.ConnectionID, r, string(debug.Stack()))
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
	if messageHandler != nil {
		err = messageHandler(message, client)
	} else {
		log.Printf("Warning: No message handler registered for client %s", client.ConnectionID)
	}
	return err
}

// writePump отправляет сообщения клиенту из канала send
func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		log.Printf("WebSocket Client Write Pump STOPPED for ConnID: %s", c.ConnectionID)
	}()

	log.Printf("WebSocket Client Write Pump STARTED for ConnID: %s", c.ConnectionID)

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait)); err != nil {
				log.Printf("WebSocket Client SetWriteDeadline Error (ConnID: %s): %v", c.ConnectionID, err)
				return
			}

			if !ok {
				// Канал send закрыт хабом
				log.Printf("WebSocket Client Send Channel Closed (ConnID: %s)", c.ConnectionID)
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				log.Printf("WebSocket Client NextWriter Error (ConnID: %s): %v", c.ConnectionID, err)
				return
			}

			if _, err := w.Write(message); err != nil {
				log.Printf("WebSocket Client Write Error (ConnID: %s): %v", c.ConnectionID, err)
			}

			// Закрываем writer, чтобы отправить сообщение
			if err := w.Close(); err != nil {
				log.Printf("WebSocket Client Writer Close Error (ConnID: %s): %v", c.ConnectionID, err)
				return
			}

		case <-ticker.C:
			// Отправляем ping клиенту
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait)); err != nil {
				log.Printf("WebSocket Client SetWriteDeadline (Ping) Error (ConnID: %s): %v", c.ConnectionID, err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("WebSocket Client Ping Error (ConnID: %s): %v", c.ConnectionID, err)
				return
			}
		}
	}
}

// StartPumps регистрирует клиента в хабе и запускает горутины чтения и записи
func (c *Client) StartPumps(messageHandler func(message []byte, client *Client) error) {
	if c.hub != nil {
		c.hub.register <- c
	}

	go c.writePump()
	go c.readPump(messageHandler)
}

// incrementBufferWarningCount увеличивает счетчик предупреждений и возвращает новое значение
func (c *Client) incrementBufferWarningCount() int32 {
	c.bufferWarningMutex.Lock()
	defer c.bufferWarningMutex.Unlock()
	c.bufferWarningCount++
	return c.bufferWarningCount
}

// resetBufferWarningCount сбрасывает счетчик предупреждений
func (c *Client) resetBufferWarningCount() {
	c.bufferWarningMutex.Lock()
	defer c.bufferWarningMutex.Unlock()
	if c.bufferWarningCount > 0 {
		c.bufferWarningCount = 0
		log.Printf("[Client %s] Buffer warning count reset.", c.ConnectionID)
	}
}

// CloseSend безопасно закрывает канал send (только один раз)
// Использует atomic CompareAndSwap для предотвращения panic при повторном закрытии
// Возвращает true, если канал был закрыт этим вызовом, false если уже был закрыт
func (c *Client) CloseSend() bool {
	if c.sendClosed.CompareAndSwap(false, true) {
		close(c.send)
		return true
	}
	return false
}

// IsSendClosed проверяет, закрыт ли канал send
func (c *Client) IsSendClosed() bool {
	return c.sendClosed.Load()
}
