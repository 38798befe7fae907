package websocket

import (
	"encoding/json"
	"fmt"
	"log"
)

// Event представляет конверт входящего сообщения.
// Сообщения имеют плоскую структуру, поэтому из конверта
// извлекается только поле type, а полный кадр передаётся обработчику.
type Event struct {
	Type string `json:"type"`
}

// Manager маршрутизирует входящие сообщения к зарегистрированным обработчикам.
type Manager struct {
	// Обработчики по типу сообщения.
	// Обработчик получает полный исходный кадр и клиента-отправителя.
	messageHandlers map[string]func(raw json.RawMessage, client *Client) error

	metrics *HubMetrics
}

// NewManager создаёт новый менеджер сообщений.
func NewManager(metrics *HubMetrics) *Manager {
	return &Manager{
		messageHandlers: make(map[string]func(raw json.RawMessage, client *Client) error),
		metrics:         metrics,
	}
}

// RegisterHandler регистрирует обработчик для указанного типа сообщения.
// Регистрация выполняется при старте, до запуска насосов клиентов.
func (m *Manager) RegisterHandler(messageType string, handler func(raw json.RawMessage, client *Client) error) {
	m.messageHandlers[messageType] = handler
	log.Printf("[Manager] Registered handler for message type: %s", messageType)
}

// HandleMessage разбирает конверт входящего кадра и передаёт его обработчику.
// Некорректный JSON и неизвестные типы не считаются фатальными:
// клиенту отправляется сообщение об ошибке, соединение остаётся открытым.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("[Manager] Malformed message from %s: %v", client.ConnectionID, err)
		SendErrorToClient(client, "malformed message")
		return nil
	}

	if event.Type == "" {
		SendErrorToClient(client, "message type is required")
		return nil
	}

	if m.metrics != nil {
		m.metrics.MessageReceived(event.Type)
	}

	handler, ok := m.messageHandlers[event.Type]
	if !ok {
		log.Printf("[Manager] Unknown message type %q from %s", event.Type, client.ConnectionID)
		SendErrorToClient(client, fmt.Sprintf("unknown message type: %s", event.Type))
		return nil
	}

	return handler(json.RawMessage(message), client)
}

// SendErrorToClient отправляет клиенту сообщение об ошибке.
func SendErrorToClient(client *Client, message string) {
	if err := client.SendEvent(ErrorMessage{Type: ERROR, Message: message}); err != nil {
		log.Printf("[Manager] Failed to send error to %s: %v", client.ConnectionID, err)
	}
}
