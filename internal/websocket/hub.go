package websocket

import "log"

// Hub управляет множеством активных клиентов.
// Регистрация и отписка сериализуются через каналы, поэтому
// обработчик отключения вызывается строго по одному разу на клиента.
type Hub struct {
	// Зарегистрированные клиенты
	clients map[*Client]struct{}

	// Канал регистрации клиентов
	register chan *Client

	// Канал отписки клиентов
	unregister chan *Client

	// Сигнал остановки хаба
	done chan struct{}

	// Метрики хаба
	metrics *HubMetrics

	// Конфигурация создаваемых клиентов
	clientConfig ClientConfig

	// Обработчик отключения клиента (устанавливается сервисным слоем)
	onDisconnect func(client *Client)
}

// NewHub создаёт новый хаб с конфигурацией клиентов по умолчанию.
func NewHub() *Hub {
	return NewHubWithConfig(DefaultClientConfig())
}

// NewHubWithConfig создаёт новый хаб с указанной конфигурацией клиентов.
func NewHubWithConfig(clientConfig ClientConfig) *Hub {
	return &Hub{
		clients:      make(map[*Client]struct{}),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		metrics:      NewHubMetrics(),
		clientConfig: clientConfig,
	}
}

// SetDisconnectHandler устанавливает обработчик отключения клиента.
// Должен быть вызван до запуска Run.
func (h *Hub) SetDisconnectHandler(handler func(client *Client)) {
	h.onDisconnect = handler
}

// ClientConfig возвращает конфигурацию для новых клиентов этого хаба.
func (h *Hub) ClientConfig() ClientConfig {
	return h.clientConfig
}

// Metrics возвращает сборщик метрик хаба.
func (h *Hub) Metrics() *HubMetrics {
	return h.metrics
}

// Run запускает основной цикл хаба. Должен выполняться в отдельной горутине.
func (h *Hub) Run() {
	log.Printf("[Hub] Started")
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.metrics.ConnectionOpened()
			log.Printf("[Hub] Client registered: %s (active: %d)", client.ConnectionID, len(h.clients))

		case client := <-h.unregister:
			h.handleUnregister(client)

		case <-h.done:
			log.Printf("[Hub] Stopping, closing %d client(s)", len(h.clients))
			for client := range h.clients {
				client.CloseSend()
				delete(h.clients, client)
			}
			return
		}
	}
}

// handleUnregister снимает клиента с регистрации и уведомляет сервисный слой.
// Вызов обработчика выполняется синхронно в цикле хаба, что сериализует
// обработку отключений.
func (h *Hub) handleUnregister(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	client.CloseSend()
	h.metrics.ConnectionClosed()
	log.Printf("[Hub] Client unregistered: %s (active: %d)", client.ConnectionID, len(h.clients))

	if h.onDisconnect != nil {
		h.onDisconnect(client)
	}
}

// Stop останавливает цикл хаба и закрывает все клиентские каналы.
func (h *Hub) Stop() {
	close(h.done)
}

// ClientCount возвращает количество активных соединений.
func (h *Hub) ClientCount() int64 {
	return h.metrics.ActiveConnections()
}
