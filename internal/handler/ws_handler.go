package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yourusername/quizroom-api/internal/handler/dto"
	"github.com/yourusername/quizroom-api/internal/service"
	ws "github.com/yourusername/quizroom-api/internal/websocket"
)

// Настройки для WebSocket соединений
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Пропускаем любой origin: внешняя авторизация здесь не используется
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	EnableCompression: true,
}

// WSHandler обрабатывает WebSocket соединения и маршрутизирует
// сообщения комнатного протокола в сервис комнат.
type WSHandler struct {
	hub         *ws.Hub
	wsManager   *ws.Manager
	roomService *service.RoomService
}

// NewWSHandler создает новый обработчик WebSocket и регистрирует
// обработчики всех типов сообщений.
func NewWSHandler(hub *ws.Hub, wsManager *ws.Manager, roomService *service.RoomService) *WSHandler {
	handler := &WSHandler{
		hub:         hub,
		wsManager:   wsManager,
		roomService: roomService,
	}
	handler.registerMessageHandlers()
	return handler
}

// HandleConnection обрабатывает входящее WebSocket соединение
func (h *WSHandler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Upgrade failed: %v", err)
		return
	}

	client := ws.NewClientWithConfig(h.hub, conn, h.hub.ClientConfig())
	log.Printf("[WSHandler] Connection established: %s (remote=%s)", client.ConnectionID, c.ClientIP())

	client.StartPumps(h.wsManager.HandleMessage)
}

// registerMessageHandlers регистрирует обработчики сообщений комнатного протокола.
// Ошибки обработки отправляются клиенту и не разрывают соединение.
func (h *WSHandler) registerMessageHandlers() {
	h.wsManager.RegisterHandler(ws.JOIN, func(raw json.RawMessage, client *ws.Client) error {
		var req dto.JoinRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			ws.SendErrorToClient(client, "invalid join message")
			return nil
		}
		if err := h.roomService.HandleJoin(client, req.QuizCode, req.Name); err != nil {
			ws.SendErrorToClient(client, err.Error())
		}
		return nil
	})

	h.wsManager.RegisterHandler(ws.ANSWER, func(raw json.RawMessage, client *ws.Client) error {
		var req dto.AnswerRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			ws.SendErrorToClient(client, "invalid answer message")
			return nil
		}
		if err := req.Validate(); err != nil {
			ws.SendErrorToClient(client, err.Error())
			return nil
		}
		if err := h.roomService.HandleAnswer(client, req.QuestionID, *req.ChoiceIndex); err != nil {
			ws.SendErrorToClient(client, err.Error())
		}
		return nil
	})

	h.wsManager.RegisterHandler(ws.HOST_CREATE, func(raw json.RawMessage, client *ws.Client) error {
		var req dto.CreateRoomRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			ws.SendErrorToClient(client, "invalid create message")
			return nil
		}
		if err := h.roomService.HandleHostCreate(client, req.ToEntity()); err != nil {
			ws.SendErrorToClient(client, err.Error())
		}
		return nil
	})

	h.wsManager.RegisterHandler(ws.HOST_START, func(raw json.RawMessage, client *ws.Client) error {
		if err := h.roomService.HandleHostStart(client); err != nil {
			ws.SendErrorToClient(client, err.Error())
		}
		return nil
	})

	h.wsManager.RegisterHandler(ws.HOST_NEXT, func(raw json.RawMessage, client *ws.Client) error {
		if err := h.roomService.HandleHostNext(client); err != nil {
			ws.SendErrorToClient(client, err.Error())
		}
		return nil
	})

	h.wsManager.RegisterHandler(ws.HOST_END, func(raw json.RawMessage, client *ws.Client) error {
		if err := h.roomService.HandleHostEnd(client); err != nil {
			ws.SendErrorToClient(client, err.Error())
		}
		return nil
	})

	h.wsManager.RegisterHandler(ws.HOST_RESUME, func(raw json.RawMessage, client *ws.Client) error {
		var req dto.ResumeRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			ws.SendErrorToClient(client, "invalid resume message")
			return nil
		}
		if err := h.roomService.HandleHostResume(client, req.QuizCode); err != nil {
			ws.SendErrorToClient(client, err.Error())
		}
		return nil
	})
}
