package service

import (
	"fmt"
	"log"

	"github.com/yourusername/quizroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizroom-api/internal/pkg/errors"
	"github.com/yourusername/quizroom-api/internal/service/roommanager"
)

// RoomService — фасад над менеджером комнат: связывает входящие сообщения
// клиентов с операциями над комнатами и следит за привязкой соединений.
type RoomService struct {
	registry *roommanager.Registry
	routing  *roommanager.Routing
}

// NewRoomService создаёт сервис комнат с указанной конфигурацией.
func NewRoomService(config *roommanager.Config) *RoomService {
	return &RoomService{
		registry: roommanager.NewRegistry(config),
		routing:  roommanager.NewRouting(),
	}
}

// HandleHostCreate создаёт комнату для викторины ведущего и отправляет ему
// снимок состояния (в том числе код комнаты).
func (s *RoomService) HandleHostCreate(conn roommanager.Conn, quiz *entity.Quiz) error {
	if err := quiz.Validate(); err != nil {
		return err
	}
	if _, isHost := s.routing.HostRoom(conn.ID()); isHost {
		return fmt.Errorf("%w: connection already hosts a room", apperrors.ErrValidation)
	}
	if _, isPlayer := s.routing.PlayerRef(conn.ID()); isPlayer {
		return fmt.Errorf("%w: connection already joined a room as player", apperrors.ErrValidation)
	}

	room, err := s.registry.CreateRoom(quiz, conn)
	if err != nil {
		return err
	}
	s.routing.SetHost(conn.ID(), room)

	return conn.SendEvent(roommanager.BuildSync(room))
}

// HandleJoin присоединяет игрока к комнате по коду.
func (s *RoomService) HandleJoin(conn roommanager.Conn, quizCode, name string) error {
	if name == "" {
		return fmt.Errorf("%w: player name is required", apperrors.ErrValidation)
	}
	if _, isPlayer := s.routing.PlayerRef(conn.ID()); isPlayer {
		return fmt.Errorf("%w: connection already joined a room", apperrors.ErrValidation)
	}
	if _, isHost := s.routing.HostRoom(conn.ID()); isHost {
		return fmt.Errorf("%w: connection already hosts a room", apperrors.ErrValidation)
	}

	room, err := s.registry.Lookup(quizCode)
	if err != nil {
		return err
	}

	player, err := room.AddPlayer(name, conn)
	if err != nil {
		return err
	}
	s.routing.AddPlayer(conn.ID(), room, player.ID)
	return nil
}

// HandleAnswer обрабатывает ответ игрока на текущий вопрос.
func (s *RoomService) HandleAnswer(conn roommanager.Conn, questionID string, choiceIndex int) error {
	ref, ok := s.routing.PlayerRef(conn.ID())
	if !ok {
		return apperrors.ErrNoRoomContext
	}
	return roommanager.ProcessAnswer(ref.Room, ref.PlayerID, questionID, choiceIndex)
}

// HandleHostStart запускает викторину в комнате ведущего.
func (s *RoomService) HandleHostStart(conn roommanager.Conn) error {
	room, ok := s.routing.HostRoom(conn.ID())
	if !ok {
		return apperrors.ErrNoRoomContext
	}
	if !room.Start() {
		// Старт не из лобби или без игроков — молча игнорируем
		log.Printf("[RoomService] Start ignored for room %s (phase=%s, players=%d)", room.Code, room.Phase(), room.PlayerCount())
	}
	return nil
}

// HandleHostNext переводит комнату ведущего к следующему вопросу.
// Команда действует только из фазы результатов; в остальных фазах,
// включая идущий вопрос, она игнорируется.
func (s *RoomService) HandleHostNext(conn roommanager.Conn) error {
	room, ok := s.routing.HostRoom(conn.ID())
	if !ok {
		return apperrors.ErrNoRoomContext
	}
	room.Advance()
	return nil
}

// HandleHostEnd завершает викторину в комнате ведущего и удаляет комнату.
// Команда действует только из фазы таблицы лидеров.
func (s *RoomService) HandleHostEnd(conn roommanager.Conn) error {
	room, ok := s.routing.HostRoom(conn.ID())
	if !ok {
		return apperrors.ErrNoRoomContext
	}
	if room.End() {
		s.destroyRoom(room)
	}
	return nil
}

// HandleHostResume восстанавливает контроль ведущего над комнатой после
// переподключения: новое соединение становится ведущим и получает
// снимок текущей фазы.
func (s *RoomService) HandleHostResume(conn roommanager.Conn, quizCode string) error {
	room, err := s.registry.Lookup(quizCode)
	if err != nil {
		return err
	}

	if _, isPlayer := s.routing.PlayerRef(conn.ID()); isPlayer {
		return fmt.Errorf("%w: connection already joined a room as player", apperrors.ErrValidation)
	}
	if hosted, isHost := s.routing.HostRoom(conn.ID()); isHost && hosted != room {
		return fmt.Errorf("%w: connection already hosts another room", apperrors.ErrValidation)
	}

	s.routing.RemoveHostFor(room)
	room.SetHost(conn)
	s.routing.SetHost(conn.ID(), room)
	log.Printf("[RoomService] Host resumed control of room %s (conn=%s)", room.Code, conn.ID())

	return conn.SendEvent(roommanager.BuildSync(room))
}

// HandleDisconnect обрабатывает обрыв соединения.
// Отключение ведущего закрывает комнату; отключение игрока удаляет его
// из комнаты, а ведущий получает обновлённый снимок состояния.
func (s *RoomService) HandleDisconnect(conn roommanager.Conn) {
	if ref, ok := s.routing.RemovePlayer(conn.ID()); ok {
		if ref.Room.RemovePlayer(ref.PlayerID) {
			if host := ref.Room.Host(); host != nil {
				if err := host.SendEvent(roommanager.BuildSync(ref.Room)); err != nil {
					log.Printf("[RoomService] Host sync after player disconnect failed: %v", err)
				}
			}
		}
		return
	}

	if room, ok := s.routing.RemoveHost(conn.ID()); ok {
		// Ведущий может успеть восстановить контроль с другого соединения
		if room.Host() != nil && room.Host().ID() != conn.ID() {
			return
		}
		room.Close("host disconnected")
		s.destroyRoom(room)
	}
}

// RoomCount возвращает количество активных комнат.
func (s *RoomService) RoomCount() int {
	return s.registry.Count()
}

func (s *RoomService) destroyRoom(room *roommanager.Room) {
	s.registry.Destroy(room)
	s.routing.RemoveRoom(room)
}
