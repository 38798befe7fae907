package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrRoomNotFound используется, когда комната с указанным кодом не существует.
	ErrRoomNotFound = errors.New("room not found")

	// ErrNotInLobby используется при попытке присоединиться к комнате,
	// которая уже покинула фазу ожидания.
	ErrNotInLobby = errors.New("room is not in lobby phase")

	// ErrRoomFull используется, когда достигнут лимит игроков в комнате.
	ErrRoomFull = errors.New("room is full")

	// ErrNoRoomContext используется, когда соединение не привязано ни к одной комнате.
	ErrNoRoomContext = errors.New("connection has no room context")

	// ErrPlayerNotFound используется, когда игрок не найден в комнате.
	ErrPlayerNotFound = errors.New("player not found in room")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")
)
