package roommanager

import (
	ws "github.com/yourusername/quizroom-api/internal/websocket"
)

// BuildSync собирает снимок состояния комнаты для текущей фазы.
// Снимок отправляется ведущему при создании комнаты и при восстановлении
// контроля после переподключения.
func BuildSync(room *Room) ws.SyncMessage {
	room.mu.Lock()
	defer room.mu.Unlock()

	data := ws.SyncData{QuizCode: room.Code}

	switch room.phase {
	case PhaseLobby:
		data.Players = room.playerNamesLocked()

	case PhaseQuestion:
		question := room.quiz.Questions[room.currentIndex]
		remaining := room.remainingLocked()
		data.Players = room.playerNamesLocked()
		data.Question = &question
		data.Index = room.currentIndex + 1
		data.Total = len(room.quiz.Questions)
		data.Remaining = &remaining

	case PhaseResults:
		question := room.quiz.Questions[room.currentIndex]
		correctIndex := question.CorrectIndex
		data.Players = room.playerNamesLocked()
		data.Index = room.currentIndex + 1
		data.Total = len(room.quiz.Questions)
		data.CorrectIndex = &correctIndex
		data.Distribution = room.distributionLocked()
		data.Scores = room.scoresByNameLocked()

	case PhaseLeaderboard:
		data.Rankings = room.rankingsLocked()

	case PhaseEnded:
		// Только код комнаты
	}

	return ws.SyncMessage{
		Type:  ws.SYNC,
		Phase: string(room.phase),
		Data:  data,
	}
}
