package websocket

import "github.com/yourusername/quizroom-api/internal/domain/entity"

// Типы входящих сообщений (клиент -> сервер).
const (
	// JOIN — игрок присоединяется к комнате по коду.
	JOIN = "join"
	// ANSWER — игрок отвечает на текущий вопрос.
	ANSWER = "answer"
	// HOST_CREATE — ведущий создаёт комнату с викториной.
	HOST_CREATE = "host:create"
	// HOST_START — ведущий запускает викторину.
	HOST_START = "host:start"
	// HOST_NEXT — ведущий переходит к следующему вопросу.
	HOST_NEXT = "host:next"
	// HOST_END — ведущий завершает викторину после таблицы лидеров.
	HOST_END = "host:end"
	// HOST_RESUME — ведущий восстанавливает контроль над комнатой после переподключения.
	HOST_RESUME = "host:resume"
)

// Типы исходящих сообщений (сервер -> клиент).
const (
	JOINED      = "joined"
	QUESTION    = "question"
	TICK        = "tick"
	RESULTS     = "results"
	LEADERBOARD = "leaderboard"
	ENDED       = "ended"
	ERROR       = "error"
	SYNC        = "sync"
)

// JoinedMessage отправляется при изменении состава лобби.
// PlayerID заполняется только для самого присоединившегося игрока.
type JoinedMessage struct {
	Type     string   `json:"type"`
	PlayerID string   `json:"playerId,omitempty"`
	Players  []string `json:"players"`
}

// QuestionMessage отправляется при показе нового вопроса.
// Номер вопроса считается с единицы.
type QuestionMessage struct {
	Type     string          `json:"type"`
	Question entity.Question `json:"question"`
	Index    int             `json:"index"`
	Total    int             `json:"total"`
}

// TickMessage отправляется каждую секунду с оставшимся временем.
type TickMessage struct {
	Type      string `json:"type"`
	Remaining int    `json:"remaining"`
}

// ResultsMessage отправляется после завершения вопроса.
type ResultsMessage struct {
	Type         string         `json:"type"`
	CorrectIndex int            `json:"correctIndex"`
	Distribution []int          `json:"distribution"`
	Scores       map[string]int `json:"scores"`
}

// RankingEntry — одна строка таблицы лидеров.
type RankingEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// LeaderboardMessage отправляется после последнего вопроса.
type LeaderboardMessage struct {
	Type     string         `json:"type"`
	Rankings []RankingEntry `json:"rankings"`
}

// EndedMessage отправляется при завершении викторины.
type EndedMessage struct {
	Type string `json:"type"`
}

// ErrorMessage отправляется клиенту при ошибке обработки его сообщения.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SyncMessage отправляется ведущему при создании комнаты и при восстановлении
// контроля, чтобы восстановить полную картину текущей фазы.
type SyncMessage struct {
	Type  string   `json:"type"`
	Phase string   `json:"phase"`
	Data  SyncData `json:"data"`
}

// SyncData содержит снимок состояния комнаты для текущей фазы.
// Указатели используются там, где нулевое значение значимо.
type SyncData struct {
	QuizCode     string           `json:"quizCode"`
	Players      []string         `json:"players,omitempty"`
	Question     *entity.Question `json:"question,omitempty"`
	Index        int              `json:"index,omitempty"`
	Total        int              `json:"total,omitempty"`
	Remaining    *int             `json:"remaining,omitempty"`
	CorrectIndex *int             `json:"correctIndex,omitempty"`
	Distribution []int            `json:"distribution,omitempty"`
	Scores       map[string]int   `json:"scores,omitempty"`
	Rankings     []RankingEntry   `json:"rankings,omitempty"`
}
