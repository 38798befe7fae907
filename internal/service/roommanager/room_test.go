package roommanager

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizroom-api/internal/pkg/errors"
	ws "github.com/yourusername/quizroom-api/internal/websocket"
)

// twoQuestionQuiz возвращает викторину из двух вопросов для тестов
func twoQuestionQuiz() *entity.Quiz {
	return &entity.Quiz{
		Title: "Тестовая викторина",
		Questions: []entity.Question{
			{
				ID:           "q1",
				Text:         "2+2?",
				Choices:      []string{"3", "4", "5", "6"},
				CorrectIndex: 1,
				TimerSec:     10,
			},
			{
				ID:           "q2",
				Text:         "3*3?",
				Choices:      []string{"6", "7", "8", "9"},
				CorrectIndex: 3,
				TimerSec:     5,
			},
		},
	}
}

func newTestRoom(t *testing.T, host Conn) *Room {
	t.Helper()
	return newRoom("ABC123", twoQuestionQuiz(), host, testConfig())
}

func TestRoom_AddPlayer_Lobby(t *testing.T) {
	// Arrange
	host := newFakeConn("host")
	room := newTestRoom(t, host)
	alice := newFakeConn("alice")

	// Act
	player, err := room.AddPlayer("Alice", alice)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, player.ID, "Игрок должен получить сгенерированный ID")

	// Присоединившийся получает свой playerID
	joined, ok := alice.LastEvent().(ws.JoinedMessage)
	require.True(t, ok, "Игрок должен получить joined-сообщение")
	assert.Equal(t, player.ID, joined.PlayerID)
	assert.Equal(t, []string{"Alice"}, joined.Players)

	// Остальные участники получают список без playerID
	hostJoined, ok := host.LastEvent().(ws.JoinedMessage)
	require.True(t, ok, "Ведущий должен получить joined-сообщение")
	assert.Empty(t, hostJoined.PlayerID, "Чужой playerID не должен рассылаться")
	assert.Equal(t, []string{"Alice"}, hostJoined.Players)
}

func TestRoom_AddPlayer_PreservesJoinOrder(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))

	// Act
	_, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)
	_, err = room.AddPlayer("Bob", newFakeConn("bob"))
	require.NoError(t, err)
	_, err = room.AddPlayer("Carol", newFakeConn("carol"))
	require.NoError(t, err)

	// Assert: список игроков идёт в порядке присоединения
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, room.PlayerNames())
}

func TestRoom_AddPlayer_AfterStart(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))
	_, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)
	require.True(t, room.Start())

	// Act
	_, err = room.AddPlayer("Late", newFakeConn("late"))

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotInLobby, "Присоединение после старта должно быть отклонено")
}

func TestRoom_AddPlayer_Full(t *testing.T) {
	// Arrange
	cfg := testConfig()
	cfg.MaxPlayers = 1
	room := newRoom("ABC123", twoQuestionQuiz(), newFakeConn("host"), cfg)
	_, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)

	// Act
	_, err = room.AddPlayer("Bob", newFakeConn("bob"))

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
}

func TestRoom_Start_RequiresPlayers(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))

	// Act & Assert: старт без игроков игнорируется
	assert.False(t, room.Start())
	assert.Equal(t, PhaseLobby, room.Phase())
}

func TestRoom_Start_BroadcastsFirstQuestion(t *testing.T) {
	// Arrange
	host := newFakeConn("host")
	room := newTestRoom(t, host)
	alice := newFakeConn("alice")
	_, err := room.AddPlayer("Alice", alice)
	require.NoError(t, err)
	alice.Reset()

	// Act
	require.True(t, room.Start())

	// Assert
	assert.Equal(t, PhaseQuestion, room.Phase())
	question, ok := alice.LastEvent().(ws.QuestionMessage)
	require.True(t, ok, "Игрок должен получить вопрос")
	assert.Equal(t, "q1", question.Question.ID)
	assert.Equal(t, 1, question.Index, "Номер вопроса считается с единицы")
	assert.Equal(t, 2, question.Total)

	// Повторный старт игнорируется
	assert.False(t, room.Start())
}

func TestRoom_QuestionBroadcast_HidesCorrectIndex(t *testing.T) {
	// Arrange
	host := newFakeConn("host")
	room := newTestRoom(t, host)
	_, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)
	require.True(t, room.Start())

	question, ok := host.LastEvent().(ws.QuestionMessage)
	require.True(t, ok)

	// Act
	data, err := json.Marshal(question)
	require.NoError(t, err)

	// Assert: правильный ответ не утекает в рассылке вопроса
	assert.NotContains(t, string(data), "correctIndex")
}

func TestRoom_Advance_OnlyFromResults(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))
	alice := newFakeConn("alice")
	player, err := room.AddPlayer("Alice", alice)
	require.NoError(t, err)
	require.True(t, room.Start())

	// Act & Assert: переход во время идущего вопроса игнорируется
	assert.False(t, room.Advance())
	assert.Equal(t, PhaseQuestion, room.Phase())

	// Единственный игрок отвечает — вопрос завершается досрочно
	require.NoError(t, ProcessAnswer(room, player.ID, "q1", 1))
	assert.Equal(t, PhaseResults, room.Phase())

	// Из результатов переход разрешён
	assert.True(t, room.Advance())
	assert.Equal(t, PhaseQuestion, room.Phase())
}

func TestRoom_Advance_AfterLastQuestion_ShowsLeaderboard(t *testing.T) {
	// Arrange
	host := newFakeConn("host")
	room := newTestRoom(t, host)
	player, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)
	require.True(t, room.Start())

	// Проходим оба вопроса
	require.NoError(t, ProcessAnswer(room, player.ID, "q1", 1))
	require.True(t, room.Advance())
	require.NoError(t, ProcessAnswer(room, player.ID, "q2", 3))

	// Act: после последнего вопроса — таблица лидеров
	require.True(t, room.Advance())

	// Assert
	assert.Equal(t, PhaseLeaderboard, room.Phase())
	leaderboard, ok := host.LastEvent().(ws.LeaderboardMessage)
	require.True(t, ok, "Ведущий должен получить таблицу лидеров")
	require.Len(t, leaderboard.Rankings, 1)
	assert.Equal(t, "Alice", leaderboard.Rankings[0].Name)
	assert.Greater(t, leaderboard.Rankings[0].Score, 0)
}

func TestRoom_Leaderboard_TieBrokenByJoinOrder(t *testing.T) {
	// Arrange: два игрока с равными очками (оба не отвечают)
	host := newFakeConn("host")
	room := newTestRoom(t, host)
	_, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)
	_, err = room.AddPlayer("Bob", newFakeConn("bob"))
	require.NoError(t, err)
	require.True(t, room.Start())

	// Завершаем оба вопроса по таймеру
	for i := 0; i < 2; i++ {
		cd := room.countdown
		require.NotNil(t, cd)
		for room.handleTick(cd) {
		}
		if i == 0 {
			require.True(t, room.Advance())
		}
	}
	require.True(t, room.Advance())

	// Assert: при равных очках порядок присоединения стабилен
	require.Equal(t, PhaseLeaderboard, room.Phase())
	leaderboard, ok := host.LastEvent().(ws.LeaderboardMessage)
	require.True(t, ok)
	require.Len(t, leaderboard.Rankings, 2)
	assert.Equal(t, "Alice", leaderboard.Rankings[0].Name)
	assert.Equal(t, "Bob", leaderboard.Rankings[1].Name)
}

func TestRoom_End_OnlyFromLeaderboard(t *testing.T) {
	// Arrange
	host := newFakeConn("host")
	room := newTestRoom(t, host)
	player, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)

	// Act & Assert: завершение из лобби игнорируется
	assert.False(t, room.End())

	require.True(t, room.Start())
	require.NoError(t, ProcessAnswer(room, player.ID, "q1", 1))
	require.True(t, room.Advance())
	require.NoError(t, ProcessAnswer(room, player.ID, "q2", 3))
	require.True(t, room.Advance())
	require.Equal(t, PhaseLeaderboard, room.Phase())

	// Из таблицы лидеров завершение разрешено
	assert.True(t, room.End())
	assert.Equal(t, PhaseEnded, room.Phase())

	_, ok := host.LastEvent().(ws.EndedMessage)
	assert.True(t, ok, "Все участники должны получить ended-сообщение")

	// Повторное завершение игнорируется
	assert.False(t, room.End())
}

func TestRoom_Close_NotifiesPlayers(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))
	alice := newFakeConn("alice")
	_, err := room.AddPlayer("Alice", alice)
	require.NoError(t, err)

	// Act
	room.Close("host disconnected")

	// Assert
	assert.Equal(t, PhaseEnded, room.Phase())
	errMsg, ok := alice.LastEvent().(ws.ErrorMessage)
	require.True(t, ok, "Игрок должен получить сообщение об ошибке")
	assert.Equal(t, "host disconnected", errMsg.Message)
}

func TestRoom_RemovePlayer(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))
	player, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)

	// Act & Assert
	assert.True(t, room.RemovePlayer(player.ID))
	assert.Equal(t, 0, room.PlayerCount())

	// Повторное удаление безопасно
	assert.False(t, room.RemovePlayer(player.ID))
}

func TestRoom_Countdown_TickBroadcastAndExpiry(t *testing.T) {
	// Arrange
	host := newFakeConn("host")
	room := newRoom("ABC123", &entity.Quiz{
		Title: "Быстрая",
		Questions: []entity.Question{
			{ID: "q1", Text: "?", Choices: []string{"A", "B", "C", "D"}, CorrectIndex: 0, TimerSec: 3},
		},
	}, host, testConfig())
	alice := newFakeConn("alice")
	_, err := room.AddPlayer("Alice", alice)
	require.NoError(t, err)
	require.True(t, room.Start())
	alice.Reset()

	cd := room.countdown
	require.NotNil(t, cd)

	// Act: первый тик
	assert.True(t, room.handleTick(cd))
	tick, ok := alice.LastEvent().(ws.TickMessage)
	require.True(t, ok)
	assert.Equal(t, 2, tick.Remaining)

	// Второй тик
	assert.True(t, room.handleTick(cd))

	// Третий тик доводит отсчёт до нуля и завершает вопрос
	assert.False(t, room.handleTick(cd))
	assert.Equal(t, PhaseResults, room.Phase())

	results, ok := alice.LastEvent().(ws.ResultsMessage)
	require.True(t, ok, "По истечении таймера рассылаются результаты")
	assert.Equal(t, 0, results.CorrectIndex)
}

func TestRoom_FullGame_TwoPlayers(t *testing.T) {
	// Arrange: два вопроса по 10 секунд, игроки Alice и Bob
	host := newFakeConn("host")
	quiz := twoQuestionQuiz()
	quiz.Questions[1].TimerSec = 10
	room := newRoom("ABC123", quiz, host, testConfig())

	alice, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)
	bob, err := room.AddPlayer("Bob", newFakeConn("bob"))
	require.NoError(t, err)
	require.True(t, room.Start())

	// Act: Alice отвечает сразу (remaining=10), Bob — после пяти тиков (remaining=5)
	require.NoError(t, ProcessAnswer(room, alice.ID, "q1", 1))

	cd := room.countdown
	require.NotNil(t, cd)
	for i := 0; i < 5; i++ {
		require.True(t, room.handleTick(cd))
	}
	require.NoError(t, ProcessAnswer(room, bob.ID, "q1", 1))

	// Assert: оба ответили — результаты с очками за скорость
	require.Equal(t, PhaseResults, room.Phase())
	results, ok := host.LastEvent().(ws.ResultsMessage)
	require.True(t, ok)
	assert.Equal(t, 1500, results.Scores["Alice"])
	assert.Equal(t, 1250, results.Scores["Bob"])

	// Второй вопрос никто не успевает ответить
	require.True(t, room.Advance())
	cd = room.countdown
	require.NotNil(t, cd)
	for room.handleTick(cd) {
	}

	require.Equal(t, PhaseResults, room.Phase())
	results, ok = host.LastEvent().(ws.ResultsMessage)
	require.True(t, ok)
	assert.Equal(t, []int{0, 0, 0, 0}, results.Distribution, "Без ответов распределение пустое")
	assert.Equal(t, 1500, results.Scores["Alice"], "Очки не меняются без ответа")
	assert.Equal(t, 1250, results.Scores["Bob"])

	// Таблица лидеров: Alice выше Bob
	require.True(t, room.Advance())
	leaderboard, ok := host.LastEvent().(ws.LeaderboardMessage)
	require.True(t, ok)
	require.Len(t, leaderboard.Rankings, 2)
	assert.Equal(t, ws.RankingEntry{Name: "Alice", Score: 1500}, leaderboard.Rankings[0])
	assert.Equal(t, ws.RankingEntry{Name: "Bob", Score: 1250}, leaderboard.Rankings[1])
}

func TestRoom_Countdown_StaleTickIgnored(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))
	player, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)
	require.True(t, room.Start())

	staleCd := room.countdown
	require.NotNil(t, staleCd)

	// Вопрос завершается досрочно, стартует следующий — таймер сменился
	require.NoError(t, ProcessAnswer(room, player.ID, "q1", 1))
	require.True(t, room.Advance())
	freshCd := room.countdown
	require.NotNil(t, freshCd)
	require.NotSame(t, staleCd, freshCd)

	remainingBefore := freshCd.remaining

	// Act: тик от устаревшего таймера
	assert.False(t, room.handleTick(staleCd))

	// Assert: устаревший тик не трогает новый отсчёт
	assert.Equal(t, remainingBefore, freshCd.remaining)
	assert.Equal(t, PhaseQuestion, room.Phase())
}
