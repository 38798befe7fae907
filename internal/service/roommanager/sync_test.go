package roommanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ws "github.com/yourusername/quizroom-api/internal/websocket"
)

func TestBuildSync_Lobby(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))
	_, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)

	// Act
	syncMsg := BuildSync(room)

	// Assert
	assert.Equal(t, ws.SYNC, syncMsg.Type)
	assert.Equal(t, "lobby", syncMsg.Phase)
	assert.Equal(t, "ABC123", syncMsg.Data.QuizCode)
	assert.Equal(t, []string{"Alice"}, syncMsg.Data.Players)
	assert.Nil(t, syncMsg.Data.Question)
	assert.Nil(t, syncMsg.Data.CorrectIndex)
}

func TestBuildSync_Question_LiveRemaining(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))
	_, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)
	require.True(t, room.Start())

	// Два тика уже прошли
	cd := room.countdown
	require.NotNil(t, cd)
	require.True(t, room.handleTick(cd))
	require.True(t, room.handleTick(cd))

	// Act
	syncMsg := BuildSync(room)

	// Assert: снимок отражает живой остаток времени
	assert.Equal(t, "question", syncMsg.Phase)
	require.NotNil(t, syncMsg.Data.Question)
	assert.Equal(t, "q1", syncMsg.Data.Question.ID)
	assert.Equal(t, 1, syncMsg.Data.Index)
	assert.Equal(t, 2, syncMsg.Data.Total)
	require.NotNil(t, syncMsg.Data.Remaining)
	assert.Equal(t, 8, *syncMsg.Data.Remaining)
	assert.Nil(t, syncMsg.Data.CorrectIndex, "Правильный ответ не раскрывается во время вопроса")
}

func TestBuildSync_Results(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))
	alice, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)
	require.True(t, room.Start())
	require.NoError(t, ProcessAnswer(room, alice.ID, "q1", 1))
	require.Equal(t, PhaseResults, room.Phase())

	// Act
	syncMsg := BuildSync(room)

	// Assert
	assert.Equal(t, "results", syncMsg.Phase)
	require.NotNil(t, syncMsg.Data.CorrectIndex)
	assert.Equal(t, 1, *syncMsg.Data.CorrectIndex)
	assert.Equal(t, []int{0, 1, 0, 0}, syncMsg.Data.Distribution)
	assert.Equal(t, 1500, syncMsg.Data.Scores["Alice"])
}

func TestBuildSync_Leaderboard(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))
	alice, err := room.AddPlayer("Alice", newFakeConn("alice"))
	require.NoError(t, err)
	require.True(t, room.Start())
	require.NoError(t, ProcessAnswer(room, alice.ID, "q1", 1))
	require.True(t, room.Advance())
	require.NoError(t, ProcessAnswer(room, alice.ID, "q2", 3))
	require.True(t, room.Advance())
	require.Equal(t, PhaseLeaderboard, room.Phase())

	// Act
	syncMsg := BuildSync(room)

	// Assert
	assert.Equal(t, "leaderboard", syncMsg.Phase)
	require.Len(t, syncMsg.Data.Rankings, 1)
	assert.Equal(t, "Alice", syncMsg.Data.Rankings[0].Name)
	assert.Equal(t, 3000, syncMsg.Data.Rankings[0].Score)
}

func TestBuildSync_Ended(t *testing.T) {
	// Arrange
	room := newTestRoom(t, newFakeConn("host"))
	room.Close("host disconnected")

	// Act
	syncMsg := BuildSync(room)

	// Assert: только код комнаты
	assert.Equal(t, "ended", syncMsg.Phase)
	assert.Equal(t, "ABC123", syncMsg.Data.QuizCode)
	assert.Empty(t, syncMsg.Data.Players)
	assert.Nil(t, syncMsg.Data.Question)
}
