package roommanager

import (
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/quizroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizroom-api/internal/pkg/errors"
	ws "github.com/yourusername/quizroom-api/internal/websocket"
)

// Phase — фаза жизненного цикла комнаты.
type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseQuestion    Phase = "question"
	PhaseResults     Phase = "results"
	PhaseLeaderboard Phase = "leaderboard"
	PhaseEnded       Phase = "ended"
)

// roomMember связывает игрока с его соединением.
type roomMember struct {
	player entity.Player
	conn   Conn
}

// Room — одна игровая комната: ведущий, игроки и состояние викторины.
// Все операции над комнатой сериализуются через mu, включая тики
// обратного отсчёта.
type Room struct {
	ID   string
	Code string

	mu sync.Mutex

	phase Phase
	quiz  *entity.Quiz
	host  Conn

	// Игроки комнаты по ID
	members map[string]*roomMember

	// Порядковый номер присоединения, используется для стабильной
	// сортировки списков игроков и таблицы лидеров
	joinSeq int

	// Индекс текущего вопроса (-1 до старта)
	currentIndex int

	// Ответы на текущий вопрос: playerID -> индекс выбранного варианта
	answers map[string]int

	// Накопленные очки: playerID -> очки
	scores map[string]int

	// Активный обратный отсчёт (nil вне фазы вопроса)
	countdown *countdown

	config *Config
}

// newRoom создаёт комнату в фазе лобби.
func newRoom(code string, quiz *entity.Quiz, host Conn, config *Config) *Room {
	return &Room{
		ID:           uuid.New().String(),
		Code:         code,
		phase:        PhaseLobby,
		quiz:         quiz,
		host:         host,
		members:      make(map[string]*roomMember),
		currentIndex: -1,
		answers:      make(map[string]int),
		scores:       make(map[string]int),
		config:       config,
	}
}

// Phase возвращает текущую фазу комнаты.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Host возвращает текущее соединение ведущего.
func (r *Room) Host() Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host
}

// SetHost заменяет соединение ведущего (используется при переподключении).
func (r *Room) SetHost(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.host = conn
}

// Quiz возвращает викторину комнаты.
func (r *Room) Quiz() *entity.Quiz {
	return r.quiz
}

// AddPlayer добавляет игрока в комнату. Разрешено только в фазе лобби.
// Все участники комнаты получают обновлённый список игроков; сам
// присоединившийся дополнительно получает свой playerID.
func (r *Room) AddPlayer(name string, conn Conn) (entity.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseLobby {
		return entity.Player{}, apperrors.ErrNotInLobby
	}
	if r.config.MaxPlayers > 0 && len(r.members) >= r.config.MaxPlayers {
		return entity.Player{}, apperrors.ErrRoomFull
	}

	player := entity.Player{
		ID:        uuid.New().String(),
		Name:      name,
		JoinOrder: r.joinSeq,
	}
	r.joinSeq++
	r.members[player.ID] = &roomMember{player: player, conn: conn}
	r.scores[player.ID] = 0

	log.Printf("[Room %s] Player %q joined (id=%s, players=%d)", r.Code, name, player.ID, len(r.members))

	players := r.playerNamesLocked()
	r.broadcastExceptLocked(conn, ws.JoinedMessage{Type: ws.JOINED, Players: players})
	r.sendLocked(conn, ws.JoinedMessage{Type: ws.JOINED, PlayerID: player.ID, Players: players})

	return player, nil
}

// RemovePlayer удаляет игрока из комнаты вместе с его очками и ответом.
// Возвращает false, если игрок не найден.
func (r *Room) RemovePlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[playerID]; !ok {
		return false
	}
	delete(r.members, playerID)
	delete(r.scores, playerID)
	delete(r.answers, playerID)
	log.Printf("[Room %s] Player %s left (players=%d)", r.Code, playerID, len(r.members))
	return true
}

// Start запускает викторину из фазы лобби.
// Возвращает false, если комната не в лобби или в ней нет игроков.
func (r *Room) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseLobby || len(r.members) == 0 {
		return false
	}
	log.Printf("[Room %s] Quiz started (%d players, %d questions)", r.Code, len(r.members), len(r.quiz.Questions))
	r.advanceLocked()
	return true
}

// Advance переводит комнату к следующему вопросу (или к таблице лидеров
// после последнего вопроса). Разрешено только из фазы результатов.
func (r *Room) Advance() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseResults {
		return false
	}
	r.advanceLocked()
	return true
}

// advanceLocked показывает следующий вопрос или таблицу лидеров.
// Вызывается с удержанным mu.
func (r *Room) advanceLocked() {
	r.cancelCountdownLocked()

	r.currentIndex++
	if r.currentIndex >= len(r.quiz.Questions) {
		r.leaderboardLocked()
		return
	}

	r.answers = make(map[string]int)
	r.phase = PhaseQuestion

	question := r.quiz.Questions[r.currentIndex]
	r.broadcastLocked(ws.QuestionMessage{
		Type:     ws.QUESTION,
		Question: question,
		Index:    r.currentIndex + 1,
		Total:    len(r.quiz.Questions),
	})
	r.startCountdownLocked(question.TimerSec)
}

// completeQuestionLocked завершает текущий вопрос и рассылает результаты.
// Повторный вызов для уже завершённого вопроса игнорируется.
// Вызывается с удержанным mu.
func (r *Room) completeQuestionLocked() {
	if r.phase != PhaseQuestion {
		return
	}
	r.cancelCountdownLocked()
	r.phase = PhaseResults

	question := r.quiz.Questions[r.currentIndex]
	log.Printf("[Room %s] Question %d completed (%d/%d answered)", r.Code, r.currentIndex+1, len(r.answers), len(r.members))

	r.broadcastLocked(ws.ResultsMessage{
		Type:         ws.RESULTS,
		CorrectIndex: question.CorrectIndex,
		Distribution: r.distributionLocked(),
		Scores:       r.scoresByNameLocked(),
	})
}

// leaderboardLocked переводит комнату в фазу таблицы лидеров.
// Вызывается с удержанным mu.
func (r *Room) leaderboardLocked() {
	r.phase = PhaseLeaderboard
	log.Printf("[Room %s] Leaderboard shown", r.Code)
	r.broadcastLocked(ws.LeaderboardMessage{
		Type:     ws.LEADERBOARD,
		Rankings: r.rankingsLocked(),
	})
}

// End завершает викторину. Разрешено только из фазы таблицы лидеров.
func (r *Room) End() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseLeaderboard {
		return false
	}
	r.phase = PhaseEnded
	log.Printf("[Room %s] Quiz ended", r.Code)
	r.broadcastLocked(ws.EndedMessage{Type: ws.ENDED})
	return true
}

// Close принудительно закрывает комнату (например, при отключении ведущего).
// Игроки получают сообщение об ошибке с указанной причиной.
func (r *Room) Close(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == PhaseEnded {
		return
	}
	r.cancelCountdownLocked()
	r.phase = PhaseEnded
	log.Printf("[Room %s] Closed: %s", r.Code, message)

	for _, member := range r.members {
		r.sendLocked(member.conn, ws.ErrorMessage{Type: ws.ERROR, Message: message})
	}
}

// PlayerNames возвращает имена игроков в порядке присоединения.
func (r *Room) PlayerNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerNamesLocked()
}

// PlayerCount возвращает количество игроков в комнате.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// --- Вспомогательные методы (вызываются с удержанным mu) ---

// membersInJoinOrderLocked возвращает участников в порядке присоединения.
func (r *Room) membersInJoinOrderLocked() []*roomMember {
	members := make([]*roomMember, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].player.JoinOrder < members[j].player.JoinOrder
	})
	return members
}

func (r *Room) playerNamesLocked() []string {
	members := r.membersInJoinOrderLocked()
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.player.Name)
	}
	return names
}

// distributionLocked подсчитывает количество ответов по каждому варианту.
func (r *Room) distributionLocked() []int {
	distribution := make([]int, entity.ChoiceCount)
	for _, choice := range r.answers {
		if choice >= 0 && choice < len(distribution) {
			distribution[choice]++
		}
	}
	return distribution
}

// scoresByNameLocked возвращает очки игроков, пригодные для отправки наружу.
func (r *Room) scoresByNameLocked() map[string]int {
	scores := make(map[string]int, len(r.members))
	for id, member := range r.members {
		scores[member.player.Name] = r.scores[id]
	}
	return scores
}

// rankingsLocked строит таблицу лидеров: по убыванию очков,
// при равенстве — по порядку присоединения.
func (r *Room) rankingsLocked() []ws.RankingEntry {
	members := r.membersInJoinOrderLocked()
	sort.SliceStable(members, func(i, j int) bool {
		return r.scores[members[i].player.ID] > r.scores[members[j].player.ID]
	})

	rankings := make([]ws.RankingEntry, 0, len(members))
	for _, m := range members {
		rankings = append(rankings, ws.RankingEntry{
			Name:  m.player.Name,
			Score: r.scores[m.player.ID],
		})
	}
	return rankings
}

// remainingLocked возвращает оставшееся время текущего вопроса в секундах.
func (r *Room) remainingLocked() int {
	if r.countdown == nil {
		return 0
	}
	return r.countdown.remaining
}

// sendLocked отправляет сообщение одному соединению.
// Ошибка отправки не фатальна: переполненный клиент будет отключён насосами.
func (r *Room) sendLocked(conn Conn, v interface{}) {
	if conn == nil {
		return
	}
	if err := conn.SendEvent(v); err != nil {
		log.Printf("[Room %s] Send to %s failed: %v", r.Code, conn.ID(), err)
	}
}

// broadcastLocked отправляет сообщение ведущему и всем игрокам.
func (r *Room) broadcastLocked(v interface{}) {
	r.sendLocked(r.host, v)
	for _, member := range r.members {
		r.sendLocked(member.conn, v)
	}
}

// broadcastExceptLocked отправляет сообщение всем, кроме указанного соединения.
func (r *Room) broadcastExceptLocked(except Conn, v interface{}) {
	if r.host != except {
		r.sendLocked(r.host, v)
	}
	for _, member := range r.members {
		if member.conn != except {
			r.sendLocked(member.conn, v)
		}
	}
}
