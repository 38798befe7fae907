package roommanager

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"

	"github.com/yourusername/quizroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizroom-api/internal/pkg/errors"
)

// maxCodeAttempts ограничивает число попыток подбора свободного кода,
// чтобы исчерпанное пространство кодов не зациклило CreateRoom под блокировкой.
const maxCodeAttempts = 100

// Registry хранит активные комнаты и выдаёт им уникальные коды.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	config *Config
}

// NewRegistry создаёт реестр комнат.
func NewRegistry(config *Config) *Registry {
	if config == nil {
		config = DefaultConfig()
	}
	config.normalize()
	return &Registry{
		rooms:  make(map[string]*Room),
		config: config,
	}
}

// CreateRoom создаёт комнату с уникальным кодом для указанной викторины.
func (reg *Registry) CreateRoom(quiz *entity.Quiz, host Conn) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var code string
	for attempt := 0; ; attempt++ {
		if attempt >= maxCodeAttempts {
			return nil, fmt.Errorf("no free room code after %d attempts", maxCodeAttempts)
		}
		generated, err := reg.generateCode()
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}
		if _, taken := reg.rooms[generated]; !taken {
			code = generated
			break
		}
		// Коллизия кода — пробуем снова
	}

	room := newRoom(code, quiz, host, reg.config)
	reg.rooms[code] = room
	log.Printf("[Registry] Room created: code=%s quiz=%q (rooms=%d)", code, quiz.Title, len(reg.rooms))
	return room, nil
}

// Lookup находит комнату по коду. Код нечувствителен к регистру.
func (reg *Registry) Lookup(code string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, ok := reg.rooms[strings.ToUpper(code)]
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

// Destroy удаляет комнату из реестра. Повторный вызов безопасен:
// комната удаляется только если под её кодом всё ещё значится она сама.
func (reg *Registry) Destroy(room *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if current, ok := reg.rooms[room.Code]; ok && current == room {
		delete(reg.rooms, room.Code)
		log.Printf("[Registry] Room destroyed: code=%s (rooms=%d)", room.Code, len(reg.rooms))
	}
}

// Count возвращает количество активных комнат.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// generateCode генерирует случайный код комнаты из настроенного алфавита.
func (reg *Registry) generateCode() (string, error) {
	alphabet := reg.config.CodeAlphabet
	max := big.NewInt(int64(len(alphabet)))

	code := make([]byte, reg.config.CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}
