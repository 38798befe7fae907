package roommanager

import "sync"

// PlayerRef — привязка соединения игрока к комнате.
type PlayerRef struct {
	Room     *Room
	PlayerID string
}

// Routing сопоставляет идентификаторы соединений с комнатами.
// Это единственное место, где известно, кем является соединение:
// игроком конкретной комнаты или её ведущим.
type Routing struct {
	mu sync.RWMutex

	// connID -> привязка игрока
	players map[string]PlayerRef

	// connID -> комната, которой соединение является ведущим
	hosts map[string]*Room
}

// NewRouting создаёт пустую таблицу маршрутизации.
func NewRouting() *Routing {
	return &Routing{
		players: make(map[string]PlayerRef),
		hosts:   make(map[string]*Room),
	}
}

// AddPlayer привязывает соединение к игроку комнаты.
func (rt *Routing) AddPlayer(connID string, room *Room, playerID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.players[connID] = PlayerRef{Room: room, PlayerID: playerID}
}

// PlayerRef возвращает привязку игрока для соединения.
func (rt *Routing) PlayerRef(connID string) (PlayerRef, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	ref, ok := rt.players[connID]
	return ref, ok
}

// RemovePlayer снимает привязку игрока. Возвращает снятую привязку.
// Повторный вызов безопасен.
func (rt *Routing) RemovePlayer(connID string) (PlayerRef, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	ref, ok := rt.players[connID]
	if ok {
		delete(rt.players, connID)
	}
	return ref, ok
}

// SetHost привязывает соединение к комнате как ведущего.
func (rt *Routing) SetHost(connID string, room *Room) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.hosts[connID] = room
}

// HostRoom возвращает комнату, которой соединение является ведущим.
func (rt *Routing) HostRoom(connID string) (*Room, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	room, ok := rt.hosts[connID]
	return room, ok
}

// RemoveHost снимает привязку ведущего. Возвращает его комнату.
func (rt *Routing) RemoveHost(connID string) (*Room, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	room, ok := rt.hosts[connID]
	if ok {
		delete(rt.hosts, connID)
	}
	return room, ok
}

// RemoveHostFor снимает привязку ведущего указанной комнаты,
// каким бы соединением он ни был. Используется при переподключении ведущего.
func (rt *Routing) RemoveHostFor(room *Room) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for connID, hosted := range rt.hosts {
		if hosted == room {
			delete(rt.hosts, connID)
		}
	}
}

// RemoveRoom удаляет все привязки, относящиеся к комнате.
func (rt *Routing) RemoveRoom(room *Room) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for connID, ref := range rt.players {
		if ref.Room == room {
			delete(rt.players, connID)
		}
	}
	for connID, hosted := range rt.hosts {
		if hosted == room {
			delete(rt.hosts, connID)
		}
	}
}
