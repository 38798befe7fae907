package entity

// Player представляет игрока, присоединившегося к комнате.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	JoinOrder int    `json:"-"`
}
