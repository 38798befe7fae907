package roommanager

import "time"

// Conn — минимальный интерфейс исходящего соединения, которым пользуется комната.
// Реализуется websocket-клиентом; в тестах подменяется заглушкой.
type Conn interface {
	// ID возвращает уникальный идентификатор соединения.
	ID() string

	// SendEvent сериализует значение и ставит его в очередь отправки.
	SendEvent(v interface{}) error
}

// Config содержит настройки менеджера комнат.
type Config struct {
	// CodeLength — длина кода комнаты.
	CodeLength int

	// CodeAlphabet — алфавит, из которого составляется код комнаты.
	CodeAlphabet string

	// TickInterval — период тика обратного отсчёта.
	TickInterval time.Duration

	// MaxPlayers — максимальное количество игроков в комнате (0 — без ограничения).
	MaxPlayers int
}

// DefaultConfig возвращает конфигурацию менеджера комнат по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		CodeLength:   6,
		CodeAlphabet: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
		TickInterval: time.Second,
		MaxPlayers:   0,
	}
}

// normalize проверяет конфигурацию и подставляет значения по умолчанию.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.CodeLength <= 0 {
		c.CodeLength = def.CodeLength
	}
	if c.CodeAlphabet == "" {
		c.CodeAlphabet = def.CodeAlphabet
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.MaxPlayers < 0 {
		c.MaxPlayers = 0
	}
}
