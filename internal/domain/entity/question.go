package entity

import "math"

// ChoiceCount — фиксированное количество вариантов ответа на вопрос.
const ChoiceCount = 4

// basePoints — базовое количество очков за правильный ответ.
const basePoints = 1000

// speedBonusMax — максимальный бонус за скорость ответа.
const speedBonusMax = 500

// Question представляет вопрос викторины с вариантами ответа.
// Правильный вариант никогда не сериализуется наружу.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"-"`
	TimerSec     int      `json:"timerSec"`
}

// IsCorrect проверяет, является ли выбранный вариант правильным.
func (q *Question) IsCorrect(choiceIndex int) bool {
	return choiceIndex == q.CorrectIndex
}

// IsValidChoice проверяет, что индекс варианта находится в допустимых пределах.
func (q *Question) IsValidChoice(choiceIndex int) bool {
	return choiceIndex >= 0 && choiceIndex < len(q.Choices)
}

// CalculatePoints вычисляет количество очков за ответ.
// Неправильный ответ всегда даёт 0. Правильный ответ даёт базовые очки
// плюс бонус, пропорциональный оставшемуся времени на момент ответа.
func (q *Question) CalculatePoints(isCorrect bool, remainingSec int) int {
	if !isCorrect {
		return 0
	}
	if remainingSec < 0 {
		remainingSec = 0
	}
	if q.TimerSec <= 0 {
		return basePoints
	}
	bonus := int(math.Round(speedBonusMax * float64(remainingSec) / float64(q.TimerSec)))
	return basePoints + bonus
}
