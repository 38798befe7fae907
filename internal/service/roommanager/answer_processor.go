package roommanager

import (
	"fmt"
	"log"

	apperrors "github.com/yourusername/quizroom-api/internal/pkg/errors"
)

// ProcessAnswer обрабатывает ответ игрока на текущий вопрос.
// Каждый игрок засчитывается не более одного раза на вопрос: повторные
// ответы, ответы вне фазы вопроса и ответы на устаревший вопрос
// молча игнорируются. Когда ответили все игроки, вопрос завершается
// досрочно.
func ProcessAnswer(room *Room, playerID, questionID string, choiceIndex int) error {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.phase != PhaseQuestion {
		// Ответ пришёл после закрытия вопроса — не ошибка
		return nil
	}

	member, ok := room.members[playerID]
	if !ok {
		return apperrors.ErrPlayerNotFound
	}

	question := &room.quiz.Questions[room.currentIndex]
	if questionID != question.ID {
		// Ответ на уже сменившийся вопрос — игнорируем
		return nil
	}

	if !question.IsValidChoice(choiceIndex) {
		return fmt.Errorf("%w: choice index %d out of range", apperrors.ErrValidation, choiceIndex)
	}

	if _, answered := room.answers[playerID]; answered {
		// Засчитан только первый ответ
		return nil
	}
	room.answers[playerID] = choiceIndex

	isCorrect := question.IsCorrect(choiceIndex)
	points := question.CalculatePoints(isCorrect, room.remainingLocked())
	if points > 0 {
		room.scores[playerID] += points
	}
	log.Printf("[Room %s] Answer from %q: choice=%d correct=%v points=%d",
		room.Code, member.player.Name, choiceIndex, isCorrect, points)

	if len(room.answers) == len(room.members) {
		// Все игроки ответили — не ждём таймер
		room.completeQuestionLocked()
	}
	return nil
}
