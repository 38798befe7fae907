package entity

import (
	"fmt"

	apperrors "github.com/yourusername/quizroom-api/internal/pkg/errors"
)

// Quiz представляет набор вопросов, который ведущий запускает в комнате.
type Quiz struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Validate проверяет корректность викторины перед созданием комнаты.
func (q *Quiz) Validate() error {
	if q.Title == "" {
		return fmt.Errorf("%w: quiz title is required", apperrors.ErrValidation)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: quiz must contain at least one question", apperrors.ErrValidation)
	}
	for i := range q.Questions {
		question := &q.Questions[i]
		if question.Text == "" {
			return fmt.Errorf("%w: question %d has no text", apperrors.ErrValidation, i+1)
		}
		if len(question.Choices) != ChoiceCount {
			return fmt.Errorf("%w: question %d must have exactly %d choices", apperrors.ErrValidation, i+1, ChoiceCount)
		}
		if question.CorrectIndex < 0 || question.CorrectIndex >= ChoiceCount {
			return fmt.Errorf("%w: question %d has invalid correct choice index", apperrors.ErrValidation, i+1)
		}
		if question.TimerSec < 1 {
			return fmt.Errorf("%w: question %d must have a positive timer", apperrors.ErrValidation, i+1)
		}
	}
	return nil
}
