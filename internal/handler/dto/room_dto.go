package dto

import (
	"fmt"

	"github.com/yourusername/quizroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizroom-api/internal/pkg/errors"
)

// JoinRequest — запрос игрока на присоединение к комнате.
type JoinRequest struct {
	Type     string `json:"type"`
	QuizCode string `json:"quizCode"`
	Name     string `json:"name"`
}

// AnswerRequest — ответ игрока на текущий вопрос.
// ChoiceIndex — указатель, чтобы отличить отсутствующее поле от нуля.
type AnswerRequest struct {
	Type        string `json:"type"`
	QuestionID  string `json:"questionId"`
	ChoiceIndex *int   `json:"choiceIndex"`
}

// QuestionPayload — вопрос в составе запроса на создание комнаты.
type QuestionPayload struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex *int     `json:"correctIndex"`
	TimerSec     int      `json:"timerSec"`
}

// CreateRoomRequest — запрос ведущего на создание комнаты с викториной.
type CreateRoomRequest struct {
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Questions []QuestionPayload `json:"questions"`
}

// ResumeRequest — запрос ведущего на восстановление контроля над комнатой.
type ResumeRequest struct {
	Type     string `json:"type"`
	QuizCode string `json:"quizCode"`
}

// ToEntity преобразует запрос в доменную викторину.
// Отсутствующий correctIndex превращается в заведомо невалидное значение,
// которое отсеет доменная валидация.
func (r *CreateRoomRequest) ToEntity() *entity.Quiz {
	quiz := &entity.Quiz{
		Title:     r.Title,
		Questions: make([]entity.Question, 0, len(r.Questions)),
	}
	for i, q := range r.Questions {
		correctIndex := -1
		if q.CorrectIndex != nil {
			correctIndex = *q.CorrectIndex
		}
		id := q.ID
		if id == "" {
			id = fmt.Sprintf("q%d", i+1)
		}
		quiz.Questions = append(quiz.Questions, entity.Question{
			ID:           id,
			Text:         q.Text,
			Choices:      q.Choices,
			CorrectIndex: correctIndex,
			TimerSec:     q.TimerSec,
		})
	}
	return quiz
}

// Validate проверяет обязательные поля ответа игрока.
func (r *AnswerRequest) Validate() error {
	if r.QuestionID == "" {
		return fmt.Errorf("%w: questionId is required", apperrors.ErrValidation)
	}
	if r.ChoiceIndex == nil {
		return fmt.Errorf("%w: choiceIndex is required", apperrors.ErrValidation)
	}
	return nil
}
