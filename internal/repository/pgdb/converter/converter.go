package converter

import (
	"encoding/json"

	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/shopspring/decimal"
)

// UserConverter преобразует User между domain и моделью PostgreSQL.
type UserConverter interface {
	ToEntity(model *UserModel) (*domain.User, error)
}

// ResultConverter преобразует Result между domain и моделью PostgreSQL.
type ResultConverter interface {
	ToModel(entity *domain.Result) (*ResultModel, error)
	ToEntity(model *ResultModel) (*domain.Result, error)
}

// QuestionConverter преобразует Question между domain и моделью PostgreSQL.
type QuestionConverter interface {
	ToModel(entity *domain.Question) (*QuestionModel, error)
	ToEntity(model *QuestionModel) (*domain.Question, error)
}

// OutboxEventConverter преобразует OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type UserConverterImpl struct{}

func (UserConverterImpl) ToEntity(model *UserModel) (*domain.User, error) {
	if model == nil {
		return nil, nil
	}

	settings := map[string]any{}
	if len(model.Settings) > 0 {
		if err := json.Unmarshal(model.Settings, &settings); err != nil {
			return nil, err
		}
	}

	return &domain.User{
		ID:             model.ID,
		Email:          model.Email,
		Username:       model.Username,
		Name:           model.Name,
		ProfilePicture: model.ProfilePicture,
		PasswordHash:   model.PasswordHash,
		GoogleID:       model.GoogleID,
		IsAdmin:        model.IsAdmin,
		Settings:       settings,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}, nil
}

type ResultConverterImpl struct{}

func (ResultConverterImpl) ToModel(entity *domain.Result) (*ResultModel, error) {
	if entity == nil {
		return nil, nil
	}

	questions, err := marshalNonNil(entity.Questions, []domain.ResultQuestion{})
	if err != nil {
		return nil, err
	}
	answers, err := marshalNonNil(entity.UserAnswers, []string{})
	if err != nil {
		return nil, err
	}
	explanations, err := marshalNonNil(entity.Explanations, []string{})
	if err != nil {
		return nil, err
	}

	return &ResultModel{
		ID:             entity.ID,
		UserID:         entity.UserID,
		Topic:          entity.Topic,
		Difficulty:     entity.Difficulty,
		Score:          entity.Score,
		TotalQuestions: entity.TotalQuestions,
		Correct:        entity.Correct,
		Incorrect:      entity.Incorrect,
		Percentage:     entity.Percentage.StringFixed(2),
		Questions:      questions,
		UserAnswers:    answers,
		Explanations:   explanations,
		TimeTaken:      entity.TimeTaken,
		CreatedAt:      entity.CreatedAt,
	}, nil
}

func (ResultConverterImpl) ToEntity(model *ResultModel) (*domain.Result, error) {
	if model == nil {
		return nil, nil
	}

	percentage, err := decimal.NewFromString(model.Percentage)
	if err != nil {
		return nil, err
	}

	entity := &domain.Result{
		ID:             model.ID,
		UserID:         model.UserID,
		Topic:          model.Topic,
		Difficulty:     model.Difficulty,
		Score:          model.Score,
		TotalQuestions: model.TotalQuestions,
		Correct:        model.Correct,
		Incorrect:      model.Incorrect,
		Percentage:     percentage,
		TimeTaken:      model.TimeTaken,
		CreatedAt:      model.CreatedAt,
	}

	if err := unmarshalOptional(model.Questions, &entity.Questions); err != nil {
		return nil, err
	}
	if err := unmarshalOptional(model.UserAnswers, &entity.UserAnswers); err != nil {
		return nil, err
	}
	if err := unmarshalOptional(model.Explanations, &entity.Explanations); err != nil {
		return nil, err
	}

	return entity, nil
}

type QuestionConverterImpl struct{}

func (QuestionConverterImpl) ToModel(entity *domain.Question) (*QuestionModel, error) {
	if entity == nil {
		return nil, nil
	}

	options, err := marshalNonNil(entity.Options, []string{})
	if err != nil {
		return nil, err
	}

	return &QuestionModel{
		ID:            entity.ID,
		Topic:         entity.Topic,
		Difficulty:    entity.Difficulty,
		Question:      entity.Text,
		Options:       options,
		CorrectAnswer: entity.CorrectAnswer,
		CreatedAt:     entity.CreatedAt,
	}, nil
}

func (QuestionConverterImpl) ToEntity(model *QuestionModel) (*domain.Question, error) {
	if model == nil {
		return nil, nil
	}

	entity := &domain.Question{
		ID:            model.ID,
		Topic:         model.Topic,
		Difficulty:    model.Difficulty,
		Text:          model.Question,
		CorrectAnswer: model.CorrectAnswer,
		CreatedAt:     model.CreatedAt,
	}
	if err := unmarshalOptional(model.Options, &entity.Options); err != nil {
		return nil, err
	}

	return entity, nil
}

type OutboxEventConverterImpl struct{}

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}

	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}

	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		out = append(out, c.ToEntity(m))
	}
	return out
}

// marshalNonNil сериализует v, подставляя пустое значение вместо nil-среза.
func marshalNonNil[T any](v []T, empty []T) ([]byte, error) {
	if v == nil {
		v = empty
	}
	return json.Marshal(v)
}

func unmarshalOptional(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
