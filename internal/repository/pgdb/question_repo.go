package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/internal/repository/pgdb/converter"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/tr"
)

// QuestionRepo реализует банк вопросов поверх PostgreSQL.
type QuestionRepo struct {
	pool *pgxpool.Pool
	conv converter.QuestionConverter
}

func NewQuestionRepo(pool *pgxpool.Pool, conv converter.QuestionConverter) *QuestionRepo {
	return &QuestionRepo{
		pool: pool,
		conv: conv,
	}
}

// AddBatch вставляет вопросы, пропуская дубликаты по (question, topic).
// Возвращает число реально добавленных строк.
func (q *QuestionRepo) AddBatch(ctx context.Context, questions []domain.Question) (int, error) {
	query := `
		INSERT INTO questions (topic, difficulty, question, options, correct_answer)
		VALUES ($1, $2, $3, $4::jsonb, $5)
		ON CONFLICT (question, topic) DO NOTHING
	`

	exec := tr.Executor(ctx, q.pool)
	inserted := 0
	for i := range questions {
		model, err := q.conv.ToModel(&questions[i])
		if err != nil {
			return inserted, e.Wrap(whereami.WhereAmI(), err)
		}

		tag, err := exec.Exec(ctx, query,
			model.Topic, model.Difficulty, model.Question, model.Options, model.CorrectAnswer,
		)
		if err != nil {
			return inserted, e.Wrap(whereami.WhereAmI(), err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ListByTopic ищет вопросы по подстроке темы без учета регистра.
func (q *QuestionRepo) ListByTopic(ctx context.Context, topic, difficulty string, limit int) ([]domain.Question, error) {
	query := `
		SELECT id, topic, difficulty, question, options, correct_answer, created_at
		FROM questions
		WHERE topic ILIKE $1
		  AND ($2 = '' OR lower(difficulty) = lower($2))
		ORDER BY id
		LIMIT $3
	`

	rows, err := tr.Executor(ctx, q.pool).Query(ctx, query, likePattern(topic), difficulty, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0, limit)
	for rows.Next() {
		var model converter.QuestionModel
		if err := rows.Scan(
			&model.ID, &model.Topic, &model.Difficulty, &model.Question,
			&model.Options, &model.CorrectAnswer, &model.CreatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		question, err := q.conv.ToEntity(&model)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		questions = append(questions, *question)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return questions, nil
}
