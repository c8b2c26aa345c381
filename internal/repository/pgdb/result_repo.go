package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/internal/repository/pgdb/converter"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/tr"
)

const resultColumns = `id::text, user_id::text, topic, difficulty, score, total_questions,
	correct, incorrect, percentage::text, questions, user_answers, explanations,
	time_taken, created_at`

// ResultRepo реализует репозиторий результатов тестирования поверх PostgreSQL.
type ResultRepo struct {
	pool *pgxpool.Pool
	conv converter.ResultConverter
}

func NewResultRepo(pool *pgxpool.Pool, conv converter.ResultConverter) *ResultRepo {
	return &ResultRepo{
		pool: pool,
		conv: conv,
	}
}

func (r *ResultRepo) Create(ctx context.Context, result *domain.Result) (*domain.Result, error) {
	model, err := r.conv.ToModel(result)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO results (
			user_id, topic, difficulty, score, total_questions, correct, incorrect,
			percentage, questions, user_answers, explanations, time_taken
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8::numeric, $9::jsonb, $10::jsonb, $11::jsonb, $12)
		RETURNING ` + resultColumns

	row := tr.Executor(ctx, r.pool).QueryRow(ctx, query,
		model.UserID, model.Topic, model.Difficulty, model.Score, model.TotalQuestions,
		model.Correct, model.Incorrect, model.Percentage,
		model.Questions, model.UserAnswers, model.Explanations, model.TimeTaken,
	)

	created, err := r.scan(row)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return created, nil
}

func (r *ResultRepo) GetByID(ctx context.Context, id string) (*domain.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE id = $1::uuid`

	result, err := r.scan(tr.Executor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrResultNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// ListByUser возвращает результаты пользователя, начиная с самых новых.
func (r *ResultRepo) ListByUser(ctx context.Context, userID string) ([]domain.Result, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM results
		WHERE user_id = $1::uuid
		ORDER BY created_at DESC, id
	`

	return r.list(ctx, query, userID)
}

// ListByTopic ищет по подстроке темы без учета регистра; пустая сложность не фильтрует.
func (r *ResultRepo) ListByTopic(ctx context.Context, userID, topic, difficulty string) ([]domain.Result, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM results
		WHERE user_id = $1::uuid
		  AND topic ILIKE $2
		  AND ($3 = '' OR lower(difficulty) = lower($3))
		ORDER BY created_at DESC, id
	`

	return r.list(ctx, query, userID, likePattern(topic), difficulty)
}

func (r *ResultRepo) list(ctx context.Context, query string, args ...any) ([]domain.Result, error) {
	rows, err := tr.Executor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	results := make([]domain.Result, 0)
	for rows.Next() {
		result, err := r.scan(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		results = append(results, *result)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return results, nil
}

func (r *ResultRepo) scan(row pgx.Row) (*domain.Result, error) {
	var model converter.ResultModel
	err := row.Scan(
		&model.ID, &model.UserID, &model.Topic, &model.Difficulty, &model.Score,
		&model.TotalQuestions, &model.Correct, &model.Incorrect, &model.Percentage,
		&model.Questions, &model.UserAnswers, &model.Explanations,
		&model.TimeTaken, &model.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return r.conv.ToEntity(&model)
}
