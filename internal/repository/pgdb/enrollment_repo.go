package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/modlrn/go-backend/internal/biometric"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/tr"
)

// EnrollmentRepo хранит дескрипторы лиц в колонке users.face_descriptor.
type EnrollmentRepo struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRepo(pool *pgxpool.Pool) *EnrollmentRepo {
	return &EnrollmentRepo{pool: pool}
}

// ListEnrolled возвращает все зарегистрированные лица в порядке регистрации пользователей.
// Длина дескриптора не проверяется: поврежденные записи отсеивает matcher.
// Одна испорченная строка не должна ломать чтение остальных, поэтому массив читается поэлементно.
func (r *EnrollmentRepo) ListEnrolled(ctx context.Context) ([]biometric.Candidate, error) {
	query := `
		SELECT id::text, face_descriptor
		FROM users
		WHERE face_descriptor IS NOT NULL
		ORDER BY created_at, id
	`

	rows, err := tr.Executor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var candidates []biometric.Candidate
	for rows.Next() {
		var (
			identity string
			raw      pgtype.Array[pgtype.Float8]
		)
		if err := rows.Scan(&identity, &raw); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		candidates = append(candidates, candidateFromRow(identity, raw))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return candidates, nil
}

// Get возвращает дескриптор пользователя или nil, если лицо не зарегистрировано (или запись испорчена).
func (r *EnrollmentRepo) Get(ctx context.Context, userID string) ([]float64, error) {
	var raw pgtype.Array[pgtype.Float8]
	err := tr.Executor(ctx, r.pool).
		QueryRow(ctx, `SELECT face_descriptor FROM users WHERE id = $1::uuid`, userID).
		Scan(&raw)
	if err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	descriptor, _ := descriptorFromArray(raw)
	return descriptor, nil
}

// Upsert полностью заменяет дескриптор пользователя.
func (r *EnrollmentRepo) Upsert(ctx context.Context, userID string, descriptor []float64) error {
	query := `UPDATE users SET face_descriptor = $2, updated_at = NOW() WHERE id = $1::uuid`

	tag, err := tr.Executor(ctx, r.pool).Exec(ctx, query, userID, descriptor)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
	}

	return nil
}

func (r *EnrollmentRepo) Delete(ctx context.Context, userID string) error {
	query := `UPDATE users SET face_descriptor = NULL, updated_at = NOW() WHERE id = $1::uuid`

	if _, err := tr.Executor(ctx, r.pool).Exec(ctx, query, userID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// candidateFromRow собирает кандидата из строки users. Испорченный массив превращается в пустой
// вектор, и matcher пропускает такого кандидата как поврежденного.
func candidateFromRow(identity string, raw pgtype.Array[pgtype.Float8]) biometric.Candidate {
	vector, _ := descriptorFromArray(raw)
	return biometric.Candidate{Identity: identity, Vector: vector}
}

// descriptorFromArray проверяет, что массив одномерный и без NULL-элементов.
// pgx сам по себе молча расплющивает многомерные массивы и падает на NULL-элементе.
func descriptorFromArray(raw pgtype.Array[pgtype.Float8]) ([]float64, bool) {
	if !raw.Valid || len(raw.Dims) != 1 {
		return nil, false
	}

	vector := make([]float64, len(raw.Elements))
	for i, el := range raw.Elements {
		if !el.Valid {
			return nil, false
		}
		vector[i] = el.Float64
	}

	return vector, true
}
