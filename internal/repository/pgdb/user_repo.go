package pgdb

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/internal/repository/pgdb/converter"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/tr"
)

const userColumns = `id::text, email, username, name, profile_picture, password_hash,
	google_id, is_admin, settings, created_at, updated_at`

// UserRepo реализует репозиторий пользователей поверх PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
	conv converter.UserConverter
}

func NewUserRepo(pool *pgxpool.Pool, conv converter.UserConverter) *UserRepo {
	return &UserRepo{
		pool: pool,
		conv: conv,
	}
}

func (u *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, username, name, profile_picture, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	row := tr.Executor(ctx, u.pool).QueryRow(ctx, query,
		user.Email, user.Username, user.Name, user.ProfilePicture, user.PasswordHash,
	)

	created, err := u.scan(row)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserAlreadyExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return created, nil
}

func (u *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1::uuid`

	user, err := u.scan(tr.Executor(ctx, u.pool).QueryRow(ctx, query, id))
	if err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return user, nil
}

func (u *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := u.scan(tr.Executor(ctx, u.pool).QueryRow(ctx, query, email))
	if err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return user, nil
}

// Update меняет только переданные поля; nil оставляет значение в базе.
func (u *UserRepo) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	query := `
		UPDATE users SET
			username = COALESCE($2, username),
			name = COALESCE($3, name),
			profile_picture = COALESCE($4, profile_picture),
			updated_at = NOW()
		WHERE id = $1::uuid
		RETURNING ` + userColumns

	row := tr.Executor(ctx, u.pool).QueryRow(ctx, query, id, patch.Username, patch.Name, patch.ProfilePicture)

	user, err := u.scan(row)
	if err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return user, nil
}

func (u *UserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1::uuid`

	tag, err := tr.Executor(ctx, u.pool).Exec(ctx, query, id, hash)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
	}

	return nil
}

// UpsertGoogle создает пользователя по email или обновляет профиль из Google.
func (u *UserRepo) UpsertGoogle(ctx context.Context, profile *domain.GoogleProfile) (*domain.User, error) {
	query := `
		INSERT INTO users (email, name, profile_picture, google_id)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4)
		ON CONFLICT (email)
		DO UPDATE SET
			name = COALESCE(EXCLUDED.name, users.name),
			profile_picture = COALESCE(EXCLUDED.profile_picture, users.profile_picture),
			google_id = EXCLUDED.google_id,
			updated_at = NOW()
		RETURNING ` + userColumns

	row := tr.Executor(ctx, u.pool).QueryRow(ctx, query,
		profile.Email, profile.Name, profile.Picture, profile.GoogleID,
	)

	user, err := u.scan(row)
	if err != nil {
		if postgresDuplicate(err) {
			// google_id уже привязан к другому email
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserAlreadyExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return user, nil
}

// Delete удаляет пользователя; результаты удаляются каскадом.
func (u *UserRepo) Delete(ctx context.Context, id string) error {
	tag, err := tr.Executor(ctx, u.pool).Exec(ctx, `DELETE FROM users WHERE id = $1::uuid`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
	}

	return nil
}

func (u *UserRepo) SaveSettings(ctx context.Context, id string, settings map[string]any) error {
	if settings == nil {
		settings = map[string]any{}
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `UPDATE users SET settings = $2::jsonb, updated_at = NOW() WHERE id = $1::uuid`

	tag, err := tr.Executor(ctx, u.pool).Exec(ctx, query, id, raw)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
	}

	return nil
}

func (u *UserRepo) GetSettings(ctx context.Context, id string) (map[string]any, error) {
	var raw []byte
	err := tr.Executor(ctx, u.pool).
		QueryRow(ctx, `SELECT settings FROM users WHERE id = $1::uuid`, id).
		Scan(&raw)
	if err != nil {
		if notFound(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	settings := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &settings); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return settings, nil
}

func (u *UserRepo) scan(row pgx.Row) (*domain.User, error) {
	var model converter.UserModel
	err := row.Scan(
		&model.ID, &model.Email, &model.Username, &model.Name, &model.ProfilePicture,
		&model.PasswordHash, &model.GoogleID, &model.IsAdmin, &model.Settings,
		&model.CreatedAt, &model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return u.conv.ToEntity(&model)
}
