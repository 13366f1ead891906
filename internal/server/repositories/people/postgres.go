package people

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/dbx"
	"github.com/kotirearend/giglog/internal/server/models"
)

// PostgresRepository implements person storage over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, person *models.Person) error {
	query := `
		INSERT INTO people (id, user_id, nickname, emoji, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			emoji = EXCLUDED.emoji,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		person.ID, person.UserID, person.Nickname, person.Emoji,
		person.CreatedAt, person.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string, id string) (*models.Person, error) {
	query := `
		SELECT id, user_id, nickname, emoji, created_at, updated_at
		FROM people
		WHERE user_id = $1 AND id = $2
	`
	return r.queryPerson(ctx, query, userID, id)
}

func (r *PostgresRepository) FindByNickname(ctx context.Context, userID string, nickname string) (*models.Person, error) {
	query := `
		SELECT id, user_id, nickname, emoji, created_at, updated_at
		FROM people
		WHERE user_id = $1 AND lower(nickname) = lower($2)
	`
	return r.queryPerson(ctx, query, userID, nickname)
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Person, error) {
	query := `
		SELECT id, user_id, nickname, emoji, created_at, updated_at
		FROM people
		WHERE user_id = $1
		ORDER BY nickname
	`
	return r.queryPeople(ctx, query, userID)
}

func (r *PostgresRepository) UpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Person, error) {
	query := `
		SELECT id, user_id, nickname, emoji, created_at, updated_at
		FROM people
		WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at
	`
	return r.queryPeople(ctx, query, userID, since)
}

func (r *PostgresRepository) queryPerson(ctx context.Context, query string, args ...any) (*models.Person, error) {
	person := &models.Person{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&person.ID, &person.UserID, &person.Nickname, &person.Emoji,
		&person.CreatedAt, &person.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return person, nil
}

func (r *PostgresRepository) queryPeople(ctx context.Context, query string, args ...any) ([]*models.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Person
	for rows.Next() {
		person := &models.Person{}
		err := rows.Scan(
			&person.ID, &person.UserID, &person.Nickname, &person.Emoji,
			&person.CreatedAt, &person.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
